package coli

import (
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/coligen/ir"
)

// writeExpr writes an expression as a coli::expr.
//
//nolint:gocyclo,cyclop // Expression writing requires handling all expression kinds
func (w *Writer) writeExpr(e ir.Expr) error {
	switch k := e.(type) {
	case ir.IntImm:
		return w.writeIntImm(k)

	case ir.UIntImm:
		return w.writeUIntImm(k)

	case ir.FloatImm:
		return w.writeFloatImm(k)

	case ir.BoolImm:
		w.write("coli::expr(%t)", k.Value)
		return nil

	case ir.Variable:
		w.writeVariable(k)
		return nil

	case ir.Binary:
		return w.writeBinary(k)

	case ir.Not:
		w.write("!")
		return w.writeExpr(k.Value)

	case ir.Select:
		return w.writeConstructor("coli::o_cond", k.Condition, k.Accept, k.Reject)

	case ir.Call:
		return w.writeCall(k)

	case ir.StringImm:
		return NewError(ErrUnsupportedConstruct, "conversion of a string literal to COLi is not supported")

	case ir.Ramp:
		return NewError(ErrUnsupportedConstruct, "conversion of Ramp to COLi is not supported")

	case ir.Broadcast:
		return NewError(ErrUnsupportedConstruct, "conversion of Broadcast to COLi is not supported")

	case ir.Cast:
		return errorf(ErrUnsupportedConstruct, "conversion of Cast to %s is not supported", k.Type)

	case ir.Load:
		return errorf(ErrUnsupportedConstruct, "conversion of Load from %q is not supported; pass the unflattened tree", k.Name)

	case ir.Let:
		return errorf(ErrInternal, "expression-level let %q survived let inlining", k.Name)

	default:
		return errorf(ErrUnsupportedConstruct, "unsupported expression kind %T", e)
	}
}

func (w *Writer) writeIntImm(imm ir.IntImm) error {
	cast, err := literalCast(imm.Type)
	if err != nil {
		return err
	}
	w.write("coli::expr(%s%d)", cast, imm.Value)
	return nil
}

func (w *Writer) writeUIntImm(imm ir.UIntImm) error {
	cast, err := literalCast(imm.Type)
	if err != nil {
		return err
	}
	w.write("coli::expr(%s%d)", cast, imm.Value)
	return nil
}

func (w *Writer) writeFloatImm(imm ir.FloatImm) error {
	if math.IsInf(imm.Value, 0) || math.IsNaN(imm.Value) {
		return errorf(ErrUnsupportedConstruct, "non-finite float literal %v has no COLi spelling", imm.Value)
	}
	switch imm.Type.Bits {
	case 32:
		w.write("coli::expr((float)%s)", formatFloat(imm.Value, 32))
	case 64:
		w.write("coli::expr(%s)", formatFloat(imm.Value, 64))
	default:
		return errorf(ErrUnsupportedWidth, "conversion of float%d to COLi is not supported", imm.Type.Bits)
	}
	return nil
}

// formatFloat renders v as a C++ floating literal of the given precision.
func formatFloat(v float64, bits int) string {
	s := strconv.FormatFloat(v, 'g', -1, bits)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// writeVariable writes a reference to a declared constant as a nullary
// application, and anything else as a loop index.
func (w *Writer) writeVariable(v ir.Variable) {
	if w.constants.has(v.Name) {
		w.write("%s(0)", v.Name)
		return
	}
	w.write("coli::idx(%q)", v.Name)
}

func (w *Writer) writeBinary(b ir.Binary) error {
	switch b.Op {
	case ir.BinaryMin:
		return w.writeConstructor("coli::o_min", b.Left, b.Right)
	case ir.BinaryMax:
		return w.writeConstructor("coli::o_max", b.Left, b.Right)
	}

	w.write("(")
	if err := w.writeExpr(b.Left); err != nil {
		return err
	}
	w.write(" %s ", b.Op)
	if err := w.writeExpr(b.Right); err != nil {
		return err
	}
	w.write(")")
	return nil
}

// writeConstructor writes a tagged expression constructor,
// "coli::expr(<op>, a, b, ...)".
func (w *Writer) writeConstructor(op string, operands ...ir.Expr) error {
	w.write("coli::expr(%s", op)
	for _, operand := range operands {
		w.write(", ")
		if err := w.writeExpr(operand); err != nil {
			return err
		}
	}
	w.write(")")
	return nil
}

// writeCall writes an access to a declared computation.
func (w *Writer) writeCall(call ir.Call) error {
	if call.Kind != ir.CallComputation && call.Kind != ir.CallImage {
		return errorf(ErrUnsupportedConstruct, "only calls to computations or images are supported, got call to %q", call.Name)
	}
	if !w.computations.has(call.Name) {
		return errorf(ErrUnknownComputation, "call to computation %q that does not exist", call.Name)
	}

	w.write("%s(", call.Name)
	for i, arg := range call.Args {
		if i > 0 {
			w.write(", ")
		}
		if err := w.writeExpr(arg); err != nil {
			return err
		}
	}
	w.write(")")
	return nil
}
