package coli

import (
	"strings"

	"github.com/samber/lo"
	"goa.design/clue/log"

	"github.com/gogpu/coligen/ir"
)

// writeStmt writes a single statement.
//
//nolint:gocyclo,cyclop // Statement writing requires handling all statement kinds
func (w *Writer) writeStmt(stmt ir.Stmt) error {
	switch k := stmt.(type) {
	case ir.Block:
		for _, child := range k.Stmts {
			if err := w.writeStmt(child); err != nil {
				return err
			}
		}
		return nil

	case ir.LetStmt:
		w.scope.Push(k.Name, k.Value)
		if err := w.writeStmt(k.Body); err != nil {
			return err
		}
		return w.scope.Pop(k.Name)

	case ir.For:
		return w.writeFor(k)

	case ir.ProducerConsumer:
		return w.writeProducerConsumer(k)

	case ir.Realize:
		return w.writeRealize(k)

	case ir.Provide:
		return w.writeProvide(k)

	case ir.IfThenElse:
		// Only the then-branch is translated; the else-branch is dropped.
		log.Debugf(w.ctx, "conversion of IfThenElse to COLi is not supported, keeping only the then-branch of if (%s)", ir.Print(k.Condition))
		return w.writeStmt(k.Then)

	case ir.AssertStmt:
		log.Debugf(w.ctx, "conversion of AssertStmt to COLi is not supported, dropping assert(%s)", ir.Print(k.Condition))
		return nil

	case ir.Evaluate:
		return nil

	case ir.Store:
		return errorf(ErrUnsupportedConstruct, "store to %q: pass the unflattened version of Store to COLi", k.Name)

	case ir.Allocate:
		return errorf(ErrUnsupportedConstruct, "allocate of %q: pass the unflattened version of Allocate to COLi", k.Name)

	case ir.Free:
		return errorf(ErrUnsupportedConstruct, "conversion of Free of %q to COLi is not supported", k.Name)

	default:
		return errorf(ErrUnsupportedConstruct, "unsupported statement kind %T", stmt)
	}
}

// writeFor declares the bounds of a loop as constants and translates its
// body with the loop dimension pushed.
func (w *Writer) writeFor(loop ir.For) error {
	minVar, ok := ir.AsVariable(loop.Min)
	if !ok {
		return errorf(ErrInternal, "min of loop %q should be a variable, got %s", loop.Name, ir.Print(loop.Min))
	}
	extentVar, ok := ir.AsVariable(loop.Extent)
	if !ok {
		return errorf(ErrInternal, "extent of loop %q should be a variable, got %s", loop.Name, ir.Print(loop.Extent))
	}

	minVal, err := w.scope.Get(minVar.Name)
	if err != nil {
		return err
	}
	extentVal, err := w.scope.Get(extentVar.Name)
	if err != nil {
		return err
	}

	// Resolve references to other bindings in the bounds.
	replacements := w.scope.Bindings()
	delete(replacements, minVar.Name)
	delete(replacements, extentVar.Name)
	minVal = ir.SubstituteFixedPoint(replacements, minVal, w.options.BoundSubstitutionPasses)
	extentVal = ir.SubstituteFixedPoint(replacements, extentVal, w.options.BoundSubstitutionPasses)

	w.loops.push(loop.Name, loop.Min, loop.Extent)
	defer w.loops.pop()

	w.writeLine("// Define loop bounds for dimension %q.", loop.Name)
	if err := w.defineConstant(minVar.Name, minVal); err != nil {
		return err
	}
	if err := w.defineConstant(extentVar.Name, extentVal); err != nil {
		return err
	}
	w.writeRaw("")

	return w.writeStmt(loop.Body)
}

// defineConstant simplifies value and declares it as a COLi constant.
func (w *Writer) defineConstant(name string, value ir.Expr) error {
	if w.constants.has(name) {
		return errorf(ErrDuplicateConstant, "constant %q is already declared; redefinition of lets is not supported", name)
	}

	value = ir.Simplify(value)

	// The value is written before its type is resolved so that constructs
	// with no scalar type are reported as unsupported.
	w.writeIndent()
	w.write("coli::constant %s(%q, ", name, name)
	if err := w.writeExpr(value); err != nil {
		return err
	}
	typ := ir.TypeOf(value)
	typeName, err := primitiveName(typ)
	if err != nil {
		return err
	}
	w.write(", %s, true, NULL, 0, &%s);\n", typeName, w.fn)

	return w.constants.declare(name, &Constant{Name: name, Value: value, Type: typ})
}

// writeProducerConsumer translates the body of a produce or consume region.
// Loop dimensions pushed inside do not leak to sibling regions.
func (w *Writer) writeProducerConsumer(pc ir.ProducerConsumer) error {
	if _, isBlock := pc.Body.(ir.Block); isBlock {
		return errorf(ErrUnsupportedConstruct, "%s of %q has several statements; update definitions are not supported", regionKind(pc), pc.Name)
	}
	if pc.IsProducer && w.computations.has(pc.Name) {
		return errorf(ErrInternal, "found another computation with the name %q", pc.Name)
	}

	saved := w.loops.snapshot()
	err := w.writeStmt(pc.Body)
	w.loops.restore(saved)
	return err
}

func regionKind(pc ir.ProducerConsumer) string {
	if pc.IsProducer {
		return "produce"
	}
	return "consume"
}

// writeProvide declares the computation that fills a buffer over the
// current loop nest.
func (w *Writer) writeProvide(p ir.Provide) error {
	if w.computations.has(p.Name) {
		return errorf(ErrDuplicateComputation, "computation %q is already declared; duplicate computations are not supported", p.Name)
	}

	buffer, ok := w.buffers.lookup(bufferName(p.Name))
	if !ok || buffer.Role == RoleInput {
		return errorf(ErrMalformedStore, "the buffer of %q should have been allocated previously", p.Name)
	}

	names := make([]string, len(p.Args))
	for i, arg := range p.Args {
		v, ok := ir.AsVariable(arg)
		if !ok {
			return errorf(ErrMalformedStore, "arguments of provide to %q should be loop dimensions, got %s", p.Name, ir.Print(arg))
		}
		names[i] = v.Name
	}
	if len(p.Values) != 1 {
		return errorf(ErrMalformedStore, "provide to %q stores %d values; tuples are not supported", p.Name, len(p.Values))
	}

	value := p.Values[0]

	dims := "[" + strings.Join(names, ", ") + "]"
	params := w.loops.boundParams()
	head := "{" + p.Name + dims + ": "
	if params != "" {
		head = params + "->" + head
	}
	predicate := w.loops.boundPredicate() + "}"

	w.writeLine("coli::computation %s(\"%s\"", p.Name, head)
	w.indent += provideIndent
	w.writeLine("\"%s\",", predicate)
	w.writeIndent()
	if err := w.writeExpr(value); err != nil {
		return err
	}
	typ := ir.TypeOf(value)
	typeName, err := primitiveName(typ)
	if err != nil {
		return err
	}
	w.write(", true, %s, &%s);\n", typeName, w.fn)
	w.indent -= provideIndent

	w.writeAccess(p.Name, buffer.Name, dims)

	return w.computations.declare(p.Name, &Computation{
		Name:   p.Name,
		Buffer: buffer.Name,
		Domain: head + predicate,
		Type:   typ,
	})
}

// writeRealize declares a temporary buffer for the realized function and
// translates the body. The realize condition is ignored.
func (w *Writer) writeRealize(r ir.Realize) error {
	for i := 1; i < len(r.Types); i++ {
		if r.Types[i] != r.Types[0] {
			return errorf(ErrUnsupportedRealize, "realize of %q should have the same type for all values, got %s and %s", r.Name, r.Types[0], r.Types[i])
		}
	}
	for i, b := range r.Bounds {
		if !ir.IsZero(b.Min) {
			return errorf(ErrUnsupportedRealize, "bound %d of realize of %q should start from 0, got %s", i, r.Name, ir.Print(b.Min))
		}
	}

	buffer := &Buffer{
		Name:    bufferName(r.Name),
		Rank:    len(r.Bounds),
		Extents: lo.Map(r.Bounds, func(b ir.Range, _ int) ir.Expr { return b.Extent }),
		Type:    r.Types[0],
		Role:    RoleTemporary,
	}
	typeName, err := primitiveName(buffer.Type)
	if err != nil {
		return err
	}
	if err := w.buffers.declare(buffer.Name, buffer); err != nil {
		return err
	}

	w.writeIndent()
	w.write("coli::buffer %s(%q, %d, {", buffer.Name, buffer.Name, buffer.Rank)
	for i, extent := range buffer.Extents {
		if i > 0 {
			w.write(", ")
		}
		if err := w.writeExpr(extent); err != nil {
			return err
		}
	}
	w.write("}, %s, NULL, %s, &%s);\n", typeName, buffer.Role, w.fn)

	return w.writeStmt(r.Body)
}
