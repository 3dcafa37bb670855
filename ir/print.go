package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders an expression in the IR's own infix syntax.
//
// The output is what iteration-domain strings are built from, so variables
// print as their bare names and integer literals as plain decimals.
func Print(e Expr) string {
	var sb strings.Builder
	printExpr(&sb, e)
	return sb.String()
}

// PrintList renders expressions as "[a, b, c]".
func PrintList(exprs []Expr) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, e := range exprs {
		if i > 0 {
			sb.WriteString(", ")
		}
		printExpr(&sb, e)
	}
	sb.WriteByte(']')
	return sb.String()
}

//nolint:gocyclo,cyclop // Printing requires handling all expression kinds
func printExpr(sb *strings.Builder, e Expr) {
	switch k := e.(type) {
	case nil:
		sb.WriteString("<nil>")
	case IntImm:
		sb.WriteString(strconv.FormatInt(k.Value, 10))
	case UIntImm:
		sb.WriteString(strconv.FormatUint(k.Value, 10))
	case FloatImm:
		sb.WriteString(formatFloat(k.Value))
		if k.Type.Bits == 32 {
			sb.WriteByte('f')
		}
	case BoolImm:
		sb.WriteString(strconv.FormatBool(k.Value))
	case StringImm:
		sb.WriteString(strconv.Quote(k.Value))
	case Variable:
		sb.WriteString(k.Name)
	case Binary:
		if k.Op == BinaryMin || k.Op == BinaryMax {
			sb.WriteString(k.Op.String())
			sb.WriteByte('(')
			printExpr(sb, k.Left)
			sb.WriteString(", ")
			printExpr(sb, k.Right)
			sb.WriteByte(')')
			return
		}
		sb.WriteByte('(')
		printExpr(sb, k.Left)
		sb.WriteByte(' ')
		sb.WriteString(k.Op.String())
		sb.WriteByte(' ')
		printExpr(sb, k.Right)
		sb.WriteByte(')')
	case Not:
		sb.WriteByte('!')
		printExpr(sb, k.Value)
	case Select:
		sb.WriteString("select(")
		printExpr(sb, k.Condition)
		sb.WriteString(", ")
		printExpr(sb, k.Accept)
		sb.WriteString(", ")
		printExpr(sb, k.Reject)
		sb.WriteByte(')')
	case Call:
		sb.WriteString(k.Name)
		sb.WriteByte('(')
		for i, a := range k.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			printExpr(sb, a)
		}
		sb.WriteByte(')')
	case Cast:
		sb.WriteString(k.Type.String())
		sb.WriteByte('(')
		printExpr(sb, k.Value)
		sb.WriteByte(')')
	case Ramp:
		sb.WriteString("ramp(")
		printExpr(sb, k.Base)
		sb.WriteString(", ")
		printExpr(sb, k.Stride)
		fmt.Fprintf(sb, ", %d)", k.Lanes)
	case Broadcast:
		sb.WriteString("broadcast(")
		printExpr(sb, k.Value)
		fmt.Fprintf(sb, ", %d)", k.Lanes)
	case Load:
		sb.WriteString(k.Name)
		sb.WriteByte('[')
		printExpr(sb, k.Index)
		sb.WriteByte(']')
	case Let:
		fmt.Fprintf(sb, "(let %s = ", k.Name)
		printExpr(sb, k.Value)
		sb.WriteString(" in ")
		printExpr(sb, k.Body)
		sb.WriteByte(')')
	default:
		fmt.Fprintf(sb, "<%T>", e)
	}
}

func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// Dump renders a statement tree, one statement per line, for debug logs.
func Dump(s Stmt) string {
	d := dumper{}
	d.stmt(s)
	return d.out.String()
}

type dumper struct {
	out    strings.Builder
	indent int
}

func (d *dumper) line(format string, args ...any) {
	for i := 0; i < d.indent; i++ {
		d.out.WriteString("  ")
	}
	fmt.Fprintf(&d.out, format, args...)
	d.out.WriteByte('\n')
}

func (d *dumper) nested(s Stmt) {
	d.indent++
	d.stmt(s)
	d.indent--
}

//nolint:gocyclo,cyclop // Dumping requires handling all statement kinds
func (d *dumper) stmt(s Stmt) {
	switch k := s.(type) {
	case nil:
	case Block:
		for _, child := range k.Stmts {
			d.stmt(child)
		}
	case LetStmt:
		d.line("let %s = %s", k.Name, Print(k.Value))
		d.stmt(k.Body)
	case For:
		d.line("for (%s, %s, %s) {", k.Name, Print(k.Min), Print(k.Extent))
		d.nested(k.Body)
		d.line("}")
	case ProducerConsumer:
		if k.IsProducer {
			d.line("produce %s {", k.Name)
		} else {
			d.line("consume %s {", k.Name)
		}
		d.nested(k.Body)
		d.line("}")
	case Realize:
		bounds := make([]string, len(k.Bounds))
		for i, b := range k.Bounds {
			bounds[i] = fmt.Sprintf("[%s, %s]", Print(b.Min), Print(b.Extent))
		}
		d.line("realize %s(%s) {", k.Name, strings.Join(bounds, ", "))
		d.nested(k.Body)
		d.line("}")
	case Allocate:
		d.line("allocate %s[%s * %s] {", k.Name, k.Type, PrintList(k.Extents))
		d.nested(k.Body)
		d.line("}")
	case Provide:
		d.line("%s%s = %s", k.Name, PrintList(k.Args), PrintList(k.Values))
	case Store:
		d.line("%s[%s] = %s", k.Name, Print(k.Index), Print(k.Value))
	case AssertStmt:
		d.line("assert(%s, %s)", Print(k.Condition), Print(k.Message))
	case Evaluate:
		d.line("%s", Print(k.Value))
	case Free:
		d.line("free %s", k.Name)
	case IfThenElse:
		d.line("if (%s) {", Print(k.Condition))
		d.nested(k.Then)
		if k.Else != nil {
			d.line("} else {")
			d.nested(k.Else)
		}
		d.line("}")
	default:
		d.line("<%T>", s)
	}
}
