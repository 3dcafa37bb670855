package ir

import "reflect"

// Equal reports whether two expressions are structurally identical.
func Equal(a, b Expr) bool {
	return reflect.DeepEqual(a, b)
}

// Simplify folds constant subexpressions and removes arithmetic identities.
//
// Integer folding wraps to the operand width. Integer division and modulo
// round towards negative infinity, and a zero divisor is left unfolded.
func Simplify(e Expr) Expr {
	m := &Mutator{}
	m.Expr = func(m *Mutator, e Expr) (Expr, bool) {
		switch k := e.(type) {
		case Binary:
			k.Left = m.MutateExpr(k.Left)
			k.Right = m.MutateExpr(k.Right)
			return simplifyBinary(k), true
		case Not:
			k.Value = m.MutateExpr(k.Value)
			if b, ok := k.Value.(BoolImm); ok {
				return BoolImm{Value: !b.Value}, true
			}
			if inner, ok := k.Value.(Not); ok {
				return inner.Value, true
			}
			return k, true
		case Select:
			k.Condition = m.MutateExpr(k.Condition)
			k.Accept = m.MutateExpr(k.Accept)
			k.Reject = m.MutateExpr(k.Reject)
			if b, ok := k.Condition.(BoolImm); ok {
				if b.Value {
					return k.Accept, true
				}
				return k.Reject, true
			}
			return k, true
		}
		return nil, false
	}
	return m.MutateExpr(e)
}

//nolint:gocyclo,cyclop // Folding covers every operator/literal pairing
func simplifyBinary(b Binary) Expr {
	switch l := b.Left.(type) {
	case IntImm:
		if r, ok := b.Right.(IntImm); ok {
			if folded, ok := foldInt(b.Op, l, r); ok {
				return folded
			}
		}
	case UIntImm:
		if r, ok := b.Right.(UIntImm); ok {
			if folded, ok := foldUInt(b.Op, l, r); ok {
				return folded
			}
		}
	case FloatImm:
		if r, ok := b.Right.(FloatImm); ok {
			if folded, ok := foldFloat(b.Op, l, r); ok {
				return folded
			}
		}
	case BoolImm:
		if r, ok := b.Right.(BoolImm); ok {
			switch b.Op {
			case BinaryAnd:
				return BoolImm{Value: l.Value && r.Value}
			case BinaryOr:
				return BoolImm{Value: l.Value || r.Value}
			case BinaryEqual:
				return BoolImm{Value: l.Value == r.Value}
			case BinaryNotEqual:
				return BoolImm{Value: l.Value != r.Value}
			}
		}
	}

	switch b.Op {
	case BinaryAdd:
		if IsZero(b.Right) {
			return b.Left
		}
		if IsZero(b.Left) {
			return b.Right
		}
	case BinarySub:
		if IsZero(b.Right) {
			return b.Left
		}
	case BinaryMul:
		if isOne(b.Right) {
			return b.Left
		}
		if isOne(b.Left) {
			return b.Right
		}
		if isIntZero(b.Right) {
			return b.Right
		}
		if isIntZero(b.Left) {
			return b.Left
		}
	case BinaryDiv:
		if isOne(b.Right) {
			return b.Left
		}
	case BinaryAnd:
		if v, ok := b.Right.(BoolImm); ok {
			if v.Value {
				return b.Left
			}
			return v
		}
	case BinaryOr:
		if v, ok := b.Right.(BoolImm); ok {
			if !v.Value {
				return b.Left
			}
			return v
		}
	}
	return b
}

func isOne(e Expr) bool {
	switch k := e.(type) {
	case IntImm:
		return k.Value == 1
	case UIntImm:
		return k.Value == 1
	case FloatImm:
		return k.Value == 1
	default:
		return false
	}
}

func isIntZero(e Expr) bool {
	switch k := e.(type) {
	case IntImm:
		return k.Value == 0
	case UIntImm:
		return k.Value == 0
	default:
		return false
	}
}

//nolint:gocyclo,cyclop // One case per operator
func foldInt(op BinaryOperator, l, r IntImm) (Expr, bool) {
	t := l.Type
	switch op {
	case BinaryAdd:
		return IntImm{Type: t, Value: wrapInt(t, l.Value+r.Value)}, true
	case BinarySub:
		return IntImm{Type: t, Value: wrapInt(t, l.Value-r.Value)}, true
	case BinaryMul:
		return IntImm{Type: t, Value: wrapInt(t, l.Value*r.Value)}, true
	case BinaryDiv:
		if r.Value == 0 {
			return nil, false
		}
		return IntImm{Type: t, Value: wrapInt(t, floorDiv(l.Value, r.Value))}, true
	case BinaryMod:
		if r.Value == 0 {
			return nil, false
		}
		return IntImm{Type: t, Value: wrapInt(t, l.Value-floorDiv(l.Value, r.Value)*r.Value)}, true
	case BinaryMin:
		return IntImm{Type: t, Value: min(l.Value, r.Value)}, true
	case BinaryMax:
		return IntImm{Type: t, Value: max(l.Value, r.Value)}, true
	case BinaryEqual:
		return BoolImm{Value: l.Value == r.Value}, true
	case BinaryNotEqual:
		return BoolImm{Value: l.Value != r.Value}, true
	case BinaryLess:
		return BoolImm{Value: l.Value < r.Value}, true
	case BinaryLessEqual:
		return BoolImm{Value: l.Value <= r.Value}, true
	case BinaryGreater:
		return BoolImm{Value: l.Value > r.Value}, true
	case BinaryGreaterEqual:
		return BoolImm{Value: l.Value >= r.Value}, true
	default:
		return nil, false
	}
}

//nolint:gocyclo,cyclop // One case per operator
func foldUInt(op BinaryOperator, l, r UIntImm) (Expr, bool) {
	t := l.Type
	switch op {
	case BinaryAdd:
		return UIntImm{Type: t, Value: wrapUInt(t, l.Value+r.Value)}, true
	case BinarySub:
		return UIntImm{Type: t, Value: wrapUInt(t, l.Value-r.Value)}, true
	case BinaryMul:
		return UIntImm{Type: t, Value: wrapUInt(t, l.Value*r.Value)}, true
	case BinaryDiv:
		if r.Value == 0 {
			return nil, false
		}
		return UIntImm{Type: t, Value: l.Value / r.Value}, true
	case BinaryMod:
		if r.Value == 0 {
			return nil, false
		}
		return UIntImm{Type: t, Value: l.Value % r.Value}, true
	case BinaryMin:
		return UIntImm{Type: t, Value: min(l.Value, r.Value)}, true
	case BinaryMax:
		return UIntImm{Type: t, Value: max(l.Value, r.Value)}, true
	case BinaryEqual:
		return BoolImm{Value: l.Value == r.Value}, true
	case BinaryNotEqual:
		return BoolImm{Value: l.Value != r.Value}, true
	case BinaryLess:
		return BoolImm{Value: l.Value < r.Value}, true
	case BinaryLessEqual:
		return BoolImm{Value: l.Value <= r.Value}, true
	case BinaryGreater:
		return BoolImm{Value: l.Value > r.Value}, true
	case BinaryGreaterEqual:
		return BoolImm{Value: l.Value >= r.Value}, true
	default:
		return nil, false
	}
}

//nolint:gocyclo,cyclop // One case per operator
func foldFloat(op BinaryOperator, l, r FloatImm) (Expr, bool) {
	t := l.Type
	switch op {
	case BinaryAdd:
		return FloatImm{Type: t, Value: l.Value + r.Value}, true
	case BinarySub:
		return FloatImm{Type: t, Value: l.Value - r.Value}, true
	case BinaryMul:
		return FloatImm{Type: t, Value: l.Value * r.Value}, true
	case BinaryDiv:
		if r.Value == 0 {
			return nil, false
		}
		return FloatImm{Type: t, Value: l.Value / r.Value}, true
	case BinaryMin:
		return FloatImm{Type: t, Value: min(l.Value, r.Value)}, true
	case BinaryMax:
		return FloatImm{Type: t, Value: max(l.Value, r.Value)}, true
	case BinaryEqual:
		return BoolImm{Value: l.Value == r.Value}, true
	case BinaryNotEqual:
		return BoolImm{Value: l.Value != r.Value}, true
	case BinaryLess:
		return BoolImm{Value: l.Value < r.Value}, true
	case BinaryLessEqual:
		return BoolImm{Value: l.Value <= r.Value}, true
	case BinaryGreater:
		return BoolImm{Value: l.Value > r.Value}, true
	case BinaryGreaterEqual:
		return BoolImm{Value: l.Value >= r.Value}, true
	default:
		return nil, false
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func wrapInt(t Type, v int64) int64 {
	switch t.Bits {
	case 8:
		return int64(int8(v))
	case 16:
		return int64(int16(v))
	case 32:
		return int64(int32(v))
	default:
		return v
	}
}

func wrapUInt(t Type, v uint64) uint64 {
	switch t.Bits {
	case 8:
		return uint64(uint8(v))
	case 16:
		return uint64(uint16(v))
	case 32:
		return uint64(uint32(v))
	default:
		return v
	}
}
