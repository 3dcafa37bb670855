package ir

// TypeOf resolves the scalar type of an expression.
//
// Vector kinds resolve to their element type. StringImm and a nil expression
// have no scalar type and resolve to the zero Type.
//
//nolint:gocyclo,cyclop // Type resolution requires handling all expression kinds
func TypeOf(e Expr) Type {
	switch k := e.(type) {
	case IntImm:
		return k.Type
	case UIntImm:
		return k.Type
	case FloatImm:
		return k.Type
	case BoolImm:
		return Bool
	case Variable:
		return k.Type
	case Binary:
		if k.Op.IsComparison() || k.Op.IsLogical() {
			return Bool
		}
		return TypeOf(k.Left)
	case Not:
		return Bool
	case Select:
		return TypeOf(k.Accept)
	case Call:
		return k.Type
	case Cast:
		return k.Type
	case Ramp:
		return TypeOf(k.Base)
	case Broadcast:
		return TypeOf(k.Value)
	case Load:
		return k.Type
	case Let:
		return TypeOf(k.Body)
	default:
		return Type{}
	}
}

// IsConst reports whether e is a literal.
func IsConst(e Expr) bool {
	switch e.(type) {
	case IntImm, UIntImm, FloatImm, BoolImm, StringImm:
		return true
	default:
		return false
	}
}

// IsZero reports whether e is a numeric literal equal to zero.
func IsZero(e Expr) bool {
	switch k := e.(type) {
	case IntImm:
		return k.Value == 0
	case UIntImm:
		return k.Value == 0
	case FloatImm:
		return k.Value == 0
	default:
		return false
	}
}

// AsVariable returns e as a Variable when it is a bare variable reference.
func AsVariable(e Expr) (Variable, bool) {
	v, ok := e.(Variable)
	return v, ok
}
