// Package ir defines the loop-nest intermediate representation consumed by
// the coli generator.
//
// The IR is a tree: statements own their child statements and expressions,
// and nothing is shared or mutated after construction. Passes that rewrite
// the tree (RenameVariables, InlineLets, Substitute, Simplify) return new
// nodes and leave their input untouched.
//
// Both node sets are closed. Expr and Stmt carry unexported marker methods,
// so only the kinds declared in this package can appear in a tree and every
// consumer can switch over them exhaustively.
package ir

import "fmt"

// ScalarKind represents scalar type kinds.
type ScalarKind uint8

const (
	ScalarInt   ScalarKind = iota // Signed integer
	ScalarUInt                    // Unsigned integer
	ScalarFloat                   // Floating point
	ScalarBool                    // Boolean
)

// String returns the kind name used in type spellings.
func (k ScalarKind) String() string {
	switch k {
	case ScalarInt:
		return "int"
	case ScalarUInt:
		return "uint"
	case ScalarFloat:
		return "float"
	case ScalarBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Type is the scalar type of an expression or a buffer element.
type Type struct {
	Kind ScalarKind
	Bits uint8
}

// Common types.
var (
	Int8    = Type{Kind: ScalarInt, Bits: 8}
	Int16   = Type{Kind: ScalarInt, Bits: 16}
	Int32   = Type{Kind: ScalarInt, Bits: 32}
	Int64   = Type{Kind: ScalarInt, Bits: 64}
	UInt8   = Type{Kind: ScalarUInt, Bits: 8}
	UInt16  = Type{Kind: ScalarUInt, Bits: 16}
	UInt32  = Type{Kind: ScalarUInt, Bits: 32}
	UInt64  = Type{Kind: ScalarUInt, Bits: 64}
	Float16 = Type{Kind: ScalarFloat, Bits: 16}
	Float32 = Type{Kind: ScalarFloat, Bits: 32}
	Float64 = Type{Kind: ScalarFloat, Bits: 64}
	Bool    = Type{Kind: ScalarBool, Bits: 1}
)

// String returns the type spelling, e.g. "int32" or "bool".
func (t Type) String() string {
	if t.Kind == ScalarBool {
		return "bool"
	}
	return fmt.Sprintf("%s%d", t.Kind, t.Bits)
}

// ParseType parses a type spelling produced by Type.String.
func ParseType(s string) (Type, error) {
	switch s {
	case "bool":
		return Bool, nil
	case "int8":
		return Int8, nil
	case "int16":
		return Int16, nil
	case "int32":
		return Int32, nil
	case "int64":
		return Int64, nil
	case "uint8":
		return UInt8, nil
	case "uint16":
		return UInt16, nil
	case "uint32":
		return UInt32, nil
	case "uint64":
		return UInt64, nil
	case "float16":
		return Float16, nil
	case "float32":
		return Float32, nil
	case "float64":
		return Float64, nil
	default:
		return Type{}, fmt.Errorf("unknown type %q", s)
	}
}

// Expression types are defined in expression.go
// Statement types are defined in statement.go
