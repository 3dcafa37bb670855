package ir

// Expr is an expression node. Expressions produce a value and have no side
// effects.
type Expr interface {
	exprNode()
}

// IntImm represents a signed integer literal of the given type.
type IntImm struct {
	Type  Type
	Value int64
}

func (IntImm) exprNode() {}

// UIntImm represents an unsigned integer literal of the given type.
type UIntImm struct {
	Type  Type
	Value uint64
}

func (UIntImm) exprNode() {}

// FloatImm represents a floating point literal of the given type.
type FloatImm struct {
	Type  Type
	Value float64
}

func (FloatImm) exprNode() {}

// BoolImm represents a boolean literal.
type BoolImm struct {
	Value bool
}

func (BoolImm) exprNode() {}

// StringImm represents a string literal.
type StringImm struct {
	Value string
}

func (StringImm) exprNode() {}

// Variable references a loop index, a let-bound name or a symbolic bound.
type Variable struct {
	Type Type
	Name string
}

func (Variable) exprNode() {}

// BinaryOperator represents binary operations.
type BinaryOperator uint8

const (
	// Arithmetic operations
	BinaryAdd BinaryOperator = iota
	BinarySub
	BinaryMul
	BinaryDiv
	BinaryMod

	// Comparison operations
	BinaryEqual
	BinaryNotEqual
	BinaryLess
	BinaryLessEqual
	BinaryGreater
	BinaryGreaterEqual

	// Logical operations
	BinaryAnd
	BinaryOr

	// Reductions modelled as operators
	BinaryMin
	BinaryMax
)

// String returns the operator spelling used by the IR printer.
func (op BinaryOperator) String() string {
	switch op {
	case BinaryAdd:
		return "+"
	case BinarySub:
		return "-"
	case BinaryMul:
		return "*"
	case BinaryDiv:
		return "/"
	case BinaryMod:
		return "%"
	case BinaryEqual:
		return "=="
	case BinaryNotEqual:
		return "!="
	case BinaryLess:
		return "<"
	case BinaryLessEqual:
		return "<="
	case BinaryGreater:
		return ">"
	case BinaryGreaterEqual:
		return ">="
	case BinaryAnd:
		return "&&"
	case BinaryOr:
		return "||"
	case BinaryMin:
		return "min"
	case BinaryMax:
		return "max"
	default:
		return "?"
	}
}

// IsComparison reports whether op yields a boolean from two operands of the
// same type.
func (op BinaryOperator) IsComparison() bool {
	return op >= BinaryEqual && op <= BinaryGreaterEqual
}

// IsLogical reports whether op is a boolean connective.
func (op BinaryOperator) IsLogical() bool {
	return op == BinaryAnd || op == BinaryOr
}

// Binary applies a binary operator to two expressions.
type Binary struct {
	Op    BinaryOperator
	Left  Expr
	Right Expr
}

func (Binary) exprNode() {}

// Not is boolean negation.
type Not struct {
	Value Expr
}

func (Not) exprNode() {}

// Select chooses between two values based on a boolean condition.
type Select struct {
	Condition Expr
	Accept    Expr
	Reject    Expr
}

func (Select) exprNode() {}

// CallKind classifies the callee of a Call.
type CallKind uint8

const (
	CallComputation CallKind = iota // Another pipeline stage
	CallImage                       // An input image
	CallExtern                      // An external C function
	CallIntrinsic                   // A compiler intrinsic
)

// Call reads another computation or image at the given coordinates, or
// invokes an external function.
type Call struct {
	Type Type
	Name string
	Kind CallKind
	Args []Expr
}

func (Call) exprNode() {}

// Cast converts a value to another type.
type Cast struct {
	Type  Type
	Value Expr
}

func (Cast) exprNode() {}

// Ramp is a vector of Lanes values starting at Base, Stride apart.
type Ramp struct {
	Base   Expr
	Stride Expr
	Lanes  int
}

func (Ramp) exprNode() {}

// Broadcast replicates a scalar across Lanes vector lanes.
type Broadcast struct {
	Value Expr
	Lanes int
}

func (Broadcast) exprNode() {}

// Load reads a flattened buffer at a linear index.
type Load struct {
	Type  Type
	Name  string
	Index Expr
}

func (Load) exprNode() {}

// Let binds Name to Value within Body.
type Let struct {
	Name  string
	Value Expr
	Body  Expr
}

func (Let) exprNode() {}

// Constructors for the common literal shapes.

// Int returns a 32-bit signed integer literal.
func Int(v int64) IntImm { return IntImm{Type: Int32, Value: v} }

// Var returns a 32-bit signed integer variable reference.
func Var(name string) Variable { return Variable{Type: Int32, Name: name} }

// Add returns a + b.
func Add(a, b Expr) Binary { return Binary{Op: BinaryAdd, Left: a, Right: b} }

// Sub returns a - b.
func Sub(a, b Expr) Binary { return Binary{Op: BinarySub, Left: a, Right: b} }

// Mul returns a * b.
func Mul(a, b Expr) Binary { return Binary{Op: BinaryMul, Left: a, Right: b} }
