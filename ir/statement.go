package ir

// Stmt is a statement node. Statements carry structure (loops, scopes,
// allocations) and the stores that give a computation its values.
type Stmt interface {
	stmtNode()
}

// Block is a sequence of statements executed in order.
type Block struct {
	Stmts []Stmt
}

func (Block) stmtNode() {}

// LetStmt binds Name to Value for the duration of Body.
type LetStmt struct {
	Name  string
	Value Expr
	Body  Stmt
}

func (LetStmt) stmtNode() {}

// ForType describes how the iterations of a For may be executed.
type ForType uint8

const (
	ForSerial ForType = iota
	ForParallel
	ForVectorized
	ForUnrolled
)

// For iterates Name over [Min, Min+Extent).
type For struct {
	Name    string
	Min     Expr
	Extent  Expr
	ForType ForType
	Body    Stmt
}

func (For) stmtNode() {}

// ProducerConsumer marks the region in which Name is produced or consumed.
type ProducerConsumer struct {
	Name       string
	IsProducer bool
	Body       Stmt
}

func (ProducerConsumer) stmtNode() {}

// Range is a half-open interval [Min, Min+Extent).
type Range struct {
	Min    Expr
	Extent Expr
}

// Realize allocates the multi-dimensional storage for Name over Bounds.
// Types holds one element type per value of the realized function.
type Realize struct {
	Name      string
	Types     []Type
	Bounds    []Range
	Condition Expr
	Body      Stmt
}

func (Realize) stmtNode() {}

// Allocate reserves flat storage for Name.
type Allocate struct {
	Name    string
	Type    Type
	Extents []Expr
	Body    Stmt
}

func (Allocate) stmtNode() {}

// Provide writes Values to the multi-dimensional site Args of Name.
type Provide struct {
	Name   string
	Values []Expr
	Args   []Expr
}

func (Provide) stmtNode() {}

// Store writes Value to a flat buffer at a linear Index.
type Store struct {
	Name  string
	Value Expr
	Index Expr
}

func (Store) stmtNode() {}

// AssertStmt checks Condition at runtime and reports Message on failure.
type AssertStmt struct {
	Condition Expr
	Message   Expr
}

func (AssertStmt) stmtNode() {}

// Evaluate computes Value for its side effects.
type Evaluate struct {
	Value Expr
}

func (Evaluate) stmtNode() {}

// Free releases storage reserved by an Allocate.
type Free struct {
	Name string
}

func (Free) stmtNode() {}

// IfThenElse executes Then when Condition holds, Else otherwise.
// Else may be nil.
type IfThenElse struct {
	Condition Expr
	Then      Stmt
	Else      Stmt
}

func (IfThenElse) stmtNode() {}
