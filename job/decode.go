package job

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/coligen/ir"
)

// Node syntax
//
// A statement or a non-scalar expression is a mapping with exactly one kind
// key; the remaining keys are its operands.
//
//	block: [stmt, ...]
//	let: name      value: expr   body: stmt
//	for: name      min: expr     extent: expr   [type: serial|parallel|vectorized|unrolled]   body: stmt
//	produce: name  body: stmt
//	consume: name  body: stmt
//	realize: name  types: [type, ...]  bounds: [[min, extent], ...]  [condition: expr]  body: stmt
//	allocate: name type: type    extents: [expr, ...]  body: stmt
//	provide: name  args: [expr, ...]  values: [expr, ...]
//	store: name    index: expr   value: expr
//	assert: expr   [message: expr]
//	evaluate: expr
//	free: name
//	if: expr       then: stmt    [else: stmt]
//
// Scalar expressions are shorthand: an integer is an int32 literal, a
// float a float32 literal, a boolean a bool literal and any other string a
// reference to the int32 variable of that name.
//
//	int: n   [bits: 8|16|32|64]       uint: n  [bits: ...]
//	float: x [bits: 16|32|64]          bool: b
//	string: s
//	var: name [type: type]
//	add|sub|mul|div|mod|eq|ne|lt|le|gt|ge|and|or|min|max: [a, b]
//	not: expr
//	select: [cond, accept, reject]
//	call: name  [args: [expr, ...]]  [type: type]  [kind: computation|image|extern|intrinsic]
//	cast: type  value: expr
//	ramp: [base, stride]  lanes: n
//	broadcast: expr  lanes: n
//	load: name  index: expr  [type: type]
//	let: name   value: expr  body: expr

// Error is a decoding error located in the job document.
type Error struct {
	Line    int
	Column  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Message)
}

func nodeErrorf(n *yaml.Node, format string, args ...any) *Error {
	return &Error{Line: n.Line, Column: n.Column, Message: fmt.Sprintf(format, args...)}
}

var binaryOps = map[string]ir.BinaryOperator{
	"add": ir.BinaryAdd,
	"sub": ir.BinarySub,
	"mul": ir.BinaryMul,
	"div": ir.BinaryDiv,
	"mod": ir.BinaryMod,
	"eq":  ir.BinaryEqual,
	"ne":  ir.BinaryNotEqual,
	"lt":  ir.BinaryLess,
	"le":  ir.BinaryLessEqual,
	"gt":  ir.BinaryGreater,
	"ge":  ir.BinaryGreaterEqual,
	"and": ir.BinaryAnd,
	"or":  ir.BinaryOr,
	"min": ir.BinaryMin,
	"max": ir.BinaryMax,
}

var stmtKinds = map[string]bool{
	"block": true, "let": true, "for": true, "produce": true, "consume": true,
	"realize": true, "allocate": true, "provide": true, "store": true,
	"assert": true, "evaluate": true, "free": true, "if": true,
}

var exprKinds = map[string]bool{
	"int": true, "uint": true, "float": true, "bool": true, "string": true,
	"var": true, "not": true, "select": true, "call": true, "cast": true,
	"ramp": true, "broadcast": true, "load": true, "let": true,
}

var forTypes = map[string]ir.ForType{
	"serial":     ir.ForSerial,
	"parallel":   ir.ForParallel,
	"vectorized": ir.ForVectorized,
	"unrolled":   ir.ForUnrolled,
}

var callKinds = map[string]ir.CallKind{
	"computation": ir.CallComputation,
	"image":       ir.CallImage,
	"extern":      ir.CallExtern,
	"intrinsic":   ir.CallIntrinsic,
}

// mapping is a decoded YAML mapping node with its kind key resolved.
type mapping struct {
	node   *yaml.Node
	kind   string
	head   *yaml.Node
	fields map[string]*yaml.Node
}

func readMapping(n *yaml.Node, kinds map[string]bool, what string) (*mapping, error) {
	if n.Kind != yaml.MappingNode {
		return nil, nodeErrorf(n, "expected a %s mapping", what)
	}
	m := &mapping{node: n, fields: make(map[string]*yaml.Node, len(n.Content)/2)}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if _, dup := m.fields[key.Value]; dup {
			return nil, nodeErrorf(key, "duplicate key %q", key.Value)
		}
		m.fields[key.Value] = value
		_, isBinary := binaryOps[key.Value]
		if kinds[key.Value] || (what == "expression" && isBinary) {
			if m.kind != "" {
				return nil, nodeErrorf(key, "%s has both %q and %q", what, m.kind, key.Value)
			}
			m.kind = key.Value
			m.head = value
		}
	}
	if m.kind == "" {
		return nil, nodeErrorf(n, "%s mapping has no kind key", what)
	}
	return m, nil
}

func (m *mapping) optional(key string) *yaml.Node {
	return m.fields[key]
}

func (m *mapping) required(key string) (*yaml.Node, error) {
	n, ok := m.fields[key]
	if !ok {
		return nil, nodeErrorf(m.node, "%s is missing %q", m.kind, key)
	}
	return n, nil
}

func (m *mapping) name() (string, error) {
	if m.head.Kind != yaml.ScalarNode || m.head.Value == "" {
		return "", nodeErrorf(m.head, "%s expects a name", m.kind)
	}
	return m.head.Value, nil
}

func (m *mapping) stmt(key string) (ir.Stmt, error) {
	n, err := m.required(key)
	if err != nil {
		return nil, err
	}
	return decodeStmt(n)
}

func (m *mapping) expr(key string) (ir.Expr, error) {
	n, err := m.required(key)
	if err != nil {
		return nil, err
	}
	return decodeExpr(n)
}

func (m *mapping) typ(key string, def ir.Type) (ir.Type, error) {
	n := m.optional(key)
	if n == nil {
		return def, nil
	}
	return decodeType(n)
}

func (m *mapping) integer(key string, def int) (int, error) {
	n := m.optional(key)
	if n == nil {
		return def, nil
	}
	v, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, nodeErrorf(n, "%s expects an integer", key)
	}
	return v, nil
}

// maxBits is the widest literal the IR represents.
const maxBits = 64

// width reads the optional "bits" field of a literal. Widths the IR cannot
// hold are rejected here; the generator decides which of the rest it supports.
func (m *mapping) width(def uint8) (uint8, error) {
	n := m.optional("bits")
	if n == nil {
		return def, nil
	}
	v, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, nodeErrorf(n, "bits expects an integer")
	}
	if v < 1 || v > maxBits {
		return 0, nodeErrorf(n, "bits must be between 1 and %d, got %d", maxBits, v)
	}
	return uint8(v), nil
}

func decodeType(n *yaml.Node) (ir.Type, error) {
	t, err := ir.ParseType(n.Value)
	if err != nil {
		return ir.Type{}, nodeErrorf(n, "%v", err)
	}
	return t, nil
}

func sequence(n *yaml.Node, what string) ([]*yaml.Node, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, nodeErrorf(n, "expected a sequence of %s", what)
	}
	return n.Content, nil
}

func decodeExprs(n *yaml.Node) ([]ir.Expr, error) {
	items, err := sequence(n, "expressions")
	if err != nil {
		return nil, err
	}
	out := make([]ir.Expr, len(items))
	for i, item := range items {
		if out[i], err = decodeExpr(item); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// decodeStmt decodes a statement node.
//
//nolint:gocyclo,cyclop,funlen // Decoding requires handling all statement kinds
func decodeStmt(n *yaml.Node) (ir.Stmt, error) {
	if n.Kind == yaml.DocumentNode && len(n.Content) == 1 {
		n = n.Content[0]
	}
	m, err := readMapping(n, stmtKinds, "statement")
	if err != nil {
		return nil, err
	}

	switch m.kind {
	case "block":
		items, err := sequence(m.head, "statements")
		if err != nil {
			return nil, err
		}
		stmts := make([]ir.Stmt, len(items))
		for i, item := range items {
			if stmts[i], err = decodeStmt(item); err != nil {
				return nil, err
			}
		}
		return ir.Block{Stmts: stmts}, nil

	case "let":
		name, err := m.name()
		if err != nil {
			return nil, err
		}
		value, err := m.expr("value")
		if err != nil {
			return nil, err
		}
		body, err := m.stmt("body")
		if err != nil {
			return nil, err
		}
		return ir.LetStmt{Name: name, Value: value, Body: body}, nil

	case "for":
		name, err := m.name()
		if err != nil {
			return nil, err
		}
		minExpr, err := m.expr("min")
		if err != nil {
			return nil, err
		}
		extent, err := m.expr("extent")
		if err != nil {
			return nil, err
		}
		forType := ir.ForSerial
		if t := m.optional("type"); t != nil {
			ft, ok := forTypes[t.Value]
			if !ok {
				return nil, nodeErrorf(t, "unknown loop type %q", t.Value)
			}
			forType = ft
		}
		body, err := m.stmt("body")
		if err != nil {
			return nil, err
		}
		return ir.For{Name: name, Min: minExpr, Extent: extent, ForType: forType, Body: body}, nil

	case "produce", "consume":
		name, err := m.name()
		if err != nil {
			return nil, err
		}
		body, err := m.stmt("body")
		if err != nil {
			return nil, err
		}
		return ir.ProducerConsumer{Name: name, IsProducer: m.kind == "produce", Body: body}, nil

	case "realize":
		return decodeRealize(m)

	case "allocate":
		name, err := m.name()
		if err != nil {
			return nil, err
		}
		typ, err := m.typ("type", ir.Int32)
		if err != nil {
			return nil, err
		}
		extentsNode, err := m.required("extents")
		if err != nil {
			return nil, err
		}
		extents, err := decodeExprs(extentsNode)
		if err != nil {
			return nil, err
		}
		body, err := m.stmt("body")
		if err != nil {
			return nil, err
		}
		return ir.Allocate{Name: name, Type: typ, Extents: extents, Body: body}, nil

	case "provide":
		name, err := m.name()
		if err != nil {
			return nil, err
		}
		argsNode, err := m.required("args")
		if err != nil {
			return nil, err
		}
		args, err := decodeExprs(argsNode)
		if err != nil {
			return nil, err
		}
		valuesNode, err := m.required("values")
		if err != nil {
			return nil, err
		}
		values, err := decodeExprs(valuesNode)
		if err != nil {
			return nil, err
		}
		return ir.Provide{Name: name, Args: args, Values: values}, nil

	case "store":
		name, err := m.name()
		if err != nil {
			return nil, err
		}
		index, err := m.expr("index")
		if err != nil {
			return nil, err
		}
		value, err := m.expr("value")
		if err != nil {
			return nil, err
		}
		return ir.Store{Name: name, Index: index, Value: value}, nil

	case "assert":
		cond, err := decodeExpr(m.head)
		if err != nil {
			return nil, err
		}
		var message ir.Expr
		if n := m.optional("message"); n != nil {
			if message, err = decodeExpr(n); err != nil {
				return nil, err
			}
		}
		return ir.AssertStmt{Condition: cond, Message: message}, nil

	case "evaluate":
		value, err := decodeExpr(m.head)
		if err != nil {
			return nil, err
		}
		return ir.Evaluate{Value: value}, nil

	case "free":
		name, err := m.name()
		if err != nil {
			return nil, err
		}
		return ir.Free{Name: name}, nil

	case "if":
		cond, err := decodeExpr(m.head)
		if err != nil {
			return nil, err
		}
		then, err := m.stmt("then")
		if err != nil {
			return nil, err
		}
		var els ir.Stmt
		if n := m.optional("else"); n != nil {
			if els, err = decodeStmt(n); err != nil {
				return nil, err
			}
		}
		return ir.IfThenElse{Condition: cond, Then: then, Else: els}, nil
	}
	return nil, nodeErrorf(n, "unknown statement kind %q", m.kind)
}

func decodeRealize(m *mapping) (ir.Stmt, error) {
	name, err := m.name()
	if err != nil {
		return nil, err
	}
	typesNode, err := m.required("types")
	if err != nil {
		return nil, err
	}
	typeItems, err := sequence(typesNode, "types")
	if err != nil {
		return nil, err
	}
	types := make([]ir.Type, len(typeItems))
	for i, item := range typeItems {
		if types[i], err = decodeType(item); err != nil {
			return nil, err
		}
	}

	boundsNode, err := m.required("bounds")
	if err != nil {
		return nil, err
	}
	boundItems, err := sequence(boundsNode, "bounds")
	if err != nil {
		return nil, err
	}
	bounds := make([]ir.Range, len(boundItems))
	for i, item := range boundItems {
		pair, err := decodeExprs(item)
		if err != nil {
			return nil, err
		}
		if len(pair) != 2 {
			return nil, nodeErrorf(item, "a bound is [min, extent], got %d expressions", len(pair))
		}
		bounds[i] = ir.Range{Min: pair[0], Extent: pair[1]}
	}

	var cond ir.Expr
	if n := m.optional("condition"); n != nil {
		if cond, err = decodeExpr(n); err != nil {
			return nil, err
		}
	}
	body, err := m.stmt("body")
	if err != nil {
		return nil, err
	}
	return ir.Realize{Name: name, Types: types, Bounds: bounds, Condition: cond, Body: body}, nil
}

// decodeExpr decodes an expression node.
//
//nolint:gocyclo,cyclop,funlen // Decoding requires handling all expression kinds
func decodeExpr(n *yaml.Node) (ir.Expr, error) {
	if n.Kind == yaml.ScalarNode {
		return decodeScalar(n)
	}
	m, err := readMapping(n, exprKinds, "expression")
	if err != nil {
		return nil, err
	}

	if op, ok := binaryOps[m.kind]; ok {
		operands, err := decodeExprs(m.head)
		if err != nil {
			return nil, err
		}
		if len(operands) != 2 {
			return nil, nodeErrorf(m.head, "%s takes 2 operands, got %d", m.kind, len(operands))
		}
		return ir.Binary{Op: op, Left: operands[0], Right: operands[1]}, nil
	}

	switch m.kind {
	case "int":
		bits, err := m.width(32)
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseInt(m.head.Value, 0, 64)
		if err != nil {
			return nil, nodeErrorf(m.head, "invalid integer %q", m.head.Value)
		}
		return ir.IntImm{Type: ir.Type{Kind: ir.ScalarInt, Bits: bits}, Value: v}, nil

	case "uint":
		bits, err := m.width(32)
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseUint(m.head.Value, 0, 64)
		if err != nil {
			return nil, nodeErrorf(m.head, "invalid unsigned integer %q", m.head.Value)
		}
		return ir.UIntImm{Type: ir.Type{Kind: ir.ScalarUInt, Bits: bits}, Value: v}, nil

	case "float":
		bits, err := m.width(32)
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(m.head.Value, 64)
		if err != nil {
			return nil, nodeErrorf(m.head, "invalid float %q", m.head.Value)
		}
		return ir.FloatImm{Type: ir.Type{Kind: ir.ScalarFloat, Bits: bits}, Value: v}, nil

	case "bool":
		v, err := strconv.ParseBool(m.head.Value)
		if err != nil {
			return nil, nodeErrorf(m.head, "invalid bool %q", m.head.Value)
		}
		return ir.BoolImm{Value: v}, nil

	case "string":
		return ir.StringImm{Value: m.head.Value}, nil

	case "var":
		name, err := m.name()
		if err != nil {
			return nil, err
		}
		typ, err := m.typ("type", ir.Int32)
		if err != nil {
			return nil, err
		}
		return ir.Variable{Type: typ, Name: name}, nil

	case "not":
		value, err := decodeExpr(m.head)
		if err != nil {
			return nil, err
		}
		return ir.Not{Value: value}, nil

	case "select":
		operands, err := decodeExprs(m.head)
		if err != nil {
			return nil, err
		}
		if len(operands) != 3 {
			return nil, nodeErrorf(m.head, "select takes 3 operands, got %d", len(operands))
		}
		return ir.Select{Condition: operands[0], Accept: operands[1], Reject: operands[2]}, nil

	case "call":
		name, err := m.name()
		if err != nil {
			return nil, err
		}
		var args []ir.Expr
		if n := m.optional("args"); n != nil {
			if args, err = decodeExprs(n); err != nil {
				return nil, err
			}
		}
		typ, err := m.typ("type", ir.Int32)
		if err != nil {
			return nil, err
		}
		kind := ir.CallComputation
		if n := m.optional("kind"); n != nil {
			k, ok := callKinds[n.Value]
			if !ok {
				return nil, nodeErrorf(n, "unknown call kind %q", n.Value)
			}
			kind = k
		}
		return ir.Call{Type: typ, Name: name, Kind: kind, Args: args}, nil

	case "cast":
		typ, err := decodeType(m.head)
		if err != nil {
			return nil, err
		}
		value, err := m.expr("value")
		if err != nil {
			return nil, err
		}
		return ir.Cast{Type: typ, Value: value}, nil

	case "ramp":
		operands, err := decodeExprs(m.head)
		if err != nil {
			return nil, err
		}
		if len(operands) != 2 {
			return nil, nodeErrorf(m.head, "ramp takes [base, stride], got %d operands", len(operands))
		}
		lanes, err := m.integer("lanes", 0)
		if err != nil {
			return nil, err
		}
		return ir.Ramp{Base: operands[0], Stride: operands[1], Lanes: lanes}, nil

	case "broadcast":
		value, err := decodeExpr(m.head)
		if err != nil {
			return nil, err
		}
		lanes, err := m.integer("lanes", 0)
		if err != nil {
			return nil, err
		}
		return ir.Broadcast{Value: value, Lanes: lanes}, nil

	case "load":
		name, err := m.name()
		if err != nil {
			return nil, err
		}
		index, err := m.expr("index")
		if err != nil {
			return nil, err
		}
		typ, err := m.typ("type", ir.Int32)
		if err != nil {
			return nil, err
		}
		return ir.Load{Type: typ, Name: name, Index: index}, nil

	case "let":
		name, err := m.name()
		if err != nil {
			return nil, err
		}
		value, err := m.expr("value")
		if err != nil {
			return nil, err
		}
		body, err := m.expr("body")
		if err != nil {
			return nil, err
		}
		return ir.Let{Name: name, Value: value, Body: body}, nil
	}
	return nil, nodeErrorf(n, "unknown expression kind %q", m.kind)
}

func decodeScalar(n *yaml.Node) (ir.Expr, error) {
	switch n.ShortTag() {
	case "!!int":
		v, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return nil, nodeErrorf(n, "invalid integer %q", n.Value)
		}
		return ir.Int(v), nil
	case "!!float":
		v, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return nil, nodeErrorf(n, "invalid float %q", n.Value)
		}
		return ir.FloatImm{Type: ir.Float32, Value: v}, nil
	case "!!bool":
		v, err := strconv.ParseBool(n.Value)
		if err != nil {
			return nil, nodeErrorf(n, "invalid bool %q", n.Value)
		}
		return ir.BoolImm{Value: v}, nil
	case "!!str":
		if n.Value == "" {
			return nil, nodeErrorf(n, "empty variable name")
		}
		return ir.Var(n.Value), nil
	default:
		return nil, nodeErrorf(n, "unsupported scalar %q (%s)", n.Value, n.ShortTag())
	}
}
