package ir

import (
	"fmt"
	"strings"
)

// DefaultMaxDepth bounds the nesting depth accepted by Validate.
const DefaultMaxDepth = 4096

// ValidationError represents a validation error.
type ValidationError struct {
	Message string
	// Path lists the node kinds from the root down to the offending node.
	Path []string
	// TooDeep is set when the tree nests deeper than the validator allows.
	TooDeep bool
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("at %s: %s", strings.Join(e.Path, "/"), e.Message)
	}
	return e.Message
}

// Validator checks the structural well-formedness of a statement tree:
// required children present, names non-empty, nesting within MaxDepth.
// It does not judge whether a construct can be translated; that is the
// generator's call.
type Validator struct {
	// MaxDepth bounds nesting. Zero means DefaultMaxDepth.
	MaxDepth int

	errors []ValidationError
	path   []string
	capped bool
}

// Validate checks s with the default depth bound.
// Returns validation errors if any, or nil if the tree is valid.
func Validate(s Stmt) []ValidationError {
	v := &Validator{}
	return v.Validate(s)
}

// Validate checks s and returns every problem found.
func (v *Validator) Validate(s Stmt) []ValidationError {
	v.errors = nil
	v.path = v.path[:0]
	v.capped = false
	if s == nil {
		v.errorf("statement tree is nil")
		return v.errors
	}
	v.stmt("root", s)
	if len(v.errors) == 0 {
		return nil
	}
	return v.errors
}

func (v *Validator) maxDepth() int {
	if v.MaxDepth > 0 {
		return v.MaxDepth
	}
	return DefaultMaxDepth
}

func (v *Validator) errorf(format string, args ...any) {
	path := make([]string, len(v.path))
	copy(path, v.path)
	v.errors = append(v.errors, ValidationError{
		Message: fmt.Sprintf(format, args...),
		Path:    path,
	})
}

// enter pushes a path element and reports whether descent may continue.
func (v *Validator) enter(label string) bool {
	if len(v.path) >= v.maxDepth() {
		if !v.capped {
			v.errorf("nesting exceeds maximum depth %d", v.maxDepth())
			v.errors[len(v.errors)-1].TooDeep = true
			v.capped = true
		}
		return false
	}
	v.path = append(v.path, label)
	return true
}

func (v *Validator) leave() {
	v.path = v.path[:len(v.path)-1]
}

func (v *Validator) requireName(kind, name string) {
	if name == "" {
		v.errorf("%s has an empty name", kind)
	}
}

//nolint:gocyclo,cyclop,funlen // Validation requires handling all statement kinds
func (v *Validator) stmt(label string, s Stmt) {
	if s == nil {
		v.errorf("%s: missing statement", label)
		return
	}
	if !v.enter(fmt.Sprintf("%s:%T", label, s)) {
		return
	}
	defer v.leave()

	switch k := s.(type) {
	case Block:
		for i, child := range k.Stmts {
			v.stmt(fmt.Sprintf("stmt[%d]", i), child)
		}
	case LetStmt:
		v.requireName("let", k.Name)
		v.expr("value", k.Value)
		v.stmt("body", k.Body)
	case For:
		v.requireName("for", k.Name)
		v.expr("min", k.Min)
		v.expr("extent", k.Extent)
		v.stmt("body", k.Body)
	case ProducerConsumer:
		v.requireName("producer/consumer", k.Name)
		v.stmt("body", k.Body)
	case Realize:
		v.requireName("realize", k.Name)
		if len(k.Types) == 0 {
			v.errorf("realize %s has no value types", k.Name)
		}
		for i, b := range k.Bounds {
			v.expr(fmt.Sprintf("bounds[%d].min", i), b.Min)
			v.expr(fmt.Sprintf("bounds[%d].extent", i), b.Extent)
		}
		if k.Condition != nil {
			v.expr("condition", k.Condition)
		}
		v.stmt("body", k.Body)
	case Allocate:
		v.requireName("allocate", k.Name)
		v.exprs("extents", k.Extents)
		v.stmt("body", k.Body)
	case Provide:
		v.requireName("provide", k.Name)
		if len(k.Values) == 0 {
			v.errorf("provide %s stores no value", k.Name)
		}
		v.exprs("values", k.Values)
		v.exprs("args", k.Args)
	case Store:
		v.requireName("store", k.Name)
		v.expr("value", k.Value)
		v.expr("index", k.Index)
	case AssertStmt:
		v.expr("condition", k.Condition)
		if k.Message != nil {
			v.expr("message", k.Message)
		}
	case Evaluate:
		v.expr("value", k.Value)
	case Free:
		v.requireName("free", k.Name)
	case IfThenElse:
		v.expr("condition", k.Condition)
		v.stmt("then", k.Then)
		if k.Else != nil {
			v.stmt("else", k.Else)
		}
	default:
		v.errorf("unknown statement kind %T", s)
	}
}

func (v *Validator) exprs(label string, exprs []Expr) {
	for i, e := range exprs {
		v.expr(fmt.Sprintf("%s[%d]", label, i), e)
	}
}

//nolint:gocyclo,cyclop // Validation requires handling all expression kinds
func (v *Validator) expr(label string, e Expr) {
	if e == nil {
		v.errorf("%s: missing expression", label)
		return
	}
	if !v.enter(fmt.Sprintf("%s:%T", label, e)) {
		return
	}
	defer v.leave()

	switch k := e.(type) {
	case IntImm, UIntImm, FloatImm, BoolImm, StringImm:
	case Variable:
		v.requireName("variable", k.Name)
	case Binary:
		v.expr("left", k.Left)
		v.expr("right", k.Right)
	case Not:
		v.expr("value", k.Value)
	case Select:
		v.expr("condition", k.Condition)
		v.expr("accept", k.Accept)
		v.expr("reject", k.Reject)
	case Call:
		v.requireName("call", k.Name)
		v.exprs("args", k.Args)
	case Cast:
		v.expr("value", k.Value)
	case Ramp:
		if k.Lanes <= 0 {
			v.errorf("ramp has %d lanes", k.Lanes)
		}
		v.expr("base", k.Base)
		v.expr("stride", k.Stride)
	case Broadcast:
		if k.Lanes <= 0 {
			v.errorf("broadcast has %d lanes", k.Lanes)
		}
		v.expr("value", k.Value)
	case Load:
		v.requireName("load", k.Name)
		v.expr("index", k.Index)
	case Let:
		v.requireName("let", k.Name)
		v.expr("value", k.Value)
		v.expr("body", k.Body)
	default:
		v.errorf("unknown expression kind %T", e)
	}
}
