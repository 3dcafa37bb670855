package coli

import (
	"strings"

	"github.com/samber/lo"

	"github.com/gogpu/coligen/ir"
)

// LoopDimension is one active loop axis: Name iterates over
// [Min, Min+Extent).
type LoopDimension struct {
	Name   string
	Min    ir.Expr
	Extent ir.Expr
}

// Predicate renders the range constraint of the dimension,
// "min <= name <= min + extent - 1", folding constant bounds.
func (d LoopDimension) Predicate() string {
	upper := ir.Simplify(ir.Sub(ir.Add(d.Min, d.Extent), ir.Int(1)))
	return ir.Print(d.Min) + " <= " + d.Name + " <= " + ir.Print(upper)
}

// loopStack holds the loop dimensions enclosing the node being translated,
// outermost first.
type loopStack struct {
	dims []LoopDimension
}

func (s *loopStack) push(name string, min, extent ir.Expr) {
	s.dims = append(s.dims, LoopDimension{Name: name, Min: min, Extent: extent})
}

func (s *loopStack) pop() {
	if len(s.dims) > 0 {
		s.dims = s.dims[:len(s.dims)-1]
	}
}

func (s *loopStack) depth() int {
	return len(s.dims)
}

// snapshot returns a copy of the stack that restore can reinstate.
func (s *loopStack) snapshot() []LoopDimension {
	return append([]LoopDimension(nil), s.dims...)
}

func (s *loopStack) restore(dims []LoopDimension) {
	s.dims = dims
}

// boundVars returns the bounds of the active dimensions that are not
// literals, in push order. These become the symbolic parameters of an
// iteration domain.
func (s *loopStack) boundVars() []ir.Expr {
	var vars []ir.Expr
	for _, d := range s.dims {
		if !ir.IsConst(d.Min) {
			vars = append(vars, d.Min)
		}
		if !ir.IsConst(d.Extent) {
			vars = append(vars, d.Extent)
		}
	}
	return vars
}

// boundParams renders boundVars as "[a, b]", or "" when every bound is a
// literal.
func (s *loopStack) boundParams() string {
	vars := s.boundVars()
	if len(vars) == 0 {
		return ""
	}
	return ir.PrintList(vars)
}

// boundPredicate renders the conjunction of the range predicates of the
// active dimensions, outermost first. An empty stack renders "()".
func (s *loopStack) boundPredicate() string {
	preds := lo.Map(s.dims, func(d LoopDimension, _ int) string {
		return d.Predicate()
	})
	return "(" + strings.Join(preds, ") and (") + ")"
}

// iterationDomain renders an ISL set over the current stack for a
// computation with the given name and dimension list:
// "[params]->{name[dims]: predicate}".
func (s *loopStack) iterationDomain(name, dims string) string {
	domain := "{" + name + dims + ": " + s.boundPredicate() + "}"
	if params := s.boundParams(); params != "" {
		return params + "->" + domain
	}
	return domain
}
