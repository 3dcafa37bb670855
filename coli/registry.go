package coli

import "github.com/gogpu/coligen/ir"

// BufferRole is the argument role of a buffer in the generated function.
type BufferRole uint8

const (
	RoleInput BufferRole = iota
	RoleOutput
	RoleTemporary
)

// String returns the COLi argument-type spelling of the role.
func (r BufferRole) String() string {
	switch r {
	case RoleInput:
		return "coli::a_input"
	case RoleOutput:
		return "coli::a_output"
	default:
		return "coli::a_temporary"
	}
}

// Buffer is a declared storage region.
type Buffer struct {
	Name    string
	Rank    int
	Extents []ir.Expr
	Type    ir.Type
	Role    BufferRole
}

// Computation is a declared per-iteration expression bound one-to-one to a
// buffer.
type Computation struct {
	Name   string
	Buffer string
	// Domain is the ISL iteration domain the computation was declared over.
	Domain string
	Type   ir.Type
}

// Constant is a declared named scalar.
type Constant struct {
	Name  string
	Value ir.Expr
	Type  ir.Type
}

// registry is an append-only set of declarations keyed by name. Entries are
// never removed during a translation and keep their declaration order.
type registry[T any] struct {
	duplicate ErrorKind
	what      string
	order     []string
	items     map[string]T
}

func newRegistry[T any](duplicate ErrorKind, what string) *registry[T] {
	return &registry[T]{
		duplicate: duplicate,
		what:      what,
		items:     make(map[string]T),
	}
}

// declare records name. It fails if name was already declared.
func (r *registry[T]) declare(name string, item T) error {
	if _, exists := r.items[name]; exists {
		return errorf(r.duplicate, "%s %q is already declared", r.what, name)
	}
	r.items[name] = item
	r.order = append(r.order, name)
	return nil
}

func (r *registry[T]) has(name string) bool {
	_, ok := r.items[name]
	return ok
}

func (r *registry[T]) lookup(name string) (T, bool) {
	item, ok := r.items[name]
	return item, ok
}

// values returns the declarations in declaration order.
func (r *registry[T]) values() []T {
	out := make([]T, len(r.order))
	for i, name := range r.order {
		out[i] = r.items[name]
	}
	return out
}
