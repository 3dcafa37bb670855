package coli

// Scope is a stack of name bindings. Pushing a bound name shadows the
// previous binding until the matching Pop.
type Scope[T any] struct {
	table map[string][]T
}

// NewScope creates an empty scope.
func NewScope[T any]() *Scope[T] {
	return &Scope[T]{table: make(map[string][]T)}
}

// Push binds name to value, shadowing any existing binding.
func (s *Scope[T]) Push(name string, value T) {
	s.table[name] = append(s.table[name], value)
}

// Pop removes the innermost binding of name.
func (s *Scope[T]) Pop(name string) error {
	stack := s.table[name]
	if len(stack) == 0 {
		return errorf(ErrUnboundName, "pop of unbound name %q", name)
	}
	if len(stack) == 1 {
		delete(s.table, name)
	} else {
		s.table[name] = stack[:len(stack)-1]
	}
	return nil
}

// Get returns the innermost binding of name.
func (s *Scope[T]) Get(name string) (T, error) {
	stack := s.table[name]
	if len(stack) == 0 {
		var zero T
		return zero, errorf(ErrUnboundName, "name %q is not in scope", name)
	}
	return stack[len(stack)-1], nil
}

// Contains reports whether name has a binding.
func (s *Scope[T]) Contains(name string) bool {
	return len(s.table[name]) > 0
}

// Bindings returns the innermost binding of every visible name.
func (s *Scope[T]) Bindings() map[string]T {
	out := make(map[string]T, len(s.table))
	for name, stack := range s.table {
		out[name] = stack[len(stack)-1]
	}
	return out
}
