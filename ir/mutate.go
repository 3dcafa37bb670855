package ir

// Mutator rebuilds a tree bottom-up. Expr and Stmt are optional hooks: when a
// hook returns true its result replaces the node and the default descent is
// skipped, so a hook that still wants its children rewritten calls back into
// MutateExpr or MutateStmt itself.
type Mutator struct {
	Expr func(m *Mutator, e Expr) (Expr, bool)
	Stmt func(m *Mutator, s Stmt) (Stmt, bool)
}

// MutateExpr rewrites e.
//
//nolint:gocyclo,cyclop // Mutation requires handling all expression kinds
func (m *Mutator) MutateExpr(e Expr) Expr {
	if e == nil {
		return nil
	}
	if m.Expr != nil {
		if r, ok := m.Expr(m, e); ok {
			return r
		}
	}
	switch k := e.(type) {
	case Binary:
		k.Left = m.MutateExpr(k.Left)
		k.Right = m.MutateExpr(k.Right)
		return k
	case Not:
		k.Value = m.MutateExpr(k.Value)
		return k
	case Select:
		k.Condition = m.MutateExpr(k.Condition)
		k.Accept = m.MutateExpr(k.Accept)
		k.Reject = m.MutateExpr(k.Reject)
		return k
	case Call:
		k.Args = m.mutateExprs(k.Args)
		return k
	case Cast:
		k.Value = m.MutateExpr(k.Value)
		return k
	case Ramp:
		k.Base = m.MutateExpr(k.Base)
		k.Stride = m.MutateExpr(k.Stride)
		return k
	case Broadcast:
		k.Value = m.MutateExpr(k.Value)
		return k
	case Load:
		k.Index = m.MutateExpr(k.Index)
		return k
	case Let:
		k.Value = m.MutateExpr(k.Value)
		k.Body = m.MutateExpr(k.Body)
		return k
	default:
		return e
	}
}

func (m *Mutator) mutateExprs(exprs []Expr) []Expr {
	if exprs == nil {
		return nil
	}
	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		out[i] = m.MutateExpr(e)
	}
	return out
}

// MutateStmt rewrites s and every expression it holds.
//
//nolint:gocyclo,cyclop // Mutation requires handling all statement kinds
func (m *Mutator) MutateStmt(s Stmt) Stmt {
	if s == nil {
		return nil
	}
	if m.Stmt != nil {
		if r, ok := m.Stmt(m, s); ok {
			return r
		}
	}
	switch k := s.(type) {
	case Block:
		stmts := make([]Stmt, len(k.Stmts))
		for i, child := range k.Stmts {
			stmts[i] = m.MutateStmt(child)
		}
		k.Stmts = stmts
		return k
	case LetStmt:
		k.Value = m.MutateExpr(k.Value)
		k.Body = m.MutateStmt(k.Body)
		return k
	case For:
		k.Min = m.MutateExpr(k.Min)
		k.Extent = m.MutateExpr(k.Extent)
		k.Body = m.MutateStmt(k.Body)
		return k
	case ProducerConsumer:
		k.Body = m.MutateStmt(k.Body)
		return k
	case Realize:
		bounds := make([]Range, len(k.Bounds))
		for i, b := range k.Bounds {
			bounds[i] = Range{Min: m.MutateExpr(b.Min), Extent: m.MutateExpr(b.Extent)}
		}
		k.Bounds = bounds
		k.Condition = m.MutateExpr(k.Condition)
		k.Body = m.MutateStmt(k.Body)
		return k
	case Allocate:
		k.Extents = m.mutateExprs(k.Extents)
		k.Body = m.MutateStmt(k.Body)
		return k
	case Provide:
		k.Values = m.mutateExprs(k.Values)
		k.Args = m.mutateExprs(k.Args)
		return k
	case Store:
		k.Value = m.MutateExpr(k.Value)
		k.Index = m.MutateExpr(k.Index)
		return k
	case AssertStmt:
		k.Condition = m.MutateExpr(k.Condition)
		k.Message = m.MutateExpr(k.Message)
		return k
	case Evaluate:
		k.Value = m.MutateExpr(k.Value)
		return k
	case IfThenElse:
		k.Condition = m.MutateExpr(k.Condition)
		k.Then = m.MutateStmt(k.Then)
		k.Else = m.MutateStmt(k.Else)
		return k
	default:
		return s
	}
}

// Substitute replaces free references to the variables named in
// replacements. A Let that rebinds a replaced name hides it in its body.
func Substitute(replacements map[string]Expr, e Expr) Expr {
	if len(replacements) == 0 {
		return e
	}
	m := &Mutator{}
	m.Expr = func(m *Mutator, e Expr) (Expr, bool) {
		switch k := e.(type) {
		case Variable:
			if r, ok := replacements[k.Name]; ok {
				return r, true
			}
		case Let:
			if _, shadowed := replacements[k.Name]; shadowed {
				inner := make(map[string]Expr, len(replacements)-1)
				for name, r := range replacements {
					if name != k.Name {
						inner[name] = r
					}
				}
				k.Value = m.MutateExpr(k.Value)
				k.Body = Substitute(inner, k.Body)
				return k, true
			}
		}
		return nil, false
	}
	return m.MutateExpr(e)
}

// SubstituteFixedPoint applies Substitute until the expression stops
// changing or maxPasses passes have run. A non-positive maxPasses runs up
// to len(replacements)+1 passes, which resolves any acyclic chain of
// bindings.
func SubstituteFixedPoint(replacements map[string]Expr, e Expr, maxPasses int) Expr {
	if maxPasses <= 0 {
		maxPasses = len(replacements) + 1
	}
	for i := 0; i < maxPasses; i++ {
		next := Substitute(replacements, e)
		if Equal(next, e) {
			return next
		}
		e = next
	}
	return e
}

// InlineLets replaces every expression-level Let with its body, the bound
// value substituted for the name.
func InlineLets(e Expr) Expr {
	m := &Mutator{Expr: inlineLetHook}
	return m.MutateExpr(e)
}

// InlineLetsStmt runs InlineLets over every expression held by s.
// Statement-level LetStmt nodes are kept.
func InlineLetsStmt(s Stmt) Stmt {
	m := &Mutator{Expr: inlineLetHook}
	return m.MutateStmt(s)
}

func inlineLetHook(m *Mutator, e Expr) (Expr, bool) {
	let, ok := e.(Let)
	if !ok {
		return nil, false
	}
	value := m.MutateExpr(let.Value)
	body := m.MutateExpr(let.Body)
	return Substitute(map[string]Expr{let.Name: value}, body), true
}

// RenameVariables applies rename to the name of every For, LetStmt, Let and
// Variable. Buffer, call and provide names are left alone.
func RenameVariables(s Stmt, rename func(string) string) Stmt {
	m := &Mutator{}
	m.Expr = func(m *Mutator, e Expr) (Expr, bool) {
		switch k := e.(type) {
		case Variable:
			k.Name = rename(k.Name)
			return k, true
		case Let:
			k.Name = rename(k.Name)
			k.Value = m.MutateExpr(k.Value)
			k.Body = m.MutateExpr(k.Body)
			return k, true
		}
		return nil, false
	}
	m.Stmt = func(m *Mutator, s Stmt) (Stmt, bool) {
		switch k := s.(type) {
		case For:
			k.Name = rename(k.Name)
			k.Min = m.MutateExpr(k.Min)
			k.Extent = m.MutateExpr(k.Extent)
			k.Body = m.MutateStmt(k.Body)
			return k, true
		case LetStmt:
			k.Name = rename(k.Name)
			k.Value = m.MutateExpr(k.Value)
			k.Body = m.MutateStmt(k.Body)
			return k, true
		}
		return nil, false
	}
	return m.MutateStmt(s)
}
