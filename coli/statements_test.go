package coli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/coligen/ir"
)

// mustContain checks that the generated program contains expected.
func mustContain(t *testing.T, code, expected string) {
	t.Helper()
	if !assert.Contains(t, code, expected) {
		t.Logf("generated program:\n%s", code)
	}
}

func mustNotContain(t *testing.T, code, unexpected string) {
	t.Helper()
	if !assert.NotContains(t, code, unexpected) {
		t.Logf("generated program:\n%s", code)
	}
}

// =============================================================================
// Test: Realize of an intermediate function
// =============================================================================

func realizeBody(r func(ir.Realize) ir.Realize) ir.Stmt {
	g := ir.Realize{
		Name:   "g",
		Types:  []ir.Type{ir.Int32},
		Bounds: []ir.Range{{Min: ir.Int(0), Extent: ir.Int(4)}},
		Body: ir.Block{Stmts: []ir.Stmt{
			ir.ProducerConsumer{
				Name:       "g",
				IsProducer: true,
				Body: ir.For{
					Name:   "g.s0.x",
					Min:    ir.Var("f.min.0"),
					Extent: ir.Var("f.extent.0"),
					Body: ir.Provide{
						Name:   "g",
						Args:   []ir.Expr{ir.Var("g.s0.x")},
						Values: []ir.Expr{ir.Mul(inputAt(ir.Var("g.s0.x")), ir.Int(2))},
					},
				},
			},
			ir.ProducerConsumer{
				Name: "g",
				Body: ir.ProducerConsumer{
					Name:       "f",
					IsProducer: true,
					Body: loopOverF(provideF(ir.Call{
						Type: ir.Int32,
						Name: "g",
						Kind: ir.CallComputation,
						Args: []ir.Expr{ir.Var("f.s0.x")},
					})),
				},
			},
		}},
	}
	if r != nil {
		g = r(g)
	}
	return g
}

func TestRealize(t *testing.T) {
	code, info := compile(t, realizeBody(nil), addOnePipeline())

	mustContain(t, code, `coli::buffer buff_g("buff_g", 1, {coli::expr((int32_t)4)}, coli::p_int32, NULL, coli::a_temporary, &add_one);`)
	mustContain(t, code, `coli::constant _f_min_0("_f_min_0", coli::expr((int32_t)0), coli::p_int32, true, NULL, 0, &add_one);`)
	mustContain(t, code, `coli::constant _f_extent_0("_f_extent_0", coli::expr((int32_t)4), coli::p_int32, true, NULL, 0, &add_one);`)
	mustContain(t, code, `coli::computation g("[_f_min_0, _f_extent_0]->{g[_g_s0_x]: "`)
	mustContain(t, code, `(input(coli::idx("_g_s0_x")) * coli::expr((int32_t)2)), true, coli::p_int32, &add_one);`)
	mustContain(t, code, `g.set_access("{g[_g_s0_x]->buff_g[_g_s0_x]}");`)
	mustContain(t, code, `g(coli::idx("_f_s0_x")), true, coli::p_int32, &add_one);`)
	mustContain(t, code, "add_one.set_arguments({&buff_f, &buff_input});")

	require.Len(t, info.Buffers, 3)
	assert.Equal(t, RoleTemporary, info.Buffers[2].Role)
	require.Len(t, info.Computations, 3)
	assert.Equal(t, []string{"input", "g", "f"}, []string{info.Computations[0].Name, info.Computations[1].Name, info.Computations[2].Name})
}

func TestRealize_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(ir.Realize) ir.Realize
		want   ErrorKind
	}{
		{"non-zero min", func(r ir.Realize) ir.Realize {
			r.Bounds = []ir.Range{{Min: ir.Int(1), Extent: ir.Int(4)}}
			return r
		}, ErrUnsupportedRealize},
		{"mixed types", func(r ir.Realize) ir.Realize {
			r.Types = []ir.Type{ir.Int32, ir.Float32}
			return r
		}, ErrUnsupportedRealize},
		{"output name", func(r ir.Realize) ir.Realize {
			r.Name = "f"
			return r
		}, ErrDuplicateBuffer},
		{"unsupported element", func(r ir.Realize) ir.Realize {
			r.Types = []ir.Type{ir.Float16}
			return r
		}, ErrUnsupportedWidth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := compileErr(t, realizeBody(tt.mutate), addOnePipeline(), nil)
			assert.Equal(t, tt.want, e.Kind, e.Error())
		})
	}
}

// =============================================================================
// Test: Provide
// =============================================================================

func TestProvide_DuplicateComputation(t *testing.T) {
	body := ir.ProducerConsumer{
		Name:       "f",
		IsProducer: true,
		Body: loopOverF(ir.Block{Stmts: []ir.Stmt{
			provideF(ir.Int(1)),
			provideF(ir.Int(2)),
		}}),
	}
	e := compileErr(t, body, addOnePipeline(), nil)
	assert.Equal(t, ErrDuplicateComputation, e.Kind)
	assert.False(t, e.IsInternal())
}

func TestProvide_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		provide ir.Provide
	}{
		{"no buffer", ir.Provide{Name: "h", Args: []ir.Expr{ir.Var("f.s0.x")}, Values: []ir.Expr{ir.Int(1)}}},
		{"expression index", ir.Provide{Name: "f", Args: []ir.Expr{ir.Add(ir.Var("f.s0.x"), ir.Int(1))}, Values: []ir.Expr{ir.Int(1)}}},
		{"tuple", ir.Provide{Name: "f", Args: []ir.Expr{ir.Var("f.s0.x")}, Values: []ir.Expr{ir.Int(1), ir.Int(2)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := compileErr(t, loopOverF(tt.provide), addOnePipeline(), nil)
			assert.Equal(t, ErrMalformedStore, e.Kind, e.Error())
		})
	}
}

func TestProvide_OutsideLoops(t *testing.T) {
	pipeline := &Pipeline{
		Name:    "scalar",
		Outputs: []BufferDesc{{Name: "s", Rank: 0, Type: ir.Float64}},
	}
	body := ir.Provide{Name: "s", Values: []ir.Expr{ir.FloatImm{Type: ir.Float64, Value: 0.5}}}
	code, _ := compile(t, body, pipeline)
	mustContain(t, code, `coli::computation s("{s[]: "`)
	mustContain(t, code, `"()}",`)
	mustContain(t, code, `coli::expr(0.5), true, coli::p_float64, &scalar);`)
	mustContain(t, code, `s.set_access("{s[]->buff_s[]}");`)
}

// =============================================================================
// Test: Loops and lets
// =============================================================================

func TestFor_NonVariableBound(t *testing.T) {
	body := ir.For{Name: "x", Min: ir.Int(0), Extent: ir.Var("f.extent.0"), Body: provideF(ir.Int(1))}
	e := compileErr(t, body, addOnePipeline(), nil)
	assert.Equal(t, ErrInternal, e.Kind)
	assert.True(t, e.IsInternal())
}

func TestFor_UnboundBound(t *testing.T) {
	body := ir.For{Name: "x", Min: ir.Var("nowhere"), Extent: ir.Var("f.extent.0"), Body: provideF(ir.Int(1))}
	e := compileErr(t, body, addOnePipeline(), nil)
	assert.Equal(t, ErrUnboundName, e.Kind)
	assert.True(t, e.IsInternal())
}

func TestFor_DuplicateConstant(t *testing.T) {
	loop := func(name string, body ir.Stmt) ir.Stmt {
		return ir.For{Name: name, Min: ir.Var("f.min.0"), Extent: ir.Var("f.extent.0"), Body: body}
	}
	body := ir.Block{Stmts: []ir.Stmt{
		loop("x", ir.Evaluate{Value: ir.Int(0)}),
		loop("y", ir.Evaluate{Value: ir.Int(0)}),
	}}
	e := compileErr(t, body, addOnePipeline(), nil)
	assert.Equal(t, ErrDuplicateConstant, e.Kind)
}

func chainedBounds() ir.Stmt {
	return ir.LetStmt{Name: "a", Value: ir.Var("f.min.0"), Body: ir.LetStmt{
		Name: "b", Value: ir.Var("a"), Body: ir.LetStmt{
			Name: "m", Value: ir.Var("b"), Body: ir.LetStmt{
				Name: "e", Value: ir.Var("f.extent.0"), Body: ir.For{
					Name:   "x",
					Min:    ir.Var("m"),
					Extent: ir.Var("e"),
					Body:   ir.Provide{Name: "f", Args: []ir.Expr{ir.Var("x")}, Values: []ir.Expr{ir.Int(1)}},
				},
			},
		},
	}}
}

func TestFor_BoundSubstitution(t *testing.T) {
	code, _ := compile(t, chainedBounds(), addOnePipeline())
	mustContain(t, code, `coli::constant _m("_m", coli::expr((int32_t)0), coli::p_int32, true, NULL, 0, &add_one);`)
	mustContain(t, code, `coli::constant _e("_e", coli::expr((int32_t)4), coli::p_int32, true, NULL, 0, &add_one);`)
}

func TestFor_LegacyTwoPassSubstitution(t *testing.T) {
	opts := DefaultOptions()
	opts.BoundSubstitutionPasses = 2
	code, _, err := Compile(testContext(), chainedBounds(), addOnePipeline(), opts)
	require.NoError(t, err)
	// Two passes resolve m -> b -> a but stop short of the output bound.
	mustContain(t, code, `coli::constant _m("_m", coli::idx("_f_min_0"), coli::p_int32, true, NULL, 0, &add_one);`)
}

func TestFor_ComputedBound(t *testing.T) {
	body := ir.LetStmt{Name: "n", Value: ir.Sub(ir.Var("f.extent.0"), ir.Int(1)), Body: ir.LetStmt{
		Name: "z", Value: ir.Int(0), Body: ir.For{
			Name:   "x",
			Min:    ir.Var("z"),
			Extent: ir.Var("n"),
			Body:   ir.Provide{Name: "f", Args: []ir.Expr{ir.Var("x")}, Values: []ir.Expr{ir.Var("x")}},
		},
	}}
	code, _ := compile(t, body, addOnePipeline())
	mustContain(t, code, `coli::constant _n("_n", coli::expr((int32_t)3), coli::p_int32, true, NULL, 0, &add_one);`)
	mustContain(t, code, `coli::idx("_x"), true, coli::p_int32, &add_one);`)
}

func TestStringLiteral_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		body ir.Stmt
	}{
		{"provided value", loopOverF(provideF(ir.StringImm{Value: "oops"}))},
		{"loop bound", ir.LetStmt{Name: "m", Value: ir.StringImm{Value: "oops"}, Body: ir.For{
			Name:   "x",
			Min:    ir.Var("m"),
			Extent: ir.Var("f.extent.0"),
			Body:   ir.Provide{Name: "f", Args: []ir.Expr{ir.Var("x")}, Values: []ir.Expr{ir.Int(1)}},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := compileErr(t, tt.body, addOnePipeline(), nil)
			assert.Equal(t, ErrUnsupportedConstruct, e.Kind, e.Error())
		})
	}
}

// =============================================================================
// Test: Produce/consume regions
// =============================================================================

func TestProducerConsumer_BlockBody(t *testing.T) {
	body := ir.ProducerConsumer{
		Name:       "f",
		IsProducer: true,
		Body:       ir.Block{Stmts: []ir.Stmt{loopOverF(provideF(ir.Int(1)))}},
	}
	e := compileErr(t, body, addOnePipeline(), nil)
	assert.Equal(t, ErrUnsupportedConstruct, e.Kind)
}

func TestProducerConsumer_Reproduced(t *testing.T) {
	body := ir.Block{Stmts: []ir.Stmt{addOneBody(), addOneBody()}}
	e := compileErr(t, body, addOnePipeline(), nil)
	assert.Equal(t, ErrInternal, e.Kind)
}

// =============================================================================
// Test: Dropped and rejected statements
// =============================================================================

func TestIfThenElse_KeepsThenBranch(t *testing.T) {
	body := ir.ProducerConsumer{
		Name:       "f",
		IsProducer: true,
		Body: loopOverF(ir.IfThenElse{
			Condition: ir.Binary{Op: ir.BinaryLess, Left: ir.Var("f.s0.x"), Right: ir.Int(2)},
			Then:      provideF(ir.Int(1)),
			Else:      ir.Provide{Name: "h", Args: []ir.Expr{ir.Var("f.s0.x")}, Values: []ir.Expr{ir.Int(2)}},
		}),
	}
	code, info := compile(t, body, addOnePipeline())
	mustContain(t, code, "coli::computation f(")
	mustNotContain(t, code, "coli::computation h(")
	assert.Len(t, info.Computations, 2)
}

func TestAssertAndEvaluate_EmitNothing(t *testing.T) {
	body := ir.Block{Stmts: []ir.Stmt{
		ir.AssertStmt{Condition: ir.BoolImm{Value: true}, Message: ir.StringImm{Value: "ok"}},
		ir.Evaluate{Value: ir.Int(0)},
		addOneBody(),
	}}
	code, _ := compile(t, body, addOnePipeline())
	assert.Equal(t, addOneProgram, code)
}

func TestFlattenedStatements_Rejected(t *testing.T) {
	tests := []struct {
		name string
		stmt ir.Stmt
	}{
		{"store", ir.Store{Name: "f", Value: ir.Int(1), Index: ir.Int(0)}},
		{"allocate", ir.Allocate{Name: "t", Type: ir.Int32, Extents: []ir.Expr{ir.Int(4)}, Body: ir.Evaluate{Value: ir.Int(0)}}},
		{"free", ir.Free{Name: "t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := compileErr(t, tt.stmt, addOnePipeline(), nil)
			assert.Equal(t, ErrUnsupportedConstruct, e.Kind)
			assert.True(t, e.IsUnsupported())
		})
	}
}

func TestLetStmt_ScopeIsRestored(t *testing.T) {
	w := newWriter(testContext(), addOnePipeline(), DefaultOptions())
	require.NoError(t, w.writeStmt(ir.LetStmt{Name: "k", Value: ir.Int(1), Body: ir.Evaluate{Value: ir.Int(0)}}))
	assert.False(t, w.scope.Contains("k"))
}
