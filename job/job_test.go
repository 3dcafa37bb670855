package job

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/coligen/coli"
	"github.com/gogpu/coligen/ir"
)

func TestLoad_AddOne(t *testing.T) {
	j, err := Load("../testdata/add_one.yaml")
	require.NoError(t, err)

	assert.Equal(t, &coli.Pipeline{
		Name:    "add_one",
		Outputs: []coli.BufferDesc{{Name: "f", Rank: 1, Extents: []int32{4}, Type: ir.Int32}},
		Inputs:  []coli.BufferDesc{{Name: "input", Rank: 1, Extents: []int32{4}, Type: ir.Int32}},
	}, j.Pipeline)
	assert.Equal(t, coli.DefaultOptions(), j.Options)

	x := ir.Var("f.s0.x")
	want := ir.LetStmt{
		Name:  "f.s0.x.loop_min",
		Value: ir.Var("f.min.0"),
		Body: ir.LetStmt{
			Name:  "f.s0.x.loop_extent",
			Value: ir.Var("f.extent.0"),
			Body: ir.ProducerConsumer{
				Name:       "f",
				IsProducer: true,
				Body: ir.For{
					Name:    "f.s0.x",
					Min:     ir.Var("f.s0.x.loop_min"),
					Extent:  ir.Var("f.s0.x.loop_extent"),
					ForType: ir.ForSerial,
					Body: ir.Provide{
						Name: "f",
						Args: []ir.Expr{x},
						Values: []ir.Expr{ir.Add(
							ir.Call{Type: ir.Int32, Name: "input", Kind: ir.CallComputation, Args: []ir.Expr{x}},
							ir.Int(1),
						)},
					},
				},
			},
		},
	}
	if diff := cmp.Diff(ir.Stmt(want), j.Body); diff != "" {
		t.Errorf("decoded tree mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load("testdata/does-not-exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read job")
}

func TestParse_Options(t *testing.T) {
	j, err := Parse([]byte(`
pipeline: p
options:
  bound_substitution_passes: 2
  object_path: out/p.o
  max_depth: 64
  indent_width: 2
body:
  evaluate: 0
`))
	require.NoError(t, err)
	assert.Equal(t, &coli.Options{
		MaxDepth:                64,
		BoundSubstitutionPasses: 2,
		ObjectPath:              "out/p.o",
		IndentWidth:             2,
	}, j.Options)
	assert.Equal(t, ir.Evaluate{Value: ir.Int(0)}, j.Body)
}

func TestParse_ExplicitRank(t *testing.T) {
	j, err := Parse([]byte(`
pipeline: p
outputs:
  - {name: f, rank: 2, extents: [4], type: uint8}
body: {evaluate: 0}
`))
	require.NoError(t, err)
	// The mismatch is reported by the generator, not the decoder.
	assert.Equal(t, 2, j.Pipeline.Outputs[0].Rank)
	assert.Equal(t, ir.UInt8, j.Pipeline.Outputs[0].Type)
}

func TestParse_SchemaRejects(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"empty", ``},
		{"no pipeline", "body: {evaluate: 0}\n"},
		{"no body", "pipeline: p\n"},
		{"bad pipeline name", "pipeline: 9lives\nbody: {evaluate: 0}\n"},
		{"unknown key", "pipeline: p\nschedule: auto\nbody: {evaluate: 0}\n"},
		{"bad type", "pipeline: p\ninputs: [{name: in, extents: [4], type: vec4}]\nbody: {evaluate: 0}\n"},
		{"negative extent", "pipeline: p\ninputs: [{name: in, extents: [-4], type: int32}]\nbody: {evaluate: 0}\n"},
		{"fractional extent", "pipeline: p\ninputs: [{name: in, extents: [1.5], type: int32}]\nbody: {evaluate: 0}\n"},
		{"scalar body", "pipeline: p\nbody: 3\n"},
		{"bad option", "pipeline: p\noptions: {indent_width: 0}\nbody: {evaluate: 0}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.source))
			require.Error(t, err)
		})
	}
}

func TestParse_DecodeErrorsCarryPosition(t *testing.T) {
	tests := []struct {
		name   string
		source string
		line   int
		want   string
	}{
		{"missing key", "pipeline: p\nbody:\n  for: x\n  min: 0\n  body: {evaluate: 0}\n", 3, `for is missing "extent"`},
		{"no kind", "pipeline: p\nbody:\n  name: x\n", 3, "statement mapping has no kind key"},
		{"two kinds", "pipeline: p\nbody:\n  free: x\n  evaluate: 0\n", 4, `statement has both "free" and "evaluate"`},
		{"bad loop type", "pipeline: p\nbody:\n  for: x\n  min: 0\n  extent: 4\n  type: sideways\n  body: {evaluate: 0}\n", 6, `unknown loop type "sideways"`},
		{"arity", "pipeline: p\nbody:\n  evaluate: {add: [1]}\n", 3, "add takes 2 operands, got 1"},
		{"bad int", "pipeline: p\nbody:\n  evaluate: {int: seven}\n", 3, `invalid integer "seven"`},
		{"bad bound", "pipeline: p\nbody:\n  realize: g\n  types: [int32]\n  bounds: [[0]]\n  body: {evaluate: 0}\n", 5, "a bound is [min, extent], got 1 expressions"},
		{"bad type", "pipeline: p\nbody:\n  evaluate: {var: x, type: int7}\n", 3, "int7"},
		{"null scalar", "pipeline: p\nbody:\n  evaluate: ~\n", 3, "unsupported scalar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.source))
			var e *Error
			require.True(t, errors.As(err, &e), "error %v is not a decode error", err)
			assert.Equal(t, tt.line, e.Line, e.Error())
			assert.Contains(t, e.Message, tt.want)
		})
	}
}
