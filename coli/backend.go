// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package coli

import (
	"context"
	"fmt"
	"io"

	"github.com/samber/lo"
	"goa.design/clue/log"

	"github.com/gogpu/coligen/ir"
)

// Options configures COLi code generation.
type Options struct {
	// MaxDepth bounds the nesting depth of the statement tree.
	// Deeper trees fail with ErrDepthExceeded. Zero means ir.DefaultMaxDepth.
	MaxDepth int

	// BoundSubstitutionPasses limits how many times the enclosing let
	// bindings are substituted into a loop bound. Zero iterates to a fixed
	// point (at most one pass per binding plus one). Two reproduces the
	// historical two-pass behavior.
	BoundSubstitutionPasses int

	// ObjectPath is the object file the generated program asks COLi to
	// emit. Every "%s" is replaced by the pipeline name; other text is kept
	// as is.
	ObjectPath string

	// IndentWidth is the number of spaces per indentation level.
	IndentWidth int
}

// DefaultObjectPath is the default value of Options.ObjectPath.
const DefaultObjectPath = "build/generated_%s_test.o"

// DefaultOptions returns the default generation options.
func DefaultOptions() *Options {
	return &Options{
		MaxDepth:                ir.DefaultMaxDepth,
		BoundSubstitutionPasses: 0,
		ObjectPath:              DefaultObjectPath,
		IndentWidth:             4,
	}
}

// BufferDesc describes a pipeline output or input buffer.
type BufferDesc struct {
	// Name is the function (for outputs) or image (for inputs) name.
	Name string

	// Rank is the number of dimensions. It must equal len(Extents).
	Rank int

	// Extents holds the size of each dimension.
	Extents []int32

	// Type is the element type.
	Type ir.Type
}

// Pipeline describes the interface of the generated function.
type Pipeline struct {
	// Name is the COLi function name.
	Name string

	Outputs []BufferDesc
	Inputs  []BufferDesc
}

// TranslationInfo contains metadata about the generated program.
type TranslationInfo struct {
	// Buffers lists every declared buffer in declaration order.
	Buffers []Buffer

	// Computations lists every declared computation in declaration order,
	// the identity computations of the inputs first.
	Computations []Computation

	// Constants lists every declared constant in declaration order.
	Constants []Constant

	// ObjectPath is the object file the program emits.
	ObjectPath string
}

// Compile generates a COLi C++ program for body. The returned text is
// complete or absent: any error discards everything generated so far.
func Compile(ctx context.Context, body ir.Stmt, pipeline *Pipeline, options *Options) (string, *TranslationInfo, error) {
	if pipeline == nil {
		return "", nil, NewError(ErrInvalidPipeline, "pipeline is nil")
	}

	// Apply defaults for nil options
	if options == nil {
		options = DefaultOptions()
	}

	if err := validatePipeline(pipeline); err != nil {
		return "", nil, fmt.Errorf("coli: %w", err)
	}

	prepared, err := Prepare(body, options.MaxDepth)
	if err != nil {
		return "", nil, fmt.Errorf("coli: %w", err)
	}
	log.Debug(ctx, log.KV{K: "msg", V: "normalized statement tree"}, log.KV{K: "tree", V: ir.Dump(prepared)})

	w := newWriter(ctx, pipeline, options)
	if err := w.writeProgram(prepared); err != nil {
		return "", nil, fmt.Errorf("coli: %w", err)
	}

	return w.String(), w.info(), nil
}

// Generate runs Compile and writes the program to dest. Nothing is written
// when generation fails.
func Generate(ctx context.Context, dest io.Writer, body ir.Stmt, pipeline *Pipeline, options *Options) (*TranslationInfo, error) {
	code, info, err := Compile(ctx, body, pipeline, options)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(dest, code); err != nil {
		return nil, fmt.Errorf("coli: write program: %w", err)
	}
	return info, nil
}

// Prepare validates body and rewrites it into the form the generator
// expects: variable names sanitized and expression-level lets inlined.
func Prepare(body ir.Stmt, maxDepth int) (ir.Stmt, error) {
	v := &ir.Validator{MaxDepth: maxDepth}
	if errs := v.Validate(body); len(errs) > 0 {
		if deep, ok := lo.Find(errs, func(e ir.ValidationError) bool { return e.TooDeep }); ok {
			return nil, errorf(ErrDepthExceeded, "%v", deep)
		}
		return nil, errorf(ErrInvalidTree, "%v (%d problem(s))", errs[0], len(errs))
	}
	body = ir.RenameVariables(body, Sanitize)
	return ir.InlineLetsStmt(body), nil
}

func validatePipeline(p *Pipeline) error {
	if p.Name == "" {
		return NewError(ErrInvalidPipeline, "pipeline name is empty")
	}
	check := func(role string, descs []BufferDesc) error {
		for i, d := range descs {
			if d.Name == "" {
				return errorf(ErrInvalidPipeline, "%s %d has an empty name", role, i)
			}
			if d.Rank != len(d.Extents) {
				return errorf(ErrInvalidPipeline, "%s %q has rank %d but %d extents", role, d.Name, d.Rank, len(d.Extents))
			}
			for dim, extent := range d.Extents {
				if extent < 0 {
					return errorf(ErrInvalidPipeline, "%s %q has negative extent %d in dimension %d", role, d.Name, extent, dim)
				}
			}
		}
		return nil
	}
	if err := check("output", p.Outputs); err != nil {
		return err
	}
	return check("input", p.Inputs)
}
