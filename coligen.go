// Package coligen translates loop-nest IR into COLi C++ programs.
//
// coligen reads a pipeline job (the output and input buffers plus a
// statement tree in YAML) and generates the C++ program that declares the
// equivalent COLi function, buffers, constants and computations.
//
// The package provides a simple, high-level API as well as access to the
// individual stages.
//
// Example usage:
//
//	code, info, err := coligen.Compile(ctx, source)
//	if err != nil {
//	    log.Fatal(ctx, err)
//	}
//
// For a tree built in Go, use the coli package directly:
//
//	code, info, err := coli.Compile(ctx, body, pipeline, coli.DefaultOptions())
package coligen

import (
	"context"
	"fmt"

	"github.com/gogpu/coligen/coli"
	"github.com/gogpu/coligen/ir"
	"github.com/gogpu/coligen/job"
)

// Compile decodes a job document and generates its COLi program using the
// options the document carries.
func Compile(ctx context.Context, source []byte) (string, *coli.TranslationInfo, error) {
	j, err := Parse(source)
	if err != nil {
		return "", nil, err
	}
	return CompileJob(ctx, j, nil)
}

// CompileJob generates the COLi program of a decoded job.
//
// The pipeline is:
//  1. Validate the statement tree
//  2. Normalize names and inline expression lets
//  3. Translate to COLi
//
// A non-nil override replaces the job's own options.
func CompileJob(ctx context.Context, j *job.Job, override *coli.Options) (string, *coli.TranslationInfo, error) {
	if j == nil {
		return "", nil, fmt.Errorf("compile: job is nil")
	}
	opts := j.Options
	if override != nil {
		opts = override
	}
	return coli.Compile(ctx, j.Body, j.Pipeline, opts)
}

// Parse decodes a job document.
func Parse(source []byte) (*job.Job, error) {
	j, err := job.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return j, nil
}

// Validate checks a statement tree for structural problems.
//
// Returns a slice of validation errors. If the slice is empty, validation passed.
func Validate(body ir.Stmt) []ir.ValidationError {
	return ir.Validate(body)
}

// Normalize returns body in the form the generator consumes: names
// sanitized and expression-level lets inlined. Trees nested deeper than
// maxDepth are rejected; zero means ir.DefaultMaxDepth.
func Normalize(body ir.Stmt, maxDepth int) (ir.Stmt, error) {
	return coli.Prepare(body, maxDepth)
}
