// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package coli generates COLi C++ programs from the loop-nest IR.
//
// COLi describes a computation as a set of named per-iteration expressions
// over polyhedral iteration domains, each stored to a buffer. The generated
// program declares those objects and then asks COLi to schedule, lower and
// emit an object file; no scheduling decision is taken here.
//
// # Usage
//
//	pipeline := &coli.Pipeline{
//	    Name:    "blur",
//	    Outputs: []coli.BufferDesc{{Name: "f", Rank: 1, Extents: []int32{4}, Type: ir.Int32}},
//	    Inputs:  []coli.BufferDesc{{Name: "in", Rank: 1, Extents: []int32{4}, Type: ir.Int32}},
//	}
//	code, info, err := coli.Compile(ctx, body, pipeline, coli.DefaultOptions())
//	if err != nil {
//	    log.Fatal(ctx, err)
//	}
//
// # Program shape
//
// The program opens with the COLi includes and a main function that creates
// one coli::function. Every output gets a buffer; every input gets a buffer
// and an identity computation reading it. The statement tree then
// contributes:
//
//	For        two coli::constant declarations for the loop bounds
//	Provide    a coli::computation over the enclosing loops, bound to its buffer
//	Realize    a temporary coli::buffer
//
// The program closes with set_arguments (outputs, then inputs) followed by
// gen_isl_ast, gen_halide_stmt, dump_halide_stmt and gen_halide_obj.
//
// # Limitations
//
// IfThenElse translates its then-branch only. AssertStmt and Evaluate emit
// nothing. Flattened constructs (Load, Store, Allocate, Free), vector
// constructs (Ramp, Broadcast), Cast and string literals are rejected with
// ErrUnsupportedConstruct.
package coli
