package coli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/gogpu/coligen/ir"
)

// headers is the include block every generated program starts with.
var headers = []string{
	"#include <isl/set.h>",
	"#include <isl/union_map.h>",
	"#include <isl/union_set.h>",
	"#include <isl/ast_build.h>",
	"#include <isl/schedule.h>",
	"#include <isl/schedule_node.h>",
	"",
	"#include <coli/debug.h>",
	"#include <coli/core.h>",
	"",
	"#include <string.h>",
	"#include <Halide.h>",
	`#include "halide_image_io.h"`,
}

// provideIndent is the extra indentation of the continuation lines of a
// computation declaration.
const provideIndent = 5

// Writer generates a COLi C++ program from IR.
type Writer struct {
	ctx      context.Context
	pipeline *Pipeline
	options  *Options

	// fn is the name of the coli::function every declaration is attached to.
	fn string

	// Output buffer
	out strings.Builder

	// Current indentation level
	indent int

	// Translation state
	scope        *Scope[ir.Expr]
	loops        loopStack
	buffers      *registry[*Buffer]
	computations *registry[*Computation]
	constants    *registry[*Constant]
}

// newWriter creates a new COLi writer.
func newWriter(ctx context.Context, pipeline *Pipeline, options *Options) *Writer {
	return &Writer{
		ctx:          ctx,
		pipeline:     pipeline,
		options:      options,
		fn:           pipeline.Name,
		scope:        NewScope[ir.Expr](),
		buffers:      newRegistry[*Buffer](ErrDuplicateBuffer, "buffer"),
		computations: newRegistry[*Computation](ErrDuplicateComputation, "computation"),
		constants:    newRegistry[*Constant](ErrDuplicateConstant, "constant"),
	}
}

// String returns the generated program.
func (w *Writer) String() string {
	return w.out.String()
}

// writeProgram writes the prologue, the translation of body and the
// epilogue.
func (w *Writer) writeProgram(body ir.Stmt) error {
	if err := w.writePrologue(); err != nil {
		return err
	}
	if err := w.writeStmt(body); err != nil {
		return err
	}
	w.writeEpilogue()
	return nil
}

// writePrologue writes the includes, opens main and declares the output and
// input buffers.
func (w *Writer) writePrologue() error {
	for _, h := range headers {
		w.writeRaw(h)
	}
	w.writeRaw("")
	w.writeRaw("")
	w.writeRaw("using namespace coli;")
	w.writeRaw("")
	w.writeRaw("int main(int argc, char **argv)")
	w.writeRaw("{")
	w.pushIndent()

	w.writeLine("// Set default coli options.")
	w.writeLine("global::set_default_coli_options();")
	w.writeRaw("")
	w.writeLine("coli::function %s(%q);", w.fn, w.fn)

	for _, out := range w.pipeline.Outputs {
		if err := w.declareOutput(out); err != nil {
			return err
		}
	}
	for _, in := range w.pipeline.Inputs {
		if err := w.declareInput(in); err != nil {
			return err
		}
	}
	return nil
}

// declareOutput declares an output buffer and binds the symbolic bounds of
// each of its dimensions, "<name>.min.<i>" and "<name>.extent.<i>", in scope.
func (w *Writer) declareOutput(desc BufferDesc) error {
	extents := make([]ir.Expr, len(desc.Extents))
	for i, extent := range desc.Extents {
		extents[i] = ir.Int(int64(extent))
		w.scope.Push(Sanitize(desc.Name+".min."+strconv.Itoa(i)), ir.Int(0))
		w.scope.Push(Sanitize(desc.Name+".extent."+strconv.Itoa(i)), ir.Int(int64(extent)))
	}
	return w.declareBuffer(&Buffer{
		Name:    bufferName(desc.Name),
		Rank:    desc.Rank,
		Extents: extents,
		Type:    desc.Type,
		Role:    RoleOutput,
	}, literalSizes(desc.Extents))
}

// declareInput declares an input buffer and an identity computation over
// its full extent, bound one-to-one to the buffer.
func (w *Writer) declareInput(desc BufferDesc) error {
	extents := make([]ir.Expr, len(desc.Extents))
	dims := make([]string, len(desc.Extents))
	for i, extent := range desc.Extents {
		extents[i] = ir.Int(int64(extent))
		dims[i] = "i" + strconv.Itoa(i)
	}
	buffer := &Buffer{
		Name:    bufferName(desc.Name),
		Rank:    desc.Rank,
		Extents: extents,
		Type:    desc.Type,
		Role:    RoleInput,
	}
	if err := w.declareBuffer(buffer, literalSizes(desc.Extents)); err != nil {
		return err
	}

	saved := w.loops.snapshot()
	for i, dim := range dims {
		w.loops.push(dim, ir.Int(0), extents[i])
	}
	dimList := "[" + strings.Join(dims, ", ") + "]"
	domain := w.loops.iterationDomain(desc.Name, dimList)
	w.loops.restore(saved)

	typeName, err := primitiveName(desc.Type)
	if err != nil {
		return err
	}
	if err := w.computations.declare(desc.Name, &Computation{
		Name:   desc.Name,
		Buffer: buffer.Name,
		Domain: domain,
		Type:   desc.Type,
	}); err != nil {
		return err
	}
	w.writeLine("coli::computation %s(%q, expr(), false, %s, &%s);", desc.Name, domain, typeName, w.fn)
	w.writeAccess(desc.Name, buffer.Name, dimList)
	w.writeRaw("")
	return nil
}

// declareBuffer registers b and writes its declaration. sizes is the
// rendered extent list.
func (w *Writer) declareBuffer(b *Buffer, sizes string) error {
	typeName, err := primitiveName(b.Type)
	if err != nil {
		return err
	}
	if err := w.buffers.declare(b.Name, b); err != nil {
		return err
	}
	w.writeLine("coli::buffer %s(%q, %d, %s, %s, NULL, %s, &%s);",
		b.Name, b.Name, b.Rank, sizes, typeName, b.Role, w.fn)
	return nil
}

// writeAccess binds a computation one-to-one to its buffer.
func (w *Writer) writeAccess(computation, buffer, dims string) {
	w.writeLine("%s.set_access(%q);", computation, "{"+computation+dims+"->"+buffer+dims+"}")
}

func literalSizes(extents []int32) string {
	sizes := lo.Map(extents, func(extent int32, _ int) string {
		return fmt.Sprintf("coli::expr(%d)", extent)
	})
	return "{" + strings.Join(sizes, ", ") + "}"
}

// writeEpilogue binds the function arguments, outputs first then inputs,
// requests the four finalization steps and closes main.
func (w *Writer) writeEpilogue() {
	buffers := w.buffers.values()
	outputs := lo.Filter(buffers, func(b *Buffer, _ int) bool { return b.Role == RoleOutput })
	inputs := lo.Filter(buffers, func(b *Buffer, _ int) bool { return b.Role == RoleInput })
	args := lo.Map(append(outputs, inputs...), func(b *Buffer, _ int) string { return "&" + b.Name })

	w.writeRaw("")
	w.writeLine("%s.set_arguments({%s});", w.fn, strings.Join(args, ", "))
	w.writeLine("%s.gen_isl_ast();", w.fn)
	w.writeLine("%s.gen_halide_stmt();", w.fn)
	w.writeLine("%s.dump_halide_stmt();", w.fn)
	w.writeLine("%s.gen_halide_obj(%q);", w.fn, w.objectPath())
	w.popIndent()
	w.writeLine("}")
	w.writeRaw("")
}

func (w *Writer) objectPath() string {
	path := w.options.ObjectPath
	if path == "" {
		path = DefaultObjectPath
	}
	return strings.ReplaceAll(path, "%s", w.fn)
}

// info collects the declarations made during translation.
func (w *Writer) info() *TranslationInfo {
	info := &TranslationInfo{ObjectPath: w.objectPath()}
	for _, b := range w.buffers.values() {
		info.Buffers = append(info.Buffers, *b)
	}
	for _, c := range w.computations.values() {
		info.Computations = append(info.Computations, *c)
	}
	for _, c := range w.constants.values() {
		info.Constants = append(info.Constants, *c)
	}
	return info
}

// Output helpers

// write writes text to the output. If args are provided, uses fmt.Fprintf.
//
//nolint:goprintffuncname
func (w *Writer) write(format string, args ...any) {
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
}

// writeLine writes an indented line with optional format args.
//
//nolint:goprintffuncname
func (w *Writer) writeLine(format string, args ...any) {
	w.writeIndent()
	w.write(format, args...)
	w.out.WriteByte('\n')
}

// writeRaw writes a line without indentation.
func (w *Writer) writeRaw(line string) {
	w.out.WriteString(line)
	w.out.WriteByte('\n')
}

// writeIndent writes the current indentation.
func (w *Writer) writeIndent() {
	width := w.options.IndentWidth
	if width <= 0 {
		width = 4
	}
	w.out.WriteString(strings.Repeat(" ", w.indent*width))
}

// pushIndent increases indentation.
func (w *Writer) pushIndent() {
	w.indent++
}

// popIndent decreases indentation.
func (w *Writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}
