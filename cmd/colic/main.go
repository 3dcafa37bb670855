// Command colic is the coligen COLi code generator CLI.
//
// Usage:
//
//	colic [options] <job.yaml>
//
// Examples:
//
//	colic add_one.yaml                    # Generate to stdout
//	colic -o add_one.cpp add_one.yaml     # Generate to a file
//	colic --debug add_one.yaml            # Log the normalized tree
//	colic --bound-passes 2 add_one.yaml   # Historical two-pass bound substitution
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"goa.design/clue/log"

	"github.com/gogpu/coligen"
	"github.com/gogpu/coligen/ir"
)

const colicVersion = "0.1.0-dev"

type flags struct {
	output      string
	debug       bool
	objectPath  string
	boundPasses int
	maxDepth    int
	dumpTree    bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:     "colic [options] <job.yaml>",
		Short:   "Generate a COLi C++ program from a pipeline job",
		Version: colicVersion,
		Args:    cobra.ExactArgs(1),
		Example: "  colic add_one.yaml\n" +
			"  colic -o add_one.cpp add_one.yaml\n" +
			"  colic --debug add_one.yaml",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogger(cmd.Context(), cmd.ErrOrStderr(), f.debug)
			if err := run(ctx, cmd, f, args[0]); err != nil {
				log.Error(ctx, err, log.KV{K: "job", V: args[0]})
				return err
			}
			return nil
		},
	}
	cmd.SetContext(context.Background())
	cmd.SilenceErrors = true

	fl := cmd.Flags()
	fl.StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
	fl.BoolVar(&f.debug, "debug", false, "enable debug logs")
	fl.StringVar(&f.objectPath, "object-path", "", "object file the program emits (overrides the job)")
	fl.IntVar(&f.boundPasses, "bound-passes", -1, "loop bound substitution passes, 0 for a fixed point (overrides the job)")
	fl.IntVar(&f.maxDepth, "max-depth", 0, "maximum statement nesting depth (overrides the job)")
	fl.BoolVar(&f.dumpTree, "dump-tree", false, "print the normalized statement tree instead of generating")
	return cmd
}

// setupLogger logs to out so that stdout carries only the generated program.
func setupLogger(ctx context.Context, out io.Writer, debug bool) context.Context {
	format := log.FormatJSON
	if log.IsTerminal() {
		format = log.FormatTerminal
	}
	ctx = log.Context(ctx, log.WithFormat(format), log.WithOutput(out))
	if debug {
		ctx = log.Context(ctx, log.WithDebug())
		log.Debugf(ctx, "debug logs enabled")
	}
	return ctx
}

func run(ctx context.Context, cmd *cobra.Command, f flags, inputPath string) error {
	source, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read job: %w", err)
	}

	j, err := coligen.Parse(source)
	if err != nil {
		return err
	}

	opts := *j.Options
	if f.objectPath != "" {
		opts.ObjectPath = f.objectPath
	}
	if f.boundPasses >= 0 {
		opts.BoundSubstitutionPasses = f.boundPasses
	}
	if f.maxDepth > 0 {
		opts.MaxDepth = f.maxDepth
	}

	if f.dumpTree {
		body, err := coligen.Normalize(j.Body, opts.MaxDepth)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), ir.Dump(body))
		return err
	}

	code, info, err := coligen.CompileJob(ctx, j, &opts)
	if err != nil {
		return err
	}
	// Nothing is written unless generation succeeded.
	output := f.output
	if output == "" {
		output = "-"
		if _, err := fmt.Fprint(cmd.OutOrStdout(), code); err != nil {
			return err
		}
	} else if err := os.WriteFile(output, []byte(code), 0o644); err != nil { //nolint:gosec // generated source is world-readable
		return fmt.Errorf("write output: %w", err)
	}

	log.Print(ctx,
		log.KV{K: "msg", V: "generated"},
		log.KV{K: "job", V: inputPath},
		log.KV{K: "output", V: output},
		log.KV{K: "buffers", V: len(info.Buffers)},
		log.KV{K: "computations", V: len(info.Computations)},
		log.KV{K: "constants", V: len(info.Constants)},
		log.KV{K: "object", V: info.ObjectPath})
	return nil
}
