// Package job reads pipeline job files.
//
// A job file is YAML. It names the COLi function, describes the output and
// input buffers, optionally overrides generation options, and carries the
// statement tree to translate:
//
//	pipeline: add_one
//	outputs:
//	  - {name: f, extents: [4], type: int32}
//	inputs:
//	  - {name: input, extents: [4], type: int32}
//	body:
//	  let: f.s0.x.loop_min
//	  value: f.min.0
//	  body:
//	    let: f.s0.x.loop_extent
//	    value: f.extent.0
//	    body:
//	      produce: f
//	      body:
//	        for: f.s0.x
//	        min: f.s0.x.loop_min
//	        extent: f.s0.x.loop_extent
//	        body:
//	          provide: f
//	          args: [f.s0.x]
//	          values:
//	            - add: [{call: input, args: [f.s0.x]}, 1]
//
// The document is checked against an embedded JSON Schema before the tree
// is decoded; see decode.go for the node syntax.
package job

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/coligen/coli"
	"github.com/gogpu/coligen/ir"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "job.schema.json"

// Job is a decoded job file.
type Job struct {
	Pipeline *coli.Pipeline
	Body     ir.Stmt
	// Options holds coli.DefaultOptions with the file's overrides applied.
	Options *coli.Options
}

// file mirrors the top level of a job document.
type file struct {
	Pipeline string      `yaml:"pipeline"`
	Outputs  []bufferDoc `yaml:"outputs"`
	Inputs   []bufferDoc `yaml:"inputs"`
	Options  *optionsDoc `yaml:"options"`
	Body     yaml.Node   `yaml:"body"`
}

type bufferDoc struct {
	Name    string  `yaml:"name"`
	Rank    *int    `yaml:"rank"`
	Extents []int32 `yaml:"extents"`
	Type    string  `yaml:"type"`
}

type optionsDoc struct {
	MaxDepth                *int    `yaml:"max_depth"`
	BoundSubstitutionPasses *int    `yaml:"bound_substitution_passes"`
	ObjectPath              *string `yaml:"object_path"`
	IndentWidth             *int    `yaml:"indent_width"`
}

// Load reads and decodes the job file at path.
func Load(path string) (*Job, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job: %w", err)
	}
	j, err := Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return j, nil
}

// Parse decodes a job document.
func Parse(source []byte) (*Job, error) {
	if err := validateSchema(source); err != nil {
		return nil, err
	}

	var f file
	if err := yaml.Unmarshal(source, &f); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}

	pipeline := &coli.Pipeline{Name: f.Pipeline}
	for _, doc := range f.Outputs {
		desc, err := doc.desc()
		if err != nil {
			return nil, fmt.Errorf("output %q: %w", doc.Name, err)
		}
		pipeline.Outputs = append(pipeline.Outputs, desc)
	}
	for _, doc := range f.Inputs {
		desc, err := doc.desc()
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", doc.Name, err)
		}
		pipeline.Inputs = append(pipeline.Inputs, desc)
	}

	body, err := decodeStmt(&f.Body)
	if err != nil {
		return nil, err
	}

	return &Job{
		Pipeline: pipeline,
		Body:     body,
		Options:  f.Options.apply(coli.DefaultOptions()),
	}, nil
}

func (b bufferDoc) desc() (coli.BufferDesc, error) {
	typ, err := ir.ParseType(b.Type)
	if err != nil {
		return coli.BufferDesc{}, err
	}
	rank := len(b.Extents)
	if b.Rank != nil {
		rank = *b.Rank
	}
	return coli.BufferDesc{
		Name:    b.Name,
		Rank:    rank,
		Extents: b.Extents,
		Type:    typ,
	}, nil
}

func (o *optionsDoc) apply(opts *coli.Options) *coli.Options {
	if o == nil {
		return opts
	}
	if o.MaxDepth != nil {
		opts.MaxDepth = *o.MaxDepth
	}
	if o.BoundSubstitutionPasses != nil {
		opts.BoundSubstitutionPasses = *o.BoundSubstitutionPasses
	}
	if o.ObjectPath != nil {
		opts.ObjectPath = *o.ObjectPath
	}
	if o.IndentWidth != nil {
		opts.IndentWidth = *o.IndentWidth
	}
	return opts
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	var schemaDoc any
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, schemaDoc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return c.Compile(schemaURL)
})

// validateSchema checks the document against the embedded job schema. The
// YAML is re-encoded as JSON so the validator sees JSON value types.
func validateSchema(source []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(source, &doc); err != nil {
		return fmt.Errorf("decode job: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("decode job: document is empty")
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("decode job: %w", err)
	}
	var inst any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&inst); err != nil {
		return fmt.Errorf("decode job: %w", err)
	}

	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}
	return nil
}
