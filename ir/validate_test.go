package ir

import (
	"strings"
	"testing"
)

func addOneTree() Stmt {
	return ProducerConsumer{
		Name:       "f",
		IsProducer: true,
		Body: For{
			Name:   "f.s0.x",
			Min:    Var("f.min.0"),
			Extent: Var("f.extent.0"),
			Body: Provide{
				Name:   "f",
				Args:   []Expr{Var("f.s0.x")},
				Values: []Expr{Add(Call{Type: Int32, Name: "in", Kind: CallImage, Args: []Expr{Var("f.s0.x")}}, Int(1))},
			},
		},
	}
}

func TestValidate_Valid(t *testing.T) {
	if errs := Validate(addOneTree()); len(errs) != 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
}

func TestValidate_Problems(t *testing.T) {
	tests := []struct {
		name string
		tree Stmt
		want string
	}{
		{"nil tree", nil, "statement tree is nil"},
		{"empty loop name", For{Min: Int(0), Extent: Int(1), Body: Evaluate{Value: Int(0)}}, "for has an empty name"},
		{"missing body", LetStmt{Name: "x", Value: Int(0)}, "body: missing statement"},
		{"missing value", Evaluate{}, "value: missing expression"},
		{"no values", Provide{Name: "f"}, "provide f stores no value"},
		{"no types", Realize{Name: "g", Body: Evaluate{Value: Int(0)}}, "realize g has no value types"},
		{"zero lanes", Evaluate{Value: Broadcast{Value: Int(1)}}, "broadcast has 0 lanes"},
		{"empty variable", Evaluate{Value: Variable{Type: Int32}}, "variable has an empty name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.tree)
			if len(errs) == 0 {
				t.Fatal("expected a validation error")
			}
			found := false
			for _, err := range errs {
				if strings.Contains(err.Error(), tt.want) {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v do not mention %q", errs, tt.want)
			}
		})
	}
}

func TestValidate_Path(t *testing.T) {
	tree := Block{Stmts: []Stmt{
		Evaluate{Value: Int(0)},
		For{Name: "x", Min: Int(0), Extent: nil, Body: Evaluate{Value: Int(0)}},
	}}
	errs := Validate(tree)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	if want := "at root:ir.Block/stmt[1]:ir.For: extent: missing expression"; errs[0].Error() != want {
		t.Errorf("error = %q, want %q", errs[0].Error(), want)
	}
}

func TestValidator_MaxDepth(t *testing.T) {
	var tree Stmt = Evaluate{Value: Int(0)}
	for i := 0; i < 20; i++ {
		tree = LetStmt{Name: "v", Value: Int(int64(i)), Body: tree}
	}

	v := &Validator{MaxDepth: 8}
	errs := v.Validate(tree)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want exactly one depth error: %v", len(errs), errs)
	}
	if !errs[0].TooDeep {
		t.Errorf("error %v is not flagged TooDeep", errs[0])
	}

	// The same tree passes with the default bound.
	if errs := Validate(tree); len(errs) != 0 {
		t.Errorf("unexpected errors with default depth: %v", errs)
	}
}
