// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package coli

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"f.s0.x", "_f_s0_x"},
		{"f.s0.x.loop_min", "_f_s0_x_loop_min"},
		{"x$1", "_x__1"},
		{"_tmp", "_tmp"},
		{"0abc", "0abc"},
		{".x", "_x"},
		{"a-b", "_a___b"},
		{"a b", "_a___b"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitize_Collision(t *testing.T) {
	// Distinct names may map to the same identifier.
	if Sanitize("a.b") != Sanitize("a_b") {
		t.Errorf("Sanitize(\"a.b\") = %q, Sanitize(\"a_b\") = %q; expected a collision", Sanitize("a.b"), Sanitize("a_b"))
	}
}

func TestSanitize_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("idempotent", prop.ForAll(
		func(s string) bool {
			once := Sanitize(s)
			return Sanitize(once) == once
		},
		gen.AnyString(),
	))

	properties.Property("deterministic", prop.ForAll(
		func(s string) bool {
			return Sanitize(s) == Sanitize(s)
		},
		gen.AnyString(),
	))

	properties.Property("output is a C identifier body", prop.ForAll(
		func(s string) bool {
			out := Sanitize(s)
			for i := 0; i < len(out); i++ {
				if out[i] != '_' && !isAlnum(out[i]) {
					return false
				}
			}
			return len(s) == 0 || !isAlpha(out[0])
		},
		gen.AnyString(),
	))

	properties.Property("letters get a leading underscore", prop.ForAll(
		func(s string) bool {
			if s == "" {
				return Sanitize(s) == ""
			}
			return Sanitize(s) == "_"+s
		},
		gen.AlphaString(),
	))

	properties.Property("dots become underscores", prop.ForAll(
		func(a, b string) bool {
			return Sanitize(a+"."+b) == "_"+a+"_"+b
		},
		gen.Identifier(),
		gen.Identifier(),
	))

	properties.Property("dollars become double underscores", prop.ForAll(
		func(a, b string) bool {
			return Sanitize(a+"$"+b) == "_"+a+"__"+b
		},
		gen.Identifier(),
		gen.Identifier(),
	))

	properties.TestingRun(t)
}

func TestBufferName(t *testing.T) {
	if got := bufferName("f"); got != "buff_f" {
		t.Errorf("bufferName(\"f\") = %q, want \"buff_f\"", got)
	}
}
