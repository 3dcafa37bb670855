// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package coli

import "strings"

// BufferPrefix is prepended to a function or input name to form the name of
// the buffer that stores it.
const BufferPrefix = "buff_"

// Sanitize maps an IR identifier to a valid C++ identifier.
//
// A name starting with an ASCII letter gets a leading underscore, which keeps
// it clear of C++ keywords. Then '.' becomes "_", '$' becomes "__" and any
// other byte that is not alphanumeric or '_' becomes "___".
//
// The result never starts with a letter and contains only [A-Za-z0-9_], so
// Sanitize is idempotent. Distinct inputs may collide ("a.b" and "a_b").
func Sanitize(name string) string {
	if name == "" {
		return ""
	}

	var sb strings.Builder
	sb.Grow(len(name) + 1)
	if isAlpha(name[0]) {
		sb.WriteByte('_')
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '.':
			sb.WriteByte('_')
		case c == '$':
			sb.WriteString("__")
		case c != '_' && !isAlnum(c):
			sb.WriteString("___")
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnum(c byte) bool {
	return isAlpha(c) || (c >= '0' && c <= '9')
}

// bufferName returns the buffer name for a function or input.
func bufferName(name string) string {
	return BufferPrefix + name
}
