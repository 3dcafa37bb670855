// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package coli

import (
	"fmt"

	"github.com/gogpu/coligen/ir"
)

// primitiveName returns the COLi primitive type spelling of t.
func primitiveName(t ir.Type) (string, error) {
	switch t.Kind {
	case ir.ScalarUInt:
		switch t.Bits {
		case 8:
			return "coli::p_uint8", nil
		case 16:
			return "coli::p_uint16", nil
		case 32:
			return "coli::p_uint32", nil
		case 64:
			return "coli::p_uint64", nil
		}
		return "", errorf(ErrUnsupportedWidth, "unsigned integers of %d bits are not supported", t.Bits)

	case ir.ScalarInt:
		switch t.Bits {
		case 8:
			return "coli::p_int8", nil
		case 16:
			return "coli::p_int16", nil
		case 32:
			return "coli::p_int32", nil
		case 64:
			return "coli::p_int64", nil
		}
		return "", errorf(ErrUnsupportedWidth, "integers of %d bits are not supported", t.Bits)

	case ir.ScalarFloat:
		switch t.Bits {
		case 32:
			return "coli::p_float32", nil
		case 64:
			return "coli::p_float64", nil
		}
		return "", errorf(ErrUnsupportedWidth, "floats other than 32 and 64 bits are not supported, got %d", t.Bits)

	case ir.ScalarBool:
		return "coli::p_boolean", nil

	default:
		return "", errorf(ErrUnsupportedType, "type %s cannot be translated to a COLi type", t)
	}
}

// literalCast returns the C cast that tags an integer literal of type t
// with its width.
func literalCast(t ir.Type) (string, error) {
	var prefix string
	switch t.Kind {
	case ir.ScalarInt:
		prefix = "int"
	case ir.ScalarUInt:
		prefix = "uint"
	default:
		return "", errorf(ErrUnsupportedType, "type %s is not an integer type", t)
	}
	switch t.Bits {
	case 8, 16, 32, 64:
		return fmt.Sprintf("(%s%d_t)", prefix, t.Bits), nil
	default:
		return "", errorf(ErrUnsupportedWidth, "%s literals of %d bits are not supported", t.Kind, t.Bits)
	}
}
