// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package coli

import "fmt"

// ErrorKind categorizes COLi generation errors.
type ErrorKind uint8

const (
	// ErrUnsupportedConstruct indicates a node kind the generator cannot translate.
	ErrUnsupportedConstruct ErrorKind = iota

	// ErrUnsupportedWidth indicates a literal or element type with an unsupported bit width.
	ErrUnsupportedWidth

	// ErrUnsupportedType indicates a type that has no COLi primitive.
	ErrUnsupportedType

	// ErrDuplicateBuffer indicates a buffer declared twice.
	ErrDuplicateBuffer

	// ErrDuplicateComputation indicates a computation declared twice.
	ErrDuplicateComputation

	// ErrDuplicateConstant indicates a constant declared twice.
	ErrDuplicateConstant

	// ErrUnknownComputation indicates a call to a computation that was never declared.
	ErrUnknownComputation

	// ErrMalformedStore indicates a provide with a missing destination,
	// non-variable indices or more than one value.
	ErrMalformedStore

	// ErrUnsupportedRealize indicates a realize with non-zero lower bounds
	// or mixed element types.
	ErrUnsupportedRealize

	// ErrInvalidPipeline indicates a malformed output or input description.
	ErrInvalidPipeline

	// ErrInvalidTree indicates a structurally malformed statement tree.
	ErrInvalidTree

	// ErrDepthExceeded indicates a tree nested deeper than Options.MaxDepth.
	ErrDepthExceeded

	// ErrUnboundName indicates a lookup of a name with no scope binding.
	ErrUnboundName

	// ErrInternal indicates a broken contract between the generator and
	// the passes that prepare its input.
	ErrInternal
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnsupportedConstruct:
		return "UnsupportedConstruct"
	case ErrUnsupportedWidth:
		return "UnsupportedWidth"
	case ErrUnsupportedType:
		return "UnsupportedType"
	case ErrDuplicateBuffer:
		return "DuplicateBuffer"
	case ErrDuplicateComputation:
		return "DuplicateComputation"
	case ErrDuplicateConstant:
		return "DuplicateConstant"
	case ErrUnknownComputation:
		return "UnknownComputation"
	case ErrMalformedStore:
		return "MalformedStore"
	case ErrUnsupportedRealize:
		return "UnsupportedRealize"
	case ErrInvalidPipeline:
		return "InvalidPipeline"
	case ErrInvalidTree:
		return "InvalidTree"
	case ErrDepthExceeded:
		return "DepthExceeded"
	case ErrUnboundName:
		return "UnboundName"
	case ErrInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Tier separates errors caused by the input program from errors caused by
// a broken contract with the caller.
type Tier uint8

const (
	// TierUser errors describe input the generator does not support.
	TierUser Tier = iota

	// TierInternal errors describe input the preparing passes should never produce.
	TierInternal
)

// String returns the tier name.
func (t Tier) String() string {
	if t == TierInternal {
		return "internal"
	}
	return "user"
}

// Tier returns the tier the kind belongs to.
func (k ErrorKind) Tier() Tier {
	switch k {
	case ErrUnboundName, ErrInternal:
		return TierInternal
	default:
		return TierUser
	}
}

// Error represents a COLi generation error.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Message provides details about the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Kind.Tier() == TierInternal {
		return fmt.Sprintf("coli internal error (%s): %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("coli %s: %s", e.Kind, e.Message)
}

// NewError creates a new COLi error.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

func errorf(kind ErrorKind, format string, args ...any) *Error {
	return NewError(kind, fmt.Sprintf(format, args...))
}

// IsInternal returns true if the error signals a broken input contract.
func (e *Error) IsInternal() bool {
	return e.Kind.Tier() == TierInternal
}

// IsUnsupported returns true if the error is one of the unsupported-input kinds.
func (e *Error) IsUnsupported() bool {
	switch e.Kind {
	case ErrUnsupportedConstruct, ErrUnsupportedWidth, ErrUnsupportedType, ErrUnsupportedRealize:
		return true
	default:
		return false
	}
}
