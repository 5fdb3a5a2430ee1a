// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package censor

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput is matched by every MalformedInputError.
	ErrMalformedInput = errors.New("malformed input")

	// ErrSinkWrite is matched by every SinkWriteError.
	ErrSinkWrite = errors.New("sink write failed")
)

// MalformedKind describes which part of the input's structure was missing or wrong.
type MalformedKind string

const (
	// MissingSeparator means the input has no '.' between the integer part and the digits.
	MissingSeparator MalformedKind = "missing separator"
	// UnexpectedIntegerPart means the part before the separator is not "3".
	UnexpectedIntegerPart MalformedKind = "unexpected integer part"
	// ExtraSeparator means a second '.' appears in the fractional digits.
	ExtraSeparator MalformedKind = "extra separator"
)

// previewLength bounds how much of the input is quoted in error messages.
const previewLength = 16

// MalformedInputError is returned before any write when the input does not look like "3.<digits>".
type MalformedInputError struct {
	Kind  MalformedKind
	Input string
}

func newMalformedInputError(kind MalformedKind, input string) MalformedInputError {
	if len(input) > previewLength {
		input = input[:previewLength] + "..."
	}
	return MalformedInputError{Kind: kind, Input: input}
}

func (e MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input: %s, input=%q", e.Kind, e.Input)
}

func (e MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

// SinkWriteError wraps an error returned by the output sink. Step names the write that failed and Offset is the
// number of output bytes accepted before it. Anything already written stays written.
type SinkWriteError struct {
	Step   string
	Offset int
	err    error
}

func (e SinkWriteError) Error() string {
	return fmt.Sprintf("sink write error, step=%s, offset=%d, error=%s", e.Step, e.Offset, e.err)
}

func (e SinkWriteError) Unwrap() error {
	return e.err
}

func (e SinkWriteError) Is(target error) bool {
	return target == ErrSinkWrite
}

// UnknownStrategyError is returned when a strategy name does not match any known Strategy.
type UnknownStrategyError struct {
	Name string
}

func (e UnknownStrategyError) Error() string {
	return fmt.Sprintf("unknown strategy: must be one of %v, strategy=%s", Strategies(), e.Name)
}
