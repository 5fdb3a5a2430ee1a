// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package censor

import (
	"context"
	"io"
	"iter"
)

// Stream censors pi by materializing the whole censored suffix in memory, then writing the integer part, the
// separator and the censored suffix to w, in that order. Nothing is written until the suffix is fully censored.
// It returns the number of censored digits.
func Stream(ctx context.Context, pi string, w io.Writer) (int, error) {
	integer, suffix, err := Split(pi)
	if err != nil {
		return 0, err
	}

	count := 0
	censored := make([]byte, 0, len(suffix))
	for c := range censoredDigits(suffix, &count) {
		censored = append(censored, c)
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	sw := &stepWriter{w: w}
	if err := sw.write("integer part", []byte(integer)); err != nil {
		return 0, err
	}
	if err := sw.write("separator", []byte(Separator)); err != nil {
		return 0, err
	}
	if err := sw.write("suffix", censored); err != nil {
		return 0, err
	}

	return count, nil
}

// censoredDigits yields the digits of suffix with censored positions replaced by Marker, incrementing count for each
// one. The sequence is single-use: it owns its own previous digit.
func censoredDigits(suffix string, count *int) iter.Seq[byte] {
	return func(yield func(byte) bool) {
		previous := Sentinel
		for i := 0; i < len(suffix); i++ {
			var censored bool
			c := suffix[i]
			censored, previous = Rule(previous, c)
			if censored {
				*count++
				c = Marker
			}
			if !yield(c) {
				return
			}
		}
	}
}

// stepWriter tracks the output offset so a failed write can report where the output stopped.
type stepWriter struct {
	w      io.Writer
	offset int
}

func (s *stepWriter) write(step string, p []byte) error {
	n, err := s.w.Write(p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return SinkWriteError{Step: step, Offset: s.offset + n, err: err}
	}
	s.offset += n
	return nil
}
