// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package censor

import (
	"context"
	"io"
)

// DefaultChunkSize bounds each write to 4KB, the largest write many HTTP servers accept without allocating.
const DefaultChunkSize = 4096

// Chunk censors pi one chunk at a time. The prefix is written once, then each chunk of at most size bytes is copied
// into a single buffer owned by this call, censored in place and written. The previous digit carries across chunk
// boundaries, so the output is identical to Stream for any size. A size of zero or less uses DefaultChunkSize.
//
// ctx is checked before every write. On cancellation or a sink error, chunks already written stay written.
func Chunk(ctx context.Context, pi string, w io.Writer, size int) (int, error) {
	if size <= 0 {
		size = DefaultChunkSize
	}

	_, suffix, err := Split(pi)
	if err != nil {
		return 0, err
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	sw := &stepWriter{w: w}
	if err := sw.write("prefix", []byte(Prefix)); err != nil {
		return 0, err
	}

	// Never larger than the suffix, so short inputs don't pay for a full chunk.
	buf := make([]byte, min(size, len(suffix)))

	count := 0
	previous := Sentinel
	remaining := suffix
	for len(remaining) > 0 {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		n := copy(buf, remaining)
		remaining = remaining[n:]

		count += censorInPlace(buf[:n], &previous)
		if err := sw.write("chunk", buf[:n]); err != nil {
			return 0, err
		}
	}

	return count, nil
}
