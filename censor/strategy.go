// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package censor

import (
	"context"
	"io"
	"strings"
)

// Strategy selects how the digits are censored.
type Strategy string

const (
	// Iterative materializes the whole censored suffix before writing it. See Stream.
	Iterative Strategy = "iterative"
	// InPlace censors a reusable buffer chunk by chunk. See Chunk.
	InPlace Strategy = "inplace"
)

// Strategies returns every known Strategy in a stable order.
func Strategies() []Strategy {
	return []Strategy{Iterative, InPlace}
}

// ParseStrategy matches name against the known strategies, ignoring case and surrounding whitespace.
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Strategies() {
		if s == known {
			return s, nil
		}
	}
	return "", UnknownStrategyError{Name: name}
}

// Options picks a strategy and its tuning. The zero value runs InPlace with DefaultChunkSize.
type Options struct {
	Strategy  Strategy `json:"strategy"`
	ChunkSize int      `json:"chunk_size"`
}

// Run censors pi into w with the selected strategy and returns the number of censored digits.
func (o Options) Run(ctx context.Context, pi string, w io.Writer) (int, error) {
	switch o.Strategy {
	case Iterative:
		return Stream(ctx, pi, w)
	case InPlace, "":
		return Chunk(ctx, pi, w, o.ChunkSize)
	default:
		return 0, UnknownStrategyError{Name: string(o.Strategy)}
	}
}
