// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package hcl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/hashicorp/censoredpi/censor"
	"github.com/hashicorp/censoredpi/digits"
	"github.com/hashicorp/censoredpi/redact"
	"github.com/hashicorp/censoredpi/runner"
	"github.com/hashicorp/censoredpi/runner/do"
	"github.com/hashicorp/censoredpi/sink"
)

// DefaultIterations is how many times each strategy runs during a bench when the config does not say.
const DefaultIterations = 5

type HCL struct {
	Input  *Input  `hcl:"input,block" json:"input"`
	Censor *Censor `hcl:"censor,block" json:"censor"`
	Output *Output `hcl:"output,block" json:"output"`
	Bench  *Bench  `hcl:"bench,block" json:"bench"`

	Redactions []Redact `hcl:"redact,block" json:"redactions"`
}

// Input describes where the digits come from. Path wins over Synthetic.
type Input struct {
	Path      string `hcl:"path,optional" json:"path"`
	Synthetic int    `hcl:"synthetic,optional" json:"synthetic"`
}

type Censor struct {
	Strategy  string `hcl:"strategy,optional" json:"strategy"`
	ChunkSize int    `hcl:"chunk_size,optional" json:"chunk_size"`
	Timeout   string `hcl:"timeout,optional" json:"timeout"`
}

type Output struct {
	Path       string `hcl:"path,optional" json:"path"`
	Async      bool   `hcl:"async,optional" json:"async"`
	QueueDepth int    `hcl:"queue_depth,optional" json:"queue_depth"`
}

type Bench struct {
	Iterations int      `hcl:"iterations,optional" json:"iterations"`
	ChunkSizes []int    `hcl:"chunk_sizes,optional" json:"chunk_sizes"`
	Selects    []string `hcl:"selects,optional" json:"selects"`
	Excludes   []string `hcl:"excludes,optional" json:"excludes"`
}

// Redact describes text to hide from the host info in a results bundle. The label is either "regex" or "literal".
type Redact struct {
	Label   string `hcl:"name,label" json:"name"`
	ID      string `hcl:"id,optional" json:"id"`
	Match   string `hcl:"match" json:"match"`
	Replace string `hcl:"replace,optional" json:"replace"`
}

// Parse takes a file path and decodes the file from disk into HCL types.
func Parse(path string) (HCL, error) {
	var h HCL
	err := hclsimple.DecodeFile(path, nil, &h)
	if err != nil {
		return HCL{}, err
	}
	return h, nil
}

// Options maps a censor block onto censor.Options and a runner timeout. A nil block yields the defaults.
func Options(cfg *Censor) (censor.Options, runner.Timeout, error) {
	if cfg == nil {
		return censor.Options{Strategy: censor.InPlace}, 0, nil
	}

	opts := censor.Options{Strategy: censor.InPlace, ChunkSize: cfg.ChunkSize}
	if cfg.Strategy != "" {
		s, err := censor.ParseStrategy(cfg.Strategy)
		if err != nil {
			return censor.Options{}, 0, err
		}
		opts.Strategy = s
	}
	if cfg.ChunkSize < 0 {
		return censor.Options{}, 0, fmt.Errorf("chunk_size must not be negative, chunk_size=%d", cfg.ChunkSize)
	}

	var timeout runner.Timeout
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return censor.Options{}, 0, err
		}
		timeout = runner.Timeout(d)
	}
	return opts, timeout, nil
}

// MapRedacts validates redact blocks and compiles them, keeping their order.
func MapRedacts(redactions []Redact) ([]*redact.Redact, error) {
	if err := ValidateRedactions(redactions); err != nil {
		return nil, err
	}

	s := make([]*redact.Redact, len(redactions))
	for i, r := range redactions {
		red, err := redact.New(redact.Config{
			Matcher: r.Match,
			Literal: r.Label == "literal",
			ID:      r.ID,
			Replace: r.Replace,
		})
		if err != nil {
			return nil, err
		}
		s[i] = red
	}
	return s, nil
}

// ValidateRedactions takes a slice of redactions and ensures they match valid names.
func ValidateRedactions(redactions []Redact) error {
	for _, r := range redactions {
		switch r.Label {
		case "regex", "literal":
			if r.Match == "" {
				return fmt.Errorf("redact %s needs a match", r.Label)
			}
		default:
			return fmt.Errorf("invalid redact name, name=%s", r.Label)
		}
	}
	return nil
}

// SyntheticSeed seeds synthetic inputs, so that every run of a config censors the same digits.
const SyntheticSeed uint64 = 314159

// ErrNoInput is returned by Digits when an input block names neither a path nor a synthetic length.
var ErrNoInput = errors.New("no input, set a path or a synthetic length")

// Digits loads the digits an input block describes.
func Digits(in *Input) (string, error) {
	switch {
	case in == nil:
		return "", ErrNoInput
	case in.Path != "":
		return digits.Load(in.Path)
	case in.Synthetic > 0:
		return digits.Synthetic(in.Synthetic, SyntheticSeed), nil
	case in.Synthetic < 0:
		return "", fmt.Errorf("synthetic must not be negative, synthetic=%d", in.Synthetic)
	default:
		return "", ErrNoInput
	}
}

// Sink returns a factory for the writer an output block describes. A nil block, or an empty path, writes to standard
// output.
func Sink(out *Output) (runner.SinkFactory, error) {
	if out == nil {
		out = &Output{}
	}
	if out.QueueDepth < 0 {
		return nil, fmt.Errorf("queue_depth must not be negative, queue_depth=%d", out.QueueDepth)
	}
	path := out.Path
	if path == "" {
		path = sink.Stdout
	}

	return func() (io.Writer, error) {
		w, err := sink.Open(path)
		if err != nil {
			return nil, err
		}
		if out.Async {
			return sink.NewAsync(w, out.QueueDepth), nil
		}
		return w, nil
	}, nil
}

// Variant is one strategy configuration compared during a bench.
type Variant struct {
	Label   string
	Options censor.Options
}

// Variants lists what a bench compares: every strategy at its default tuning, plus the in-place strategy at each
// extra chunk size.
func Variants(b *Bench) []Variant {
	var variants []Variant
	for _, s := range censor.Strategies() {
		variants = append(variants, Variant{Label: string(s), Options: censor.Options{Strategy: s}})
	}
	if b == nil {
		return variants
	}
	for _, size := range b.ChunkSizes {
		variants = append(variants, Variant{
			Label:   fmt.Sprintf("%s %d", censor.InPlace, size),
			Options: censor.Options{Strategy: censor.InPlace, ChunkSize: size},
		})
	}
	return variants
}

// BuildRunners steps through the bench config and produces one Seq per variant. Each Seq runs the variant the
// configured number of times, measuring allocations around every run. No runners are returned if any config is
// invalid. The censor runs stop once ctx is done.
func BuildRunners(ctx context.Context, b *Bench, timeout runner.Timeout, digits string, sink runner.SinkFactory, l hclog.Logger) ([]runner.Runner, error) {
	iterations := DefaultIterations
	if b != nil && b.Iterations != 0 {
		iterations = b.Iterations
	}
	if iterations < 0 {
		return nil, fmt.Errorf("iterations must not be negative, iterations=%d", iterations)
	}
	if b != nil {
		seen := make(map[int]bool, len(b.ChunkSizes))
		for _, size := range b.ChunkSizes {
			if size < 1 {
				return nil, fmt.Errorf("chunk_sizes must be at least 1, chunk_size=%d", size)
			}
			// Every variant becomes a runner ID, and results are keyed by ID.
			if seen[size] {
				return nil, fmt.Errorf("chunk_sizes must not repeat, chunk_size=%d", size)
			}
			seen[size] = true
		}
	}

	variants := Variants(b)
	runners := make([]runner.Runner, 0, len(variants))
	for _, v := range variants {
		seqRunners := make([]runner.Runner, iterations)
		for i := range seqRunners {
			c := runner.NewCensorWithContext(ctx, runner.CensorConfig{
				Label:   fmt.Sprintf("%s #%d", v.Label, i+1),
				Digits:  digits,
				Options: v.Options,
				Sink:    sink,
				Timeout: timeout,
				Logger:  l,
			})
			seqRunners[i] = runner.NewAllocations(c, l)
		}
		runners = append(runners, do.NewSeq(do.SeqConfig{
			Label:       v.Label,
			Description: fmt.Sprintf("%d measured runs of the %s strategy", iterations, v.Label),
			Runners:     seqRunners,
			Logger:      l,
		}))
	}
	return runners, nil
}
