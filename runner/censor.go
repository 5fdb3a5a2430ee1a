// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp/censoredpi/censor"
	"github.com/hashicorp/censoredpi/op"
	"github.com/hashicorp/censoredpi/sink"
)

var _ Runner = Censor{}

// SinkFactory opens a fresh sink for every run. If the returned writer is also an io.Closer, it is closed after the
// run.
type SinkFactory func() (io.Writer, error)

// DiscardSink is the default SinkFactory. It throws the output away, which isolates the cost of censoring.
func DiscardSink() (io.Writer, error) {
	return &sink.Discard{}, nil
}

type CensorConfig struct {
	// Label distinguishes runners that share a strategy. It defaults to the strategy name.
	Label   string
	Digits  string
	Options censor.Options
	Sink    SinkFactory
	Timeout Timeout
	Logger  hclog.Logger
}

// Censor runs one censorship strategy over a digit string.
type Censor struct {
	Label       string         `json:"label"`
	Options     censor.Options `json:"options"`
	InputLength int            `json:"input_length"`
	Timeout     Timeout        `json:"timeout"`

	digits  string
	newSink SinkFactory
	ctx     context.Context
	log     hclog.Logger
}

// NewCensor initializes a Censor runner.
func NewCensor(cfg CensorConfig) *Censor {
	return NewCensorWithContext(context.Background(), cfg)
}

func NewCensorWithContext(ctx context.Context, cfg CensorConfig) *Censor {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Label == "" {
		cfg.Label = string(cfg.Options.Strategy)
		if cfg.Label == "" {
			cfg.Label = string(censor.InPlace)
		}
	}
	if cfg.Sink == nil {
		cfg.Sink = DiscardSink
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.L()
	}
	return &Censor{
		Label:       cfg.Label,
		Options:     cfg.Options,
		InputLength: len(cfg.Digits),
		Timeout:     cfg.Timeout,
		digits:      cfg.Digits,
		newSink:     cfg.Sink,
		ctx:         ctx,
		log:         cfg.Logger,
	}
}

func (c Censor) ID() string {
	return "censor " + c.Label
}

// Run censors the digits into a new sink. Malformed input fails the op before the sink is opened, so an existing file
// is left as it was. A sink failure leaves the op's status unknown, since part of the output may already be in the
// sink.
func (c Censor) Run() op.Op {
	startTime := time.Now()

	if _, _, err := censor.Split(c.digits); err != nil {
		return op.New(c.ID(), nil, op.Fail, err, Params(c), startTime, time.Now())
	}

	w, err := c.newSink()
	if err != nil {
		return op.New(c.ID(), nil, op.Fail, SinkError{Action: "open", err: err}, Params(c), startTime, time.Now())
	}

	ctx, cancel := c.Timeout.Context(c.ctx)
	defer cancel()

	counter := &countingWriter{w: w}
	count, err := c.Options.Run(ctx, c.digits, counter)

	if closer, ok := w.(io.Closer); ok {
		if closeErr := closer.Close(); closeErr != nil && err == nil {
			err = SinkError{Action: "close", err: closeErr}
		}
	}

	result := map[string]any{
		"censored":      count,
		"bytes_written": counter.bytes,
		"writes":        counter.writes,
	}

	switch {
	case err == nil:
		c.log.Debug("censored digits", "runner", c.ID(), "censored", count)
		return op.New(c.ID(), result, op.Success, nil, Params(c), startTime, time.Now())
	case errors.Is(err, censor.ErrMalformedInput), errors.As(err, new(censor.UnknownStrategyError)):
		return op.New(c.ID(), result, op.Fail, err, Params(c), startTime, time.Now())
	default:
		c.log.Warn("censor run did not complete", "runner", c.ID(), "bytes_written", counter.bytes, "error", err)
		return op.New(c.ID(), result, op.Unknown, err, Params(c), startTime, time.Now())
	}
}

// countingWriter records how much of the output reached the sink.
type countingWriter struct {
	w      io.Writer
	bytes  int64
	writes int
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.bytes += int64(n)
	cw.writes++
	return n, err
}

// SinkError is returned when a sink cannot be opened or closed, as opposed to failing a write.
type SinkError struct {
	Action string
	err    error
}

func (e SinkError) Error() string {
	return fmt.Sprintf("unable to %s sink, error=%s", e.Action, e.err)
}

func (e SinkError) Unwrap() error {
	return e.err
}
