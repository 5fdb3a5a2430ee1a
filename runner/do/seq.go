// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package do

import (
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp/censoredpi/op"
	"github.com/hashicorp/censoredpi/runner"
)

var _ runner.Runner = Seq{}

type SeqConfig struct {
	Runners     []runner.Runner
	Label       string
	Description string
	Logger      hclog.Logger
}

// Seq wraps a collection of runners and executes them in order, returning all of their Ops keyed by their ID(). If one
// of the runners has a status other than Success, subsequent runners will not be executed and the Seq will return
// that runner's status.
type Seq struct {
	Runners     []runner.Runner `json:"runners"`
	Label       string          `json:"label"`
	Description string          `json:"description"`
	log         hclog.Logger
}

// NewSeq initializes a Seq runner.
func NewSeq(cfg SeqConfig) *Seq {
	if cfg.Logger == nil {
		cfg.Logger = hclog.L()
	}
	return &Seq{
		Label:       cfg.Label,
		Description: cfg.Description,
		Runners:     cfg.Runners,
		log:         cfg.Logger,
	}
}

func (d Seq) ID() string {
	return "seq " + d.Label
}

// Run executes the runners in order
func (d Seq) Run() op.Op {
	startTime := time.Now()
	results := make(map[string]any, len(d.Runners))

	for _, r := range d.Runners {
		d.log.Info("running operation", "runner", r.ID())
		o := r.Run()
		results[o.Identifier] = o
		// If any result op is not Success, abort and return all existing ops
		if o.Status != op.Success {
			return op.New(d.ID(), results, o.Status, runner.ChildError(d.ID(), o), runner.Params(d), startTime, time.Now())
		}
	}
	return op.New(d.ID(), results, op.Success, nil, runner.Params(d), startTime, time.Now())
}

// Ops returns the child ops recorded by a Seq run, in no particular order.
func Ops(o op.Op) []op.Op {
	ops := make([]op.Op, 0, len(o.Result))
	for _, v := range o.Result {
		if child, ok := v.(op.Op); ok {
			ops = append(ops, child)
		}
	}
	return ops
}
