// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package agent

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/hashicorp/censoredpi/op"
	"github.com/hashicorp/censoredpi/runner"
	"github.com/hashicorp/censoredpi/runner/do"
)

// Summary condenses one strategy's measured runs.
type Summary struct {
	Runner       string        `json:"runner"`
	Status       op.Status     `json:"status"`
	Runs         int           `json:"runs"`
	Censored     int           `json:"censored"`
	MeanBytes    uint64        `json:"mean_bytes_allocated"`
	MeanAllocs   uint64        `json:"mean_allocations"`
	MeanDuration time.Duration `json:"mean_duration"`
}

// Summaries returns a Summary for every runner that has run, in the order the runners were built. Only successful runs
// count towards the means.
func (a *Agent) Summaries() []Summary {
	summaries := make([]Summary, 0, len(a.results))
	for _, r := range a.runners {
		o, ok := a.results[r.ID()]
		if !ok {
			continue
		}

		s := Summary{Runner: r.ID(), Status: o.Status}
		var bytes, allocs uint64
		var elapsed time.Duration
		for _, child := range do.Ops(o) {
			if child.Status != op.Success {
				continue
			}
			m, ok := runner.MeasurementOf(child)
			if !ok {
				continue
			}
			s.Runs++
			bytes += m.BytesAllocated
			allocs += m.Allocations
			if inner, ok := child.Result["op"].(op.Op); ok {
				elapsed += inner.Duration()
				if censored, ok := inner.Result["censored"].(int); ok {
					s.Censored = censored
				}
			}
		}
		if s.Runs > 0 {
			s.MeanBytes = bytes / uint64(s.Runs)
			s.MeanAllocs = allocs / uint64(s.Runs)
			s.MeanDuration = elapsed / time.Duration(s.Runs)
		}
		summaries = append(summaries, s)
	}
	return summaries
}

// WriteSummary writes a table comparing the strategies to w.
func (a *Agent) WriteSummary(w io.Writer) error {
	t := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(t, "runner\tstatus\truns\tcensored\tbytes/run\tallocs/run\ttime/run"); err != nil {
		return err
	}
	for _, s := range a.Summaries() {
		if _, err := fmt.Fprintf(t, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			s.Runner, s.Status, s.Runs, s.Censored, s.MeanBytes, s.MeanAllocs, s.MeanDuration); err != nil {
			return err
		}
	}
	return t.Flush()
}
