// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/hashicorp/censoredpi/op"
)

var _ Runner = Allocations{}

// Allocations wraps a runner and measures the heap allocations made while it runs, along with the process's resident
// set size before and after. The heap figures come from the Go runtime and cover the whole process, so runners should
// not be measured concurrently.
type Allocations struct {
	Runner Runner `json:"runner"`
	log    hclog.Logger
}

// Measurement is the result of an Allocations run.
type Measurement struct {
	BytesAllocated uint64 `json:"bytes_allocated"`
	Allocations    uint64 `json:"allocations"`
	RSSBefore      uint64 `json:"rss_before,omitempty"`
	RSSAfter       uint64 `json:"rss_after,omitempty"`
}

func NewAllocations(r Runner, l hclog.Logger) *Allocations {
	if l == nil {
		l = hclog.L()
	}
	return &Allocations{
		Runner: r,
		log:    l,
	}
}

func (a Allocations) ID() string {
	return "alloc " + a.Runner.ID()
}

// Run collects garbage, snapshots memory statistics, runs the wrapped runner, and snapshots again. The wrapped runner's
// status and error are passed through. RSS is best-effort: if the platform cannot report it, the fields are left empty.
func (a Allocations) Run() op.Op {
	startTime := time.Now()

	runtime.GC()
	var before, after runtime.MemStats
	rssBefore := a.rss()
	runtime.ReadMemStats(&before)

	o := a.Runner.Run()

	runtime.ReadMemStats(&after)
	rssAfter := a.rss()

	m := Measurement{
		BytesAllocated: after.TotalAlloc - before.TotalAlloc,
		Allocations:    after.Mallocs - before.Mallocs,
		RSSBefore:      rssBefore,
		RSSAfter:       rssAfter,
	}
	a.log.Debug("measured allocations", "runner", a.Runner.ID(), "bytes", m.BytesAllocated, "allocations", m.Allocations)

	result := map[string]any{
		"measurement": m,
		"op":          o,
	}

	return op.New(a.ID(), result, o.Status, ChildError(a.ID(), o), Params(a), startTime, time.Now())
}

func (a Allocations) rss() uint64 {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		a.log.Trace("unable to inspect process", "error", err)
		return 0
	}
	info, err := p.MemoryInfo()
	if err != nil || info == nil {
		a.log.Trace("unable to read process memory", "error", err)
		return 0
	}
	return info.RSS
}

// MeasurementOf extracts the Measurement from an op produced by an Allocations runner.
func MeasurementOf(o op.Op) (Measurement, bool) {
	m, ok := o.Result["measurement"].(Measurement)
	return m, ok
}

// ChildError wraps the error of an op produced by a runner that parent ran. It returns nil if the op has no error.
func ChildError(parent string, o op.Op) error {
	if o.Error == nil {
		return nil
	}
	return ChildRunnerError{Parent: parent, Child: o.Identifier, err: o.Error}
}

// ChildRunnerError wraps the error of a runner that was run by another runner.
type ChildRunnerError struct {
	Parent string
	Child  string
	err    error
}

func (e ChildRunnerError) Error() string {
	return fmt.Sprintf("error in child runner, parent=%s, child=%s, err=%s", e.Parent, e.Child, e.Unwrap().Error())
}

func (e ChildRunnerError) Unwrap() error {
	return e.err
}
