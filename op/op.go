// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package op

import (
	"fmt"
	"time"
)

// Status describes the result of an op
type Status string

const (
	// Success means all systems green
	Success Status = "success"
	// Fail means that we detected a known error and can conclusively say that the op did not complete, and that it
	// produced no output.
	Fail Status = "fail"
	// Unknown means that we detected an error and the result is indeterminate, e.g. some output may already have
	// reached the sink before a write failed.
	Unknown Status = "unknown"
	// Skip means the op was deliberately not run.
	Skip Status = "skip"
)

// Op is the record of a single runner execution.
type Op struct {
	Identifier string                 `json:"-"`
	Result     map[string]any         `json:"result"`
	ErrString  string                 `json:"error"` // this simplifies json marshaling
	Error      error                  `json:"-"`
	Status     Status                 `json:"status"`
	Params     map[string]interface{} `json:"params,omitempty"`
	Start      time.Time              `json:"start"`
	End        time.Time              `json:"end"`
}

// New takes the output of a runner and produces an Op, stringifying the error so it survives JSON marshaling.
func New(id string, result map[string]any, status Status, err error, params map[string]any, start time.Time, end time.Time) Op {
	var errString string
	if err != nil {
		errString = err.Error()
	}
	return Op{
		Identifier: id,
		Result:     result,
		Error:      err,
		ErrString:  errString,
		Status:     status,
		Params:     params,
		Start:      start,
		End:        end,
	}
}

// Duration reports how long the op ran.
func (o Op) Duration() time.Duration {
	return o.End.Sub(o.Start)
}

// StatusCounts takes a slice of ops and returns a map containing sums of each Status
func StatusCounts(ops []Op) (map[Status]int, error) {
	statuses := make(map[Status]int)
	for _, o := range ops {
		if o.Status == "" {
			return nil, fmt.Errorf("unable to build Statuses map, op not run: op=%s", o.Identifier)
		}
		statuses[o.Status]++
	}
	return statuses, nil
}
