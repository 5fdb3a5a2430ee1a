// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"encoding/json"
	"time"
)

// Timeout is the maximum duration that a runner should run. It marshals to JSON in the same format that
// time.ParseDuration reads, which is easier to read in results than a count of nanoseconds.
type Timeout time.Duration

func (t Timeout) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(t).String())
}

// Context derives a context from parent that is cancelled after the timeout. A zero or negative Timeout applies no
// deadline; the returned cancel func must be called either way.
func (t Timeout) Context(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if t <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, time.Duration(t))
}
