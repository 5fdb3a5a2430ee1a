// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package op

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	censorID  = "censor inplace"
	censorOut = map[string]any{"censored": 11}
	errSink   = errors.New("sink: broken pipe")
)

func TestNew(t *testing.T) {
	start := time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)
	end := start.Add(535 * time.Millisecond)

	o := New(censorID, censorOut, Unknown, errSink, map[string]any{"strategy": "inplace"}, start, end)

	assert.Equal(t, censorID, o.Identifier)
	assert.Equal(t, censorOut, o.Result)
	assert.Equal(t, errSink, o.Error)
	assert.Equal(t, errSink.Error(), o.ErrString)
	assert.Equal(t, Unknown, o.Status)
	assert.Equal(t, 535*time.Millisecond, o.Duration())
}

func TestNew_NoError(t *testing.T) {
	o := New(censorID, nil, Success, nil, nil, time.Time{}, time.Time{})
	assert.NoError(t, o.Error)
	assert.Empty(t, o.ErrString)
}

func TestStatusCounts(t *testing.T) {
	testTable := []struct {
		desc   string
		ops    []Op
		expect map[Status]int
	}{
		{
			desc:   "Handles empty ops",
			ops:    []Op{},
			expect: map[Status]int{},
		},
		{
			desc: "Counts every status",
			ops: []Op{
				{Identifier: "a", Status: Success},
				{Identifier: "b", Status: Success},
				{Identifier: "c", Status: Fail},
				{Identifier: "d", Status: Unknown},
				{Identifier: "e", Status: Skip},
			},
			expect: map[Status]int{Success: 2, Fail: 1, Unknown: 1, Skip: 1},
		},
	}

	for _, tc := range testTable {
		t.Run(tc.desc, func(t *testing.T) {
			counts, err := StatusCounts(tc.ops)
			require.NoError(t, err)
			assert.Equal(t, tc.expect, counts)
		})
	}
}

func TestStatusCounts_NotRun(t *testing.T) {
	_, err := StatusCounts([]Op{{Identifier: "pending"}})
	assert.Error(t, err)
}
