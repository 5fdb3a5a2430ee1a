// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package sink provides destinations for censored output. Every sink is an io.Writer that accepts ordered writes
// from a single writer at a time.
package sink

import (
	"bytes"
	"io"
	"os"

	"github.com/mitchellh/go-homedir"
)

var (
	_ io.Writer = &Discard{}
	_ io.Writer = &Memory{}
)

// Stdout is the path that makes Open write to standard output.
const Stdout = "-"

// Discard is a null device that only counts what it is given.
type Discard struct {
	Bytes  int64 `json:"bytes"`
	Writes int   `json:"writes"`
}

func (d *Discard) Write(p []byte) (int, error) {
	d.Bytes += int64(len(p))
	d.Writes++
	return len(p), nil
}

// Memory keeps everything written to it, along with the boundaries of each write.
type Memory struct {
	buf    bytes.Buffer
	writes []int
}

func (m *Memory) Write(p []byte) (int, error) {
	m.writes = append(m.writes, len(p))
	return m.buf.Write(p)
}

// Bytes returns the concatenation of every write.
func (m *Memory) Bytes() []byte {
	return m.buf.Bytes()
}

func (m *Memory) String() string {
	return m.buf.String()
}

// Writes returns a copy of each write in the order it was made.
func (m *Memory) Writes() [][]byte {
	all := m.buf.Bytes()
	out := make([][]byte, 0, len(m.writes))
	for _, n := range m.writes {
		out = append(out, bytes.Clone(all[:n]))
		all = all[n:]
	}
	return out
}

// Open creates the file at path, expanding a leading ~ to the user's home directory. The path Stdout writes to
// standard output instead, and closing it leaves standard output open.
func Open(path string) (io.WriteCloser, error) {
	if path == Stdout {
		return nopCloser{os.Stdout}, nil
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	return os.Create(expanded)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}
