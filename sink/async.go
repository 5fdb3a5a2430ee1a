// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package sink

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

var _ io.WriteCloser = &Async{}

// DefaultQueueDepth is the number of writes an Async sink buffers before Write blocks.
const DefaultQueueDepth = 16

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("sink closed")

// Async accepts writes immediately and applies them to the underlying writer, in order, on a background goroutine.
// The first error from the underlying writer is latched: every later Write returns it, so a producer stops soon after
// the destination fails. Close waits for queued writes and reports the latched error.
type Async struct {
	w     io.Writer
	queue chan []byte
	group errgroup.Group

	errLock sync.Mutex
	err     error

	closeLock sync.RWMutex
	closed    bool
}

// NewAsync starts an Async sink in front of w. A depth of zero or less uses DefaultQueueDepth.
func NewAsync(w io.Writer, depth int) *Async {
	if depth <= 0 {
		depth = DefaultQueueDepth
	}
	a := &Async{
		w:     w,
		queue: make(chan []byte, depth),
	}
	a.group.Go(a.drain)
	return a
}

// Write queues a copy of p, since callers are free to reuse p once Write returns.
func (a *Async) Write(p []byte) (int, error) {
	if err := a.latched(); err != nil {
		return 0, err
	}

	a.closeLock.RLock()
	defer a.closeLock.RUnlock()
	if a.closed {
		return 0, ErrClosed
	}
	a.queue <- bytes.Clone(p)
	return len(p), nil
}

// Close flushes queued writes, then closes the underlying writer if it is an io.Closer. Calling Close again is a
// no-op.
func (a *Async) Close() error {
	a.closeLock.Lock()
	if a.closed {
		a.closeLock.Unlock()
		return nil
	}
	a.closed = true
	close(a.queue)
	a.closeLock.Unlock()

	var result *multierror.Error
	if err := a.group.Wait(); err != nil {
		result = multierror.Append(result, err)
	}
	if c, ok := a.w.(io.Closer); ok {
		if err := c.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (a *Async) drain() error {
	for p := range a.queue {
		// Keep receiving after a failure so that blocked writers are released.
		if a.latched() != nil {
			continue
		}
		n, err := a.w.Write(p)
		if err == nil && n < len(p) {
			err = io.ErrShortWrite
		}
		if err != nil {
			a.latch(err)
		}
	}
	return a.latched()
}

func (a *Async) latch(err error) {
	a.errLock.Lock()
	defer a.errLock.Unlock()
	if a.err == nil {
		a.err = err
	}
}

func (a *Async) latched() error {
	a.errLock.Lock()
	defer a.errLock.Unlock()
	return a.err
}
