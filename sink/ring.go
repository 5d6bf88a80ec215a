// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"context"
	"sync"
	"time"
)

// ring is the bounded sample FIFO between the mixer goroutine (writer) and
// the device callback (reader).
//
// After it runs dry the reader plays silence until primeAt samples are queued
// again, so playback resumes with a full period instead of stuttering.
type ring struct {
	mu      sync.Mutex
	notFull *sync.Cond

	buf     []int16
	r, n    int
	primeAt int

	priming   bool
	flushing  bool
	underrun  bool
	underruns uint64
	closed    bool
}

func newRing(capacity, primeAt int) *ring {
	r := &ring{
		buf:     make([]int16, capacity),
		primeAt: min(primeAt, capacity),
		priming: true,
	}
	r.notFull = sync.NewCond(&r.mu)

	return r
}

// write queues all of p, blocking while the ring is full. It reports whether
// an underrun happened since the previous write.
func (r *ring) write(p []int16) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false, ErrClosed
	}
	r.flushing = false

	for len(p) > 0 {
		for r.n == len(r.buf) && !r.closed {
			r.notFull.Wait()
		}
		if r.closed {
			return false, ErrClosed
		}

		w := (r.r + r.n) % len(r.buf)
		c := min(len(p), len(r.buf)-r.n, len(r.buf)-w)
		copy(r.buf[w:w+c], p[:c])
		r.n += c
		p = p[c:]
	}

	underrun := r.underrun
	r.underrun = false

	return underrun, nil
}

// read fills dst without blocking. Missing samples are zero. It returns how
// many real samples were copied.
func (r *ring) read(dst []int16) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.priming && !r.flushing && r.n < r.primeAt {
		clear(dst)
		return 0
	}
	r.priming = false

	got := 0
	for got < len(dst) && r.n > 0 {
		c := min(len(dst)-got, r.n, len(r.buf)-r.r)
		copy(dst[got:got+c], r.buf[r.r:r.r+c])
		r.r = (r.r + c) % len(r.buf)
		r.n -= c
		got += c
	}
	clear(dst[got:])

	if got < len(dst) && !r.flushing && !r.closed {
		r.underrun = true
		r.underruns++
		r.priming = true
	}

	r.notFull.Broadcast()

	return got
}

// drain lets the reader consume what is queued, ignoring the prime threshold,
// and waits until the ring is empty, closed, or ctx is done.
func (r *ring) drain(ctx context.Context) error {
	r.mu.Lock()
	r.flushing = true
	r.mu.Unlock()

	tick := time.NewTicker(2 * time.Millisecond)
	defer tick.Stop()

	for {
		r.mu.Lock()
		done := r.n == 0 || r.closed
		r.mu.Unlock()

		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
}

func (r *ring) close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	r.notFull.Broadcast()
}

func (r *ring) buffered() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.n
}

func (r *ring) underrunCount() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.underruns
}
