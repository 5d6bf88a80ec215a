// SPDX-License-Identifier: EPL-2.0

package sink

import "sync"

// Memory keeps every written sample. Writes never block. It is used for
// offline rendering and tests.
type Memory struct {
	mu      sync.Mutex
	samples []int16
	writes  int
	closed  bool
	drained bool

	// Limit, when positive, closes the device once that many samples were
	// written.
	Limit int
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Write(frame []int16) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	m.samples = append(m.samples, frame...)
	m.writes++

	if m.Limit > 0 && len(m.samples) >= m.Limit {
		m.closed = true
	}

	return nil
}

// Samples returns a copy of everything written.
func (m *Memory) Samples() []int16 {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]int16, len(m.samples))
	copy(out, m.samples)
	return out
}

// Writes returns the number of Write calls that were accepted.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.writes
}

func (m *Memory) Drain() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.drained = true
	return nil
}

// Drained reports whether Drain was called.
func (m *Memory) Drained() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.drained
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// Closed reports whether the device was closed.
func (m *Memory) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.closed
}
