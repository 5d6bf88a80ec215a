// SPDX-License-Identifier: EPL-2.0

// Package timing measures the spacing between recurring events, such as
// mixed audio frames or accelerometer samples.
package timing

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Kind identifies a stream of events.
type Kind int

const (
	// Audio is marked once per frame pulled from the mixer.
	Audio Kind = iota
	// Beat is marked once per sequencer step.
	Beat
	// Accel is marked once per accelerometer sample.
	Accel
)

var kindNames = map[Kind]string{
	Audio: "audio",
	Beat:  "beat",
	Accel: "accel",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind maps a name back to its Kind.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Stats summarises the intervals between consecutive marks.
type Stats struct {
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	Avg   time.Duration `json:"avg"`
	Count int           `json:"count"`
}

// MinMs, MaxMs and AvgMs report the durations in fractional milliseconds.
func (s Stats) MinMs() float64 { return ms(s.Min) }
func (s Stats) MaxMs() float64 { return ms(s.Max) }
func (s Stats) AvgMs() float64 { return ms(s.Avg) }

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

type series struct {
	last    time.Time
	hasLast bool

	min, max, sum time.Duration
	count         int
}

// Recorder collects interval statistics per Kind. It is safe for concurrent
// use.
type Recorder struct {
	mu     sync.Mutex
	now    func() time.Time
	series map[Kind]*series
}

func NewRecorder() *Recorder {
	return newRecorder(time.Now)
}

func newRecorder(now func() time.Time) *Recorder {
	return &Recorder{
		now:    now,
		series: make(map[Kind]*series),
	}
}

// Mark records that an event of kind happened now. The first mark of a kind
// only starts the clock.
func (r *Recorder) Mark(kind Kind) {
	if r == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	s, ok := r.series[kind]
	if !ok {
		s = &series{}
		r.series[kind] = s
	}

	if s.hasLast {
		d := now.Sub(s.last)
		if s.count == 0 || d < s.min {
			s.min = d
		}
		if d > s.max {
			s.max = d
		}
		s.sum += d
		s.count++
	}

	s.last = now
	s.hasLast = true
}

// GetAndReset returns the statistics gathered since the previous call for
// kind and clears them. The last mark time is kept so the next interval is
// measured from it.
func (r *Recorder) GetAndReset(kind Kind) Stats {
	if r == nil {
		return Stats{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.series[kind]
	if !ok || s.count == 0 {
		return Stats{}
	}

	st := Stats{
		Min:   s.min,
		Max:   s.max,
		Avg:   s.sum / time.Duration(s.count),
		Count: s.count,
	}

	s.min, s.max, s.sum, s.count = 0, 0, 0, 0

	return st
}
