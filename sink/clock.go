// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"sync"
	"sync/atomic"
	"time"
)

// Clock is a device with no audio output that consumes frames at the
// configured sample rate. It lets the whole pipeline run at real-time pace on
// machines without a sound card.
type Clock struct {
	cfg    Config
	buffer time.Duration

	mu     sync.Mutex
	played time.Time // when everything written so far will have played
	frames atomic.Uint64
	closed atomic.Bool

	now   func() time.Time
	sleep func(time.Duration)
}

// NewClock paces writes by cfg. Non-positive fields of cfg take the
// DefaultConfig values.
func NewClock(cfg Config) *Clock {
	def := DefaultConfig()
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = def.SampleRate
	}
	if cfg.Channels <= 0 {
		cfg.Channels = def.Channels
	}
	if cfg.PeriodFrames <= 0 {
		cfg.PeriodFrames = def.PeriodFrames
	}
	if cfg.Periods <= 0 {
		cfg.Periods = def.Periods
	}

	return &Clock{
		cfg:    cfg,
		buffer: time.Duration(cfg.Periods) * cfg.PeriodDuration(),
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// Write blocks while more than Periods periods are pending, like a hardware
// buffer would.
func (c *Clock) Write(frame []int16) error {
	if c.closed.Load() {
		return ErrClosed
	}

	n := len(frame) / c.cfg.Channels

	c.mu.Lock()
	now := c.now()
	underrun := false
	if c.played.Before(now) {
		underrun = !c.played.IsZero()
		c.played = now
	}
	c.played = c.played.Add(c.cfg.FramesDuration(n))
	wait := c.played.Sub(now) - c.buffer
	c.mu.Unlock()

	if wait > 0 {
		c.sleep(wait)
	}
	c.frames.Add(uint64(n))

	if underrun {
		return ErrUnderrun
	}

	return nil
}

// Frames returns how many frames were written.
func (c *Clock) Frames() uint64 {
	return c.frames.Load()
}

// Drain waits until the pending frames would have finished playing.
func (c *Clock) Drain() error {
	c.mu.Lock()
	wait := c.played.Sub(c.now())
	c.mu.Unlock()

	if wait > 0 {
		c.sleep(wait)
	}

	return nil
}

func (c *Clock) Close() error {
	c.closed.Store(true)
	return nil
}
