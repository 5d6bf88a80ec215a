// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"fmt"
	"time"

	"github.com/ik5/beatbox/audio"
)

// Output names accepted in Config.Output.
const (
	OutputOto  = "oto"
	OutputNull = "null"
)

// Config is the fixed device configuration.
type Config struct {
	Output       string
	SampleRate   int
	Channels     int
	PeriodFrames int
	Periods      int
}

// DefaultConfig returns 44.1 kHz mono with four 512-frame periods.
func DefaultConfig() Config {
	return Config{
		Output:       OutputOto,
		SampleRate:   audio.SampleRate,
		Channels:     audio.Channels,
		PeriodFrames: 512,
		Periods:      4,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Output != OutputOto && c.Output != OutputNull:
		return fmt.Errorf("%w: output %q", ErrBadConfig, c.Output)
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrBadConfig, c.SampleRate)
	case c.Channels != audio.Channels:
		return fmt.Errorf("%w: %d channels, only mono is supported", ErrBadConfig, c.Channels)
	case c.PeriodFrames <= 0:
		return fmt.Errorf("%w: period of %d frames", ErrBadConfig, c.PeriodFrames)
	case c.Periods < 2:
		return fmt.Errorf("%w: %d periods, need at least 2", ErrBadConfig, c.Periods)
	}

	return nil
}

// PeriodSamples is the number of int16 values in one period.
func (c Config) PeriodSamples() int {
	return c.PeriodFrames * c.Channels
}

// PeriodDuration is the playback time of one period.
func (c Config) PeriodDuration() time.Duration {
	return c.FramesDuration(c.PeriodFrames)
}

// FramesDuration is the playback time of n frames.
func (c Config) FramesDuration(n int) time.Duration {
	return time.Duration(n) * time.Second / time.Duration(c.SampleRate)
}

// Device is an audio output that accepts interleaved int16 frames.
//
// Write blocks until the device has room for the whole frame. A Write that
// returns ErrUnderrun still accepted its frame: the error only reports that
// the device ran dry since the previous Write and has been re-primed.
type Device interface {
	Write(frame []int16) error
	Drain() error
	Close() error
}

// Open opens the device named by cfg.Output.
func Open(cfg Config) (Device, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Output == OutputNull {
		return NewClock(cfg), nil
	}

	o, err := OpenOto(cfg)
	if err != nil {
		return nil, err
	}

	return o, nil
}
