//go:build !headless

// SPDX-License-Identifier: EPL-2.0

package sink

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Oto plays frames through the platform audio API via oto.
//
// oto pulls bytes from Read on its own goroutine; Write feeds the same ring
// from the mixer goroutine and blocks while the ring holds Periods periods.
type Oto struct {
	cfg    Config
	ctx    *oto.Context
	player *oto.Player
	ring   *ring
	tmp    []int16

	closeOnce sync.Once
}

// OpenOto opens the default output device. Only one oto context may exist per
// process, so OpenOto must not be called twice.
func OpenOto(cfg Config) (*Oto, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	op := &oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   cfg.PeriodDuration(),
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	<-ready

	o := &Oto{
		cfg:  cfg,
		ctx:  ctx,
		ring: newRing(cfg.Periods*cfg.PeriodSamples(), cfg.PeriodSamples()),
		tmp:  make([]int16, cfg.PeriodSamples()),
	}
	o.player = ctx.NewPlayer(o)
	o.player.Play()

	return o, nil
}

// Read implements io.Reader for the oto player. It never blocks: when the
// ring is short the rest of p is silence.
func (o *Oto) Read(p []byte) (int, error) {
	n := len(p) / 2
	if cap(o.tmp) < n {
		o.tmp = make([]int16, n)
	}
	samples := o.tmp[:n]

	o.ring.read(samples)

	for i, s := range samples {
		binary.LittleEndian.PutUint16(p[2*i:], uint16(s))
	}

	return n * 2, nil
}

func (o *Oto) Write(frame []int16) error {
	underrun, err := o.ring.write(frame)
	if err != nil {
		return err
	}
	if underrun {
		return ErrUnderrun
	}

	return nil
}

// Underruns returns how many times the device ran dry.
func (o *Oto) Underruns() uint64 {
	return o.ring.underrunCount()
}

// Drain waits until everything written so far has been handed to the
// device and played.
func (o *Oto) Drain() error {
	limit := time.Duration(o.cfg.Periods+2)*o.cfg.PeriodDuration() + 100*time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), limit)
	defer cancel()

	if err := o.ring.drain(ctx); err != nil {
		return fmt.Errorf("drain: %w", err)
	}

	for o.player.BufferedSize() > 0 {
		select {
		case <-ctx.Done():
			return fmt.Errorf("drain: %w", ctx.Err())
		case <-time.After(2 * time.Millisecond):
		}
	}

	return nil
}

func (o *Oto) Close() error {
	var err error
	o.closeOnce.Do(func() {
		o.ring.close()
		err = o.player.Close()
	})

	return err
}
