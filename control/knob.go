// SPDX-License-Identifier: EPL-2.0

package control

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const KnobPoll = 10 * time.Millisecond

// Encoder accumulates rotary encoder detents. Take returns the count since
// the previous call and resets it to zero.
type Encoder interface {
	Take() (int, error)
}

// Detents is an Encoder fed by a driver calling Turn from its own goroutine.
type Detents struct {
	n atomic.Int64
}

// Turn adds n detents; negative is counter-clockwise.
func (d *Detents) Turn(n int) {
	d.n.Add(int64(n))
}

func (d *Detents) Take() (int, error) {
	return int(d.n.Swap(0)), nil
}

// TempoKnob moves the tempo by one BPM per detent.
type TempoKnob struct {
	enc    Encoder
	target TempoControl
	log    *slog.Logger
}

func NewTempoKnob(enc Encoder, target TempoControl, log *slog.Logger) *TempoKnob {
	if log == nil {
		log = slog.Default()
	}

	return &TempoKnob{enc: enc, target: target, log: log.With("component", "knob")}
}

func (k *TempoKnob) Run(ctx context.Context) {
	poll(ctx, KnobPoll, k.Poll)
}

func (k *TempoKnob) Poll() {
	n, err := k.enc.Take()
	if err != nil {
		k.log.Warn("encoder read failed", "error", err)
		return
	}
	if n == 0 {
		return
	}

	k.target.SetBPM(k.target.BPM() + n)
	k.log.Debug("tempo changed", "detents", n, "bpm", k.target.BPM())
}
