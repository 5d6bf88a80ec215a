// SPDX-License-Identifier: EPL-2.0

package control

import (
	"context"
	"log/slog"
	"time"

	"github.com/ik5/beatbox/audio"
	"github.com/ik5/beatbox/timing"
)

const (
	AccelPoll     = 10 * time.Millisecond
	AccelDebounce = 130 * time.Millisecond
)

// Vector is one raw accelerometer reading.
type Vector struct {
	X, Y, Z int16
}

// Accelerometer returns the current acceleration.
type Accelerometer interface {
	Read() (Vector, error)
}

// axis maps a sudden change along one axis to a sound.
type axis struct {
	sound     audio.Sound
	threshold int32
	last      time.Time
}

// HitDetector turns sharp jolts into drum hits: a shake along X plays the
// hi-hat, along Y the snare, and a harder knock along Z the bass drum. Each
// axis fires at most once per debounce window.
type HitDetector struct {
	src      Accelerometer
	player   SoundPlayer
	rec      *timing.Recorder
	log      *slog.Logger
	debounce time.Duration
	now      func() time.Time

	axes   [3]axis
	prev   Vector
	primed bool
}

func NewHitDetector(src Accelerometer, player SoundPlayer, rec *timing.Recorder, log *slog.Logger) *HitDetector {
	if log == nil {
		log = slog.Default()
	}

	return &HitDetector{
		src:      src,
		player:   player,
		rec:      rec,
		log:      log.With("component", "accelerometer"),
		debounce: AccelDebounce,
		now:      time.Now,
		axes: [3]axis{
			{sound: audio.HiHat, threshold: 2000},
			{sound: audio.Snare, threshold: 2000},
			{sound: audio.BaseDrum, threshold: 4000},
		},
	}
}

// Run samples the accelerometer every AccelPoll until ctx is done.
func (d *HitDetector) Run(ctx context.Context) {
	poll(ctx, AccelPoll, d.Poll)
}

// Poll takes one reading and plays whatever it triggers.
func (d *HitDetector) Poll() {
	d.rec.Mark(timing.Accel)

	v, err := d.src.Read()
	if err != nil {
		d.log.Warn("accelerometer read failed", "error", err)
		return
	}

	for _, sound := range d.Detect(v, d.now()) {
		if err := d.player.Play(sound); err != nil {
			d.log.Debug("hit dropped", "sound", sound, "error", err)
		}
	}
}

// Detect compares v with the previous reading and returns the sounds to
// play. The first reading only primes the detector.
func (d *HitDetector) Detect(v Vector, now time.Time) []audio.Sound {
	prev := d.prev
	d.prev = v

	if !d.primed {
		d.primed = true
		return nil
	}

	deltas := [3]int32{
		abs(int32(v.X) - int32(prev.X)),
		abs(int32(v.Y) - int32(prev.Y)),
		abs(int32(v.Z) - int32(prev.Z)),
	}

	var hits []audio.Sound
	for i := range d.axes {
		a := &d.axes[i]
		if deltas[i] <= a.threshold {
			continue
		}
		if !a.last.IsZero() && now.Sub(a.last) <= d.debounce {
			continue
		}

		a.last = now
		hits = append(hits, a.sound)
	}

	return hits
}

func abs(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}
