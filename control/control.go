// SPDX-License-Identifier: EPL-2.0

package control

import (
	"context"
	"time"

	"github.com/ik5/beatbox/audio"
	"github.com/ik5/beatbox/sequencer"
)

// SoundPlayer triggers a single drum hit.
type SoundPlayer interface {
	Play(sound audio.Sound) error
}

type VolumeControl interface {
	SetVolume(percent int)
	Volume() int
}

type TempoControl interface {
	SetBPM(bpm int)
	BPM() int
}

type ModeControl interface {
	SetMode(m sequencer.Mode) error
	Mode() sequencer.Mode
	NextMode() sequencer.Mode
	ParseMode(name string) (sequencer.Mode, error)
}

// Target is everything a remote command may change. *sequencer.Sequencer
// implements it.
type Target interface {
	SoundPlayer
	VolumeControl
	TempoControl
	ModeControl
}

// poll calls fn every interval until ctx is done.
func poll(ctx context.Context, interval time.Duration, fn func()) {
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			fn()
		}
	}
}
