// SPDX-License-Identifier: EPL-2.0

package beatbox

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/beatbox/audio"
	"github.com/ik5/beatbox/formats/wav"
	"github.com/ik5/beatbox/mixer"
	"github.com/ik5/beatbox/sequencer"
	"github.com/ik5/beatbox/utils"
)

// StepsPerBar is the number of half-beats in a 4/4 bar.
const StepsPerBar = 8

var ErrNoBars = errors.New("nothing to render")

// RenderOptions tunes Render. Zero fields take the defaults.
type RenderOptions struct {
	// Bars of StepsPerBar half-beats. The pattern repeats as needed.
	Bars       int
	BPM        int
	Volume     int
	SampleRate int
	MaxVoices  int
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.BPM == 0 {
		o.BPM = sequencer.DefaultBPM
	}
	o.BPM = utils.Clamp(o.BPM, sequencer.MinBPM, sequencer.MaxBPM)

	if o.SampleRate <= 0 {
		o.SampleRate = audio.SampleRate
	}

	return o
}

// StepSamples returns the length of one half-beat in samples. The half-beat
// is rounded down to whole milliseconds, as the live sequencer does.
func StepSamples(bpm, sampleRate int) int {
	bpm = utils.Clamp(bpm, sequencer.MinBPM, sequencer.MaxBPM)
	halfBeatMs := 30000 / bpm

	return sampleRate * halfBeatMs / 1000
}

// RenderSamples plays p for opts.Bars bars through a mixer that has no
// device, pulling exactly one half-beat of samples per step. After the last
// step it keeps pulling until every voice has finished, so the final hits
// ring out.
//
// A full voice pool drops the hit, as it does live. A sound missing from kit
// is an error.
//
// Example:
//
//	pcm, err := beatbox.RenderSamples(sequencer.Rock(), kit, beatbox.RenderOptions{Bars: 2})
//	if err != nil {
//	    return err
//	}
//	// pcm is mono 16-bit at 44.1kHz
func RenderSamples(p sequencer.Pattern, kit *audio.Registry, opts RenderOptions) ([]int16, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if opts.Bars <= 0 {
		return nil, fmt.Errorf("%w: %d bars", ErrNoBars, opts.Bars)
	}
	opts = opts.withDefaults()

	mix := mixer.New(nil, mixer.Options{
		MaxVoices: opts.MaxVoices,
		Volume:    opts.Volume,
	})

	step := StepSamples(opts.BPM, opts.SampleRate)
	steps := opts.Bars * StepsPerBar
	out := make([]int16, 0, steps*step)
	period := make([]int16, mixer.DefaultPeriodFrames)

	for i := range steps {
		for _, sound := range p.Steps[i%p.Len()] {
			a, ok := kit.Get(sound)
			if !ok {
				return nil, fmt.Errorf("%w: %s", sequencer.ErrMissingSound, sound)
			}

			err := mix.QueueSound(a)
			if err != nil && !errors.Is(err, mixer.ErrVoicePoolFull) {
				return nil, err
			}
		}

		for n := step; n > 0; {
			chunk := period[:min(n, len(period))]
			mix.PullFrame(chunk)
			out = append(out, chunk...)
			n -= len(chunk)
		}
	}

	for mix.ActiveVoices() > 0 {
		mix.PullFrame(period)
		out = append(out, period...)
	}

	return out, nil
}

// Render is RenderSamples written to w as a mono 16-bit PCM WAV file.
func Render(w io.Writer, p sequencer.Pattern, kit *audio.Registry, opts RenderOptions) error {
	pcm, err := RenderSamples(p, kit, opts)
	if err != nil {
		return err
	}

	return wav.WriteWAV16(w, opts.withDefaults().SampleRate, pcm)
}
