// SPDX-License-Identifier: EPL-2.0

package sequencer

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ik5/beatbox/audio"
	"github.com/ik5/beatbox/timing"
	"github.com/ik5/beatbox/utils"
)

const (
	MinBPM     = 40
	MaxBPM     = 300
	DefaultBPM = 120

	// IdlePoll is how often the loop checks for a new mode while silent.
	IdlePoll = 100 * time.Millisecond
)

// Mode selects what the sequencer plays. ModeNone is silence and mode n > 0
// plays the n-th pattern.
type Mode int

const (
	ModeNone   Mode = 0
	ModeRock   Mode = 1
	ModeCustom Mode = 2
)

// Mixer is the part of the mixing engine the sequencer drives.
type Mixer interface {
	QueueSound(a *audio.Asset) error
	SetVolume(percent int)
	Volume() int
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Options tunes a new Sequencer. Zero fields take the defaults.
type Options struct {
	// Patterns replaces the built-in rock and custom patterns.
	Patterns []Pattern
	BPM      int
	// Mode is the initial mode. The zero value starts silent.
	Mode     Mode
	Logger   *slog.Logger
	Recorder *timing.Recorder
	Sleep    SleepFunc
}

type Stats struct {
	Steps          uint64 `json:"steps"`
	FailedTriggers uint64 `json:"failed_triggers"`
}

// Sequencer is safe for concurrent use. Run must be called at most once at a
// time.
type Sequencer struct {
	mixer    Mixer
	kit      *audio.Registry
	patterns []Pattern
	log      *slog.Logger
	rec      *timing.Recorder
	sleep    SleepFunc

	mode       atomic.Int32
	bpm        atomic.Int32
	halfBeatMs atomic.Int32

	playing atomic.Int32
	step    atomic.Int32

	steps  atomic.Uint64
	failed atomic.Uint64
}

func New(m Mixer, kit *audio.Registry, opts Options) (*Sequencer, error) {
	if kit == nil {
		return nil, ErrNoKit
	}

	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}
	for _, p := range patterns {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	s := &Sequencer{
		mixer:    m,
		kit:      kit,
		patterns: slices.Clone(patterns),
		log:      log.With("component", "sequencer"),
		rec:      opts.Recorder,
		sleep:    sleep,
	}

	bpm := opts.BPM
	if bpm == 0 {
		bpm = DefaultBPM
	}
	s.SetBPM(bpm)

	if err := s.SetMode(opts.Mode); err != nil {
		return nil, err
	}

	return s, nil
}

// Modes returns the number of valid modes, ModeNone included.
func (s *Sequencer) Modes() int {
	return len(s.patterns) + 1
}

// SetMode switches pattern at the next step boundary. The new pattern starts
// from its first step.
func (s *Sequencer) SetMode(m Mode) error {
	if m < ModeNone || int(m) >= s.Modes() {
		return fmt.Errorf("%w: %d", ErrUnknownMode, m)
	}

	s.mode.Store(int32(m))
	s.log.Debug("mode set", "mode", s.ModeName(m))

	return nil
}

func (s *Sequencer) Mode() Mode {
	return Mode(s.mode.Load())
}

// NextMode cycles to the following mode, wrapping back to ModeNone.
func (s *Sequencer) NextMode() Mode {
	for {
		cur := s.mode.Load()
		next := (cur + 1) % int32(s.Modes())
		if s.mode.CompareAndSwap(cur, next) {
			s.log.Debug("mode set", "mode", s.ModeName(Mode(next)))
			return Mode(next)
		}
	}
}

// ModeName returns "none" or the pattern name for m.
func (s *Sequencer) ModeName(m Mode) string {
	switch {
	case m == ModeNone:
		return "none"
	case int(m) < s.Modes() && m > ModeNone:
		return s.patterns[m-1].Name
	}

	return "mode(" + strconv.Itoa(int(m)) + ")"
}

// ParseMode accepts a mode number, "none" or a pattern name.
func (s *Sequencer) ParseMode(name string) (Mode, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	if n, err := strconv.Atoi(name); err == nil {
		if n < 0 || n >= s.Modes() {
			return 0, fmt.Errorf("%w: %d", ErrUnknownMode, n)
		}
		return Mode(n), nil
	}

	if name == "none" || name == "off" {
		return ModeNone, nil
	}
	for i, p := range s.patterns {
		if strings.EqualFold(p.Name, name) {
			return Mode(i + 1), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

// Pattern returns the pattern played in mode m.
func (s *Sequencer) Pattern(m Mode) (Pattern, bool) {
	if m <= ModeNone || int(m) >= s.Modes() {
		return Pattern{}, false
	}

	return s.patterns[m-1], true
}

// SetBPM clamps bpm to [MinBPM, MaxBPM] and recomputes the half-beat. A step
// that is already sleeping keeps its duration.
func (s *Sequencer) SetBPM(bpm int) {
	bpm = utils.Clamp(bpm, MinBPM, MaxBPM)

	s.bpm.Store(int32(bpm))
	s.halfBeatMs.Store(int32(30000 / bpm))
}

func (s *Sequencer) BPM() int {
	return int(s.bpm.Load())
}

// HalfBeatMs is 30000 / BPM.
func (s *Sequencer) HalfBeatMs() int {
	return int(s.halfBeatMs.Load())
}

func (s *Sequencer) HalfBeat() time.Duration {
	return time.Duration(s.halfBeatMs.Load()) * time.Millisecond
}

func (s *Sequencer) SetVolume(percent int) {
	s.mixer.SetVolume(percent)
}

func (s *Sequencer) Volume() int {
	return s.mixer.Volume()
}

// Play queues one sound from the kit into the mixer right away.
func (s *Sequencer) Play(sound audio.Sound) error {
	a, ok := s.kit.Get(sound)
	if !ok {
		return fmt.Errorf("%w: %v", ErrMissingSound, sound)
	}

	return s.mixer.QueueSound(a)
}

// Position returns the mode and step being played. The step is 0 while
// silent.
func (s *Sequencer) Position() (Mode, int) {
	return Mode(s.playing.Load()), int(s.step.Load())
}

func (s *Sequencer) Stats() Stats {
	return Stats{
		Steps:          s.steps.Load(),
		FailedTriggers: s.failed.Load(),
	}
}

// Run plays until ctx is done. Trigger failures are logged and counted but
// never stop the loop.
func (s *Sequencer) Run(ctx context.Context) error {
	s.log.Info("sequencer started", "mode", s.ModeName(s.Mode()), "bpm", s.BPM())
	defer s.log.Info("sequencer stopped")

	mode := ModeNone
	step := 0

	for ctx.Err() == nil {
		if cur := s.Mode(); cur != mode {
			mode = cur
			step = 0
		}

		s.playing.Store(int32(mode))
		s.step.Store(int32(step))

		pattern, ok := s.Pattern(mode)
		if !ok {
			if s.sleep(ctx, IdlePoll) != nil {
				break
			}
			continue
		}

		s.rec.Mark(timing.Beat)
		s.trigger(pattern.Steps[step])
		s.steps.Add(1)

		if s.sleep(ctx, s.HalfBeat()) != nil {
			break
		}

		step = (step + 1) % pattern.Len()
	}

	return nil
}

func (s *Sequencer) trigger(step Step) {
	for _, sound := range step {
		if err := s.Play(sound); err != nil {
			s.failed.Add(1)
			s.log.Warn("trigger failed", "sound", sound, "error", err)
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
