// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/beatbox/audio"
	"github.com/ik5/beatbox/sink"
	"github.com/ik5/beatbox/timing"
	"github.com/ik5/beatbox/utils"
)

const (
	DefaultMaxVoices    = 30
	DefaultVolume       = 80
	DefaultPeriodFrames = 512

	MinVolume = 0
	MaxVolume = 100

	// maxVoicesLimit keeps the int32 accumulator from overflowing.
	maxVoicesLimit = 1<<16 - 1

	writeErrorBackoff = 10 * time.Millisecond
)

// Sink receives mixed frames. sink.Device satisfies it.
type Sink interface {
	Write(frame []int16) error
	Drain() error
	Close() error
}

// Options tunes a new Engine. Zero fields take the defaults.
type Options struct {
	MaxVoices    int
	PeriodFrames int
	// Volume is the initial volume. Use a negative value for silence, since
	// zero selects DefaultVolume.
	Volume   int
	Logger   *slog.Logger
	Recorder *timing.Recorder
}

// Stats counts recoverable faults since the engine was created.
type Stats struct {
	Active      int    `json:"active"`
	Dropped     uint64 `json:"dropped"`
	Underruns   uint64 `json:"underruns"`
	WriteErrors uint64 `json:"write_errors"`
}

type voice struct {
	asset  *audio.Asset
	cursor int
}

// Engine owns the voice pool and the playback goroutine.
type Engine struct {
	sink         Sink
	log          *slog.Logger
	rec          *timing.Recorder
	periodFrames int

	mu     sync.Mutex
	voices []voice
	active int
	next   int
	acc    []int32

	volume      atomic.Int32
	dropped     atomic.Uint64
	underruns   atomic.Uint64
	writeErrors atomic.Uint64
	closed      atomic.Bool

	runMu     sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// New creates an engine writing to s. s may be nil when frames are only
// pulled by hand with PullFrame, as offline rendering does.
func New(s Sink, opts Options) *Engine {
	maxVoices := opts.MaxVoices
	if maxVoices <= 0 {
		maxVoices = DefaultMaxVoices
	}
	maxVoices = min(maxVoices, maxVoicesLimit)

	period := opts.PeriodFrames
	if period <= 0 {
		period = DefaultPeriodFrames
	}

	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	e := &Engine{
		sink:         s,
		log:          log.With("component", "mixer"),
		rec:          opts.Recorder,
		periodFrames: period,
		voices:       make([]voice, maxVoices),
		acc:          make([]int32, period),
	}

	switch {
	case opts.Volume < 0:
		e.SetVolume(MinVolume)
	case opts.Volume == 0:
		e.SetVolume(DefaultVolume)
	default:
		e.SetVolume(opts.Volume)
	}

	return e
}

// SetVolume clamps percent to [0,100]. The next mixed frame uses it.
func (e *Engine) SetVolume(percent int) {
	e.volume.Store(int32(utils.Clamp(percent, MinVolume, MaxVolume)))
}

func (e *Engine) Volume() int {
	return int(e.volume.Load())
}

// MaxVoices returns the voice pool capacity.
func (e *Engine) MaxVoices() int {
	return len(e.voices)
}

// ActiveVoices returns how many voices are still playing.
func (e *Engine) ActiveVoices() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.active
}

func (e *Engine) Stats() Stats {
	return Stats{
		Active:      e.ActiveVoices(),
		Dropped:     e.dropped.Load(),
		Underruns:   e.underruns.Load(),
		WriteErrors: e.writeErrors.Load(),
	}
}

// QueueSound starts playing a from its first sample on the next frame. It
// never blocks on the sink.
func (e *Engine) QueueSound(a *audio.Asset) error {
	if a == nil {
		return ErrNilAsset
	}
	if a.SampleCount() == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyAsset, a.Name())
	}
	if e.closed.Load() {
		return ErrClosed
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == len(e.voices) {
		e.dropped.Add(1)
		e.log.Debug("voice dropped", "asset", a.Name(), "max_voices", len(e.voices))

		return fmt.Errorf("%w: %s", ErrVoicePoolFull, a.Name())
	}

	for i := range e.voices {
		slot := (e.next + i) % len(e.voices)
		if e.voices[slot].asset != nil {
			continue
		}

		e.voices[slot] = voice{asset: a}
		e.active++
		e.next = (slot + 1) % len(e.voices)
		break
	}

	return nil
}

// PullFrame mixes the next len(dst) samples into dst and advances every
// voice. Voices that reach their last sample are retired.
func (e *Engine) PullFrame(dst []int16) {
	e.rec.Mark(timing.Audio)

	vol := e.volume.Load()

	e.mu.Lock()

	if len(e.acc) < len(dst) {
		e.acc = make([]int32, len(dst))
	}
	acc := e.acc[:len(dst)]
	clear(acc)

	if e.active > 0 {
		for i := range e.voices {
			v := &e.voices[i]
			if v.asset == nil {
				continue
			}

			samples := v.asset.Samples()
			src := samples[v.cursor:]
			n := min(len(src), len(acc))
			for j, s := range src[:n] {
				acc[j] += utils.ScalePercent(s, vol)
			}

			v.cursor += n
			if v.cursor >= len(samples) {
				*v = voice{}
				e.active--
			}
		}
	}

	e.mu.Unlock()

	for i, s := range acc {
		dst[i] = utils.SaturateInt16(s)
	}
}

// Start launches the playback goroutine. It runs until ctx is done or Close
// is called.
func (e *Engine) Start(ctx context.Context) error {
	if e.sink == nil {
		return ErrNoSink
	}
	if e.closed.Load() {
		return ErrClosed
	}

	e.runMu.Lock()
	defer e.runMu.Unlock()

	if e.done != nil {
		return ErrStarted
	}

	ctx, e.cancel = context.WithCancel(ctx)
	e.done = make(chan struct{})

	go e.run(ctx)

	return nil
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)

	frame := make([]int16, e.periodFrames)

	for ctx.Err() == nil {
		e.PullFrame(frame)

		err := e.sink.Write(frame)
		switch {
		case err == nil:
		case errors.Is(err, sink.ErrUnderrun):
			e.underruns.Add(1)
			e.log.Warn("audio underrun, sink re-primed")
		case errors.Is(err, sink.ErrClosed):
			e.log.Info("sink closed, playback stopped")
			return
		default:
			e.writeErrors.Add(1)
			e.log.Warn("sink write failed", "error", err)

			select {
			case <-ctx.Done():
			case <-time.After(writeErrorBackoff):
			}
		}
	}
}

// Close stops the playback goroutine after its current write, drains and
// closes the sink, and releases every voice. It is safe to call more than
// once.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.closed.Store(true)

		e.runMu.Lock()
		if e.cancel != nil {
			e.cancel()
			<-e.done
		}
		e.runMu.Unlock()

		if e.sink != nil {
			e.closeErr = errors.Join(e.sink.Drain(), e.sink.Close())
		}

		e.mu.Lock()
		clear(e.voices)
		e.active = 0
		e.mu.Unlock()

		e.log.Debug("mixer closed")
	})

	return e.closeErr
}
