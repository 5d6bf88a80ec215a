// SPDX-License-Identifier: EPL-2.0

package sequencer

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/ik5/beatbox/audio"
	"github.com/ik5/beatbox/internal/audiotest"
	"github.com/ik5/beatbox/timing"
)

// script is a SleepFunc that never waits. It records the requested
// durations, runs hook on every call and stops the loop after stopAfter calls.
type script struct {
	calls     []time.Duration
	hook      func(call int)
	stopAfter int
	cancel    context.CancelFunc
}

func (sc *script) sleep(ctx context.Context, d time.Duration) error {
	sc.calls = append(sc.calls, d)
	n := len(sc.calls)

	if sc.hook != nil {
		sc.hook(n)
	}
	if n >= sc.stopAfter {
		sc.cancel()
		return ctx.Err()
	}

	return nil
}

// run drives s synchronously until the script stops it.
func run(t *testing.T, s *Sequencer, sc *script) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sc.cancel = cancel

	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func newTestSequencer(t *testing.T, q *audiotest.Queue, sc *script, mode Mode) *Sequencer {
	t.Helper()

	s, err := New(q, audiotest.Kit(), Options{Mode: mode, Sleep: sc.sleep})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return s
}

func TestSequencer_SetBPM(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want int
	}{
		{in: -5, want: MinBPM},
		{in: 0, want: MinBPM},
		{in: 39, want: MinBPM},
		{in: 40, want: 40},
		{in: 120, want: 120},
		{in: 133, want: 133},
		{in: 300, want: 300},
		{in: 301, want: MaxBPM},
		{in: 1000, want: MaxBPM},
	}

	s, _ := New(&audiotest.Queue{}, audiotest.Kit(), Options{})
	if s.BPM() != DefaultBPM || s.HalfBeat() != 250*time.Millisecond {
		t.Fatalf("default BPM() = %d HalfBeat() = %v, want 120 and 250ms", s.BPM(), s.HalfBeat())
	}

	for _, tt := range tests {
		s.SetBPM(tt.in)

		if s.BPM() != tt.want {
			t.Errorf("SetBPM(%d); BPM() = %d, want %d", tt.in, s.BPM(), tt.want)
		}
		if s.HalfBeatMs() != 30000/tt.want {
			t.Errorf("SetBPM(%d); HalfBeatMs() = %d, want %d", tt.in, s.HalfBeatMs(), 30000/tt.want)
		}
	}
}

func TestSequencer_StepAdvancement(t *testing.T) {
	t.Parallel()

	const periods = 20

	var positions []int
	sc := &script{stopAfter: periods + 1}
	s := newTestSequencer(t, &audiotest.Queue{}, sc, ModeRock)

	sc.hook = func(int) {
		mode, step := s.Position()
		if mode != ModeRock {
			t.Errorf("Position() mode = %d, want rock", mode)
		}
		positions = append(positions, step)
	}

	run(t, s, sc)

	// The hook runs during the sleep that follows k completed periods.
	for k, step := range positions {
		if step != k%8 {
			t.Errorf("after %d periods step = %d, want %d", k, step, k%8)
		}
	}
	if len(positions) != periods+1 {
		t.Errorf("observed %d steps, want %d", len(positions), periods+1)
	}
}

func TestSequencer_RockTriggers(t *testing.T) {
	t.Parallel()

	q := &audiotest.Queue{}
	sc := &script{stopAfter: 8}
	s := newTestSequencer(t, q, sc, ModeRock)

	run(t, s, sc)

	want := []string{
		"hihat", "bass", "hihat", "hihat", "snare", "hihat",
		"hihat", "bass", "hihat", "hihat", "snare", "hihat",
	}
	if got := q.Names(); !slices.Equal(got, want) {
		t.Errorf("queued = %v, want %v", got, want)
	}

	for i, d := range sc.calls {
		if d != 250*time.Millisecond {
			t.Errorf("sleep %d = %v, want 250ms", i, d)
		}
	}
}

func TestSequencer_ModeChangeAtStepBoundary(t *testing.T) {
	t.Parallel()

	q := &audiotest.Queue{}
	sc := &script{stopAfter: 5}
	s := newTestSequencer(t, q, sc, ModeRock)

	var afterSwitch []string
	sc.hook = func(call int) {
		switch call {
		case 3:
			// Mid-step: the current rock step is already triggered.
			if err := s.SetMode(ModeCustom); err != nil {
				t.Errorf("SetMode() error = %v", err)
			}
			afterSwitch = q.Names()
		case 4:
			if mode, step := s.Position(); mode != ModeCustom || step != 0 {
				t.Errorf("Position() = %d, %d, want custom step 0", mode, step)
			}
		}
	}

	run(t, s, sc)

	wantBefore := []string{"hihat", "bass", "hihat", "hihat", "snare"}
	if !slices.Equal(afterSwitch, wantBefore) {
		t.Errorf("queued at switch = %v, want %v", afterSwitch, wantBefore)
	}

	want := append(wantBefore, "bass", "snare")
	if got := q.Names(); !slices.Equal(got, want) {
		t.Errorf("queued = %v, want %v", got, want)
	}
}

func TestSequencer_TempoChangeKeepsCurrentSleep(t *testing.T) {
	t.Parallel()

	sc := &script{stopAfter: 3}
	s := newTestSequencer(t, &audiotest.Queue{}, sc, ModeCustom)

	sc.hook = func(call int) {
		if call == 1 {
			s.SetBPM(60)
		}
	}

	run(t, s, sc)

	want := []time.Duration{250 * time.Millisecond, 500 * time.Millisecond, 500 * time.Millisecond}
	if !slices.Equal(sc.calls, want) {
		t.Errorf("sleeps = %v, want %v", sc.calls, want)
	}
}

func TestSequencer_NoneIdles(t *testing.T) {
	t.Parallel()

	q := &audiotest.Queue{}
	sc := &script{stopAfter: 3}
	s := newTestSequencer(t, q, sc, ModeNone)

	run(t, s, sc)

	for i, d := range sc.calls {
		if d != IdlePoll {
			t.Errorf("sleep %d = %v, want %v", i, d, IdlePoll)
		}
	}
	if n := len(q.Queued()); n != 0 {
		t.Errorf("queued %d sounds while silent, want 0", n)
	}
	if st := s.Stats(); st.Steps != 0 {
		t.Errorf("Stats().Steps = %d, want 0", st.Steps)
	}
}

func TestSequencer_FailedTriggersKeepCadence(t *testing.T) {
	t.Parallel()

	q := &audiotest.Queue{Err: errors.New("voice pool is full")}
	sc := &script{stopAfter: 5}
	s := newTestSequencer(t, q, sc, ModeRock)

	run(t, s, sc)

	st := s.Stats()
	if st.Steps != 5 {
		t.Errorf("Stats().Steps = %d, want 5", st.Steps)
	}
	if st.FailedTriggers != 8 {
		t.Errorf("Stats().FailedTriggers = %d, want 8", st.FailedTriggers)
	}
	if len(sc.calls) != 5 {
		t.Errorf("slept %d times, want 5", len(sc.calls))
	}
}

func TestSequencer_MissingSound(t *testing.T) {
	t.Parallel()

	kit := audio.NewRegistry()
	kit.Register(audio.HiHat, audiotest.ConstantAsset("hihat", 4, 1))

	q := &audiotest.Queue{}
	sc := &script{stopAfter: 2}
	s, err := New(q, kit, Options{Mode: ModeRock, Sleep: sc.sleep})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := s.Play(audio.BaseDrum); !errors.Is(err, ErrMissingSound) {
		t.Errorf("Play(bass) error = %v, want ErrMissingSound", err)
	}

	run(t, s, sc)

	if got := q.Names(); !slices.Equal(got, []string{"hihat", "hihat"}) {
		t.Errorf("queued = %v, want [hihat hihat]", got)
	}
	if st := s.Stats(); st.FailedTriggers != 1 {
		t.Errorf("Stats().FailedTriggers = %d, want 1", st.FailedTriggers)
	}
}

func TestSequencer_Modes(t *testing.T) {
	t.Parallel()

	s, _ := New(&audiotest.Queue{}, audiotest.Kit(), Options{Mode: ModeRock})

	for _, m := range []Mode{-1, 3, 10} {
		if err := s.SetMode(m); !errors.Is(err, ErrUnknownMode) {
			t.Errorf("SetMode(%d) error = %v, want ErrUnknownMode", m, err)
		}
	}
	if s.Mode() != ModeRock {
		t.Errorf("Mode() = %d after rejected SetMode, want rock", s.Mode())
	}

	for _, want := range []Mode{ModeCustom, ModeNone, ModeRock} {
		if got := s.NextMode(); got != want {
			t.Errorf("NextMode() = %d, want %d", got, want)
		}
	}

	names := map[Mode]string{ModeNone: "none", ModeRock: "rock", ModeCustom: "custom", 7: "mode(7)"}
	for m, want := range names {
		if got := s.ModeName(m); got != want {
			t.Errorf("ModeName(%d) = %q, want %q", m, got, want)
		}
	}
}

func TestSequencer_ParseMode(t *testing.T) {
	t.Parallel()

	s, _ := New(&audiotest.Queue{}, audiotest.Kit(), Options{})

	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "0", want: ModeNone},
		{in: "2", want: ModeCustom},
		{in: " Rock ", want: ModeRock},
		{in: "custom", want: ModeCustom},
		{in: "none", want: ModeNone},
		{in: "3", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "jazz", wantErr: true},
	}

	for _, tt := range tests {
		got, err := s.ParseMode(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownMode) {
				t.Errorf("ParseMode(%q) error = %v, want ErrUnknownMode", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseMode(%q) = %d, %v, want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	if _, err := New(&audiotest.Queue{}, nil, Options{}); !errors.Is(err, ErrNoKit) {
		t.Errorf("New(nil kit) error = %v, want ErrNoKit", err)
	}

	bad := Options{Patterns: []Pattern{{Name: "empty"}}}
	if _, err := New(&audiotest.Queue{}, audiotest.Kit(), bad); !errors.Is(err, ErrEmptyPattern) {
		t.Errorf("New(empty pattern) error = %v, want ErrEmptyPattern", err)
	}

	if _, err := New(&audiotest.Queue{}, audiotest.Kit(), Options{Mode: 3}); !errors.Is(err, ErrUnknownMode) {
		t.Errorf("New(mode 3) error = %v, want ErrUnknownMode", err)
	}
}

func TestSequencer_ConfiguredPatterns(t *testing.T) {
	t.Parallel()

	patterns := append(DefaultPatterns(), Pattern{Name: "four", Steps: []Step{{audio.BaseDrum}, {}, {}, {}}})

	q := &audiotest.Queue{}
	sc := &script{stopAfter: 5}
	s, err := New(q, audiotest.Kit(), Options{Patterns: patterns, Mode: 3, Sleep: sc.sleep})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if s.Modes() != 4 {
		t.Errorf("Modes() = %d, want 4", s.Modes())
	}

	run(t, s, sc)

	if got := q.Names(); !slices.Equal(got, []string{"bass", "bass"}) {
		t.Errorf("queued = %v, want [bass bass]", got)
	}
}

func TestSequencer_Volume(t *testing.T) {
	t.Parallel()

	q := &audiotest.Queue{}
	s, _ := New(q, audiotest.Kit(), Options{})

	s.SetVolume(150)
	if s.Volume() != 100 || q.Volume() != 100 {
		t.Errorf("Volume() = %d, mixer = %d, want 100", s.Volume(), q.Volume())
	}
}

func TestSequencer_RunStopsPromptly(t *testing.T) {
	t.Parallel()

	rec := timing.NewRecorder()
	s, err := New(&audiotest.Queue{}, audiotest.Kit(), Options{Mode: ModeRock, BPM: MinBPM, Recorder: rec})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancel")
	}

	if st := s.Stats(); st.Steps != 1 {
		t.Errorf("Stats().Steps = %d, want 1 within the first half-beat", st.Steps)
	}
}

func TestSequencer_MarksBeats(t *testing.T) {
	t.Parallel()

	rec := timing.NewRecorder()
	sc := &script{stopAfter: 4}
	s, _ := New(&audiotest.Queue{}, audiotest.Kit(), Options{Mode: ModeRock, Recorder: rec, Sleep: sc.sleep})

	run(t, s, sc)

	if st := rec.GetAndReset(timing.Beat); st.Count != 3 {
		t.Errorf("beat stats count = %d, want 3", st.Count)
	}
}
