// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ik5/beatbox/audio"
	"github.com/ik5/beatbox/control"
	"github.com/ik5/beatbox/sink"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "beatbox.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	return path
}

func TestDefault_Valid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}

	if cfg.Beat.BPM != 120 || cfg.Beat.Volume != 80 || cfg.Beat.Mode != "rock" {
		t.Errorf("Beat = %+v, want 120 bpm, volume 80, rock", cfg.Beat)
	}
	if cfg.Control.UDPAddr != ":12345" {
		t.Errorf("UDPAddr = %q, want :12345", cfg.Control.UDPAddr)
	}
	if cfg.Audio.MaxVoices != 30 {
		t.Errorf("MaxVoices = %d, want 30", cfg.Audio.MaxVoices)
	}
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Status.Interval != time.Second {
		t.Errorf("Status.Interval = %v, want 1s", cfg.Status.Interval)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	t.Parallel()

	path := writeFile(t, `
audio:
  output: "null"
  max_voices: 8
beat:
  bpm: 90
  mode: shuffle
patterns:
  - name: shuffle
    steps:
      - [bass, hihat]
      - []
      - [snare]
      - ["1"]
control:
  http_addr: "127.0.0.1:8080"
status:
  interval: 250ms
log_level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Audio.Output != sink.OutputNull || cfg.Audio.MaxVoices != 8 {
		t.Errorf("Audio = %+v", cfg.Audio)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Audio.SampleRate != audio.SampleRate || cfg.Beat.Volume != 80 {
		t.Errorf("defaults lost: %+v %+v", cfg.Audio, cfg.Beat)
	}
	if cfg.Beat.BPM != 90 {
		t.Errorf("Beat.BPM = %d, want 90", cfg.Beat.BPM)
	}
	if cfg.Status.Interval != 250*time.Millisecond {
		t.Errorf("Status.Interval = %v, want 250ms", cfg.Status.Interval)
	}
	if cfg.Control.HTTPAddr != "127.0.0.1:8080" || cfg.Control.UDPAddr != ":12345" {
		t.Errorf("Control = %+v", cfg.Control)
	}

	lvl, err := cfg.Level()
	if err != nil || lvl != slog.LevelDebug {
		t.Errorf("Level() = %v, %v, want DEBUG", lvl, err)
	}

	patterns, err := cfg.SequencerPatterns()
	if err != nil {
		t.Fatalf("SequencerPatterns() error = %v", err)
	}
	if len(patterns) != 1 || patterns[0].Len() != 4 {
		t.Fatalf("SequencerPatterns() = %v, want one 4-step pattern", patterns)
	}

	p := patterns[0]
	if !p.Steps[0].Has(audio.BaseDrum) || !p.Steps[0].Has(audio.HiHat) {
		t.Errorf("step 0 = %v, want bass+hihat", p.Steps[0])
	}
	if len(p.Steps[1]) != 0 {
		t.Errorf("step 1 = %v, want rest", p.Steps[1])
	}
	if !p.Steps[3].Has(audio.HiHat) {
		t.Errorf("step 3 = %v, want hihat", p.Steps[3])
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want error
	}{
		{name: "syntax", body: "beat: [", want: ErrParse},
		{name: "output", body: "audio: {output: alsa}", want: ErrInvalid},
		{name: "stereo", body: "audio: {channels: 2}", want: ErrInvalid},
		{name: "voices", body: "audio: {max_voices: 0}", want: ErrInvalid},
		{name: "asset", body: "assets: {snare: \"\"}", want: ErrInvalid},
		{name: "level", body: "log_level: loud", want: ErrInvalid},
		{name: "interval", body: "status: {interval: -1s}", want: ErrInvalid},
		{name: "sound", body: "patterns: [{name: x, steps: [[cowbell]]}]", want: ErrInvalid},
		{name: "empty pattern", body: "patterns: [{name: x, steps: []}]", want: ErrInvalid},
		{name: "mode", body: "beat: {mode: jazz}", want: ErrInvalid},
		{name: "cc range", body: "control: {surface: {tempo_cc: 128}}", want: ErrInvalid},
		{name: "cc clash", body: "control: {surface: {mode_cc: 20}}", want: ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load(writeFile(t, tt.body))
			if !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoad_Unreadable(t *testing.T) {
	t.Parallel()

	// A directory cannot be read as a file.
	_, err := Load(t.TempDir())
	if !errors.Is(err, ErrRead) {
		t.Errorf("Load(dir) error = %v, want ErrRead", err)
	}
}

func TestKnownMode(t *testing.T) {
	t.Parallel()

	patterns := Default()
	ps, _ := patterns.SequencerPatterns()

	for _, name := range []string{"none", "off", "", "0", "1", "2", "Rock", "custom"} {
		if !knownMode(name, ps) {
			t.Errorf("knownMode(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"3", "jazz", "-1"} {
		if knownMode(name, ps) {
			t.Errorf("knownMode(%q) = true, want false", name)
		}
	}
}

func TestAudio_Sink(t *testing.T) {
	t.Parallel()

	got := Default().Audio.Sink()
	if got != sink.DefaultConfig() {
		t.Errorf("Sink() = %+v, want %+v", got, sink.DefaultConfig())
	}
}

func TestSurface_CC(t *testing.T) {
	t.Parallel()

	if got := Default().Control.Surface.CC(); got != control.DefaultSurfaceCC() {
		t.Errorf("CC() = %+v, want %+v", got, control.DefaultSurfaceCC())
	}

	path := writeFile(t, "control: {surface: {tempo_cc: 70, accel_z_cc: 71}}")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cc := cfg.Control.Surface.CC()
	if cc.Tempo != 70 || cc.AccelZ != 71 || cc.Mode != 21 {
		t.Errorf("CC() = %+v, want tempo 70, accel z 71, mode 21", cc)
	}
}
