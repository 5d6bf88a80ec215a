// SPDX-License-Identifier: EPL-2.0

// Package config loads the drum machine settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ik5/beatbox/audio"
	"github.com/ik5/beatbox/control"
	"github.com/ik5/beatbox/mixer"
	"github.com/ik5/beatbox/sequencer"
	"github.com/ik5/beatbox/sink"
)

// DefaultPath is read when no -config flag is given.
const DefaultPath = "beatbox.yaml"

type Assets struct {
	HiHat string `yaml:"hihat"`
	Bass  string `yaml:"bass"`
	Snare string `yaml:"snare"`
}

// Paths returns the asset path of every sound.
func (a Assets) Paths() map[audio.Sound]string {
	return map[audio.Sound]string{
		audio.BaseDrum: a.Bass,
		audio.HiHat:    a.HiHat,
		audio.Snare:    a.Snare,
	}
}

type Audio struct {
	SampleRate   int    `yaml:"sample_rate"`
	Channels     int    `yaml:"channels"`
	PeriodFrames int    `yaml:"period_frames"`
	Periods      int    `yaml:"periods"`
	MaxVoices    int    `yaml:"max_voices"`
	Output       string `yaml:"output"`
}

// Sink returns the device configuration.
func (a Audio) Sink() sink.Config {
	return sink.Config{
		Output:       a.Output,
		SampleRate:   a.SampleRate,
		Channels:     a.Channels,
		PeriodFrames: a.PeriodFrames,
		Periods:      a.Periods,
	}
}

type Beat struct {
	BPM    int    `yaml:"bpm"`
	Volume int    `yaml:"volume"`
	Mode   string `yaml:"mode"`
}

// Pattern lists, for each half-beat step, the sounds to trigger. An empty
// list is a rest.
type Pattern struct {
	Name  string     `yaml:"name"`
	Steps [][]string `yaml:"steps"`
}

type Control struct {
	UDPAddr  string `yaml:"udp_addr"`
	MIDIPort string `yaml:"midi_port"`
	HTTPAddr string `yaml:"http_addr"`
	// Surface assigns the controller numbers read from the MIDI port.
	Surface Surface `yaml:"surface"`
}

// Surface holds MIDI control-change numbers, 0 to 127.
type Surface struct {
	TempoCC  int `yaml:"tempo_cc"`
	ModeCC   int `yaml:"mode_cc"`
	VolumeCC int `yaml:"volume_cc"`
	AccelXCC int `yaml:"accel_x_cc"`
	AccelYCC int `yaml:"accel_y_cc"`
	AccelZCC int `yaml:"accel_z_cc"`
}

func (s Surface) numbers() map[string]int {
	return map[string]int{
		"tempo_cc":   s.TempoCC,
		"mode_cc":    s.ModeCC,
		"volume_cc":  s.VolumeCC,
		"accel_x_cc": s.AccelXCC,
		"accel_y_cc": s.AccelYCC,
		"accel_z_cc": s.AccelZCC,
	}
}

func (s Surface) Validate() error {
	seen := make(map[int]string)

	for key, n := range s.numbers() {
		if n < 0 || n > 127 {
			return fmt.Errorf("control.surface.%s: %d is not a controller number", key, n)
		}
		if other, ok := seen[n]; ok {
			return fmt.Errorf("control.surface.%s and %s both use controller %d", key, other, n)
		}
		seen[n] = key
	}

	return nil
}

// CC converts s for control.NewSurface. Call Validate first.
func (s Surface) CC() control.SurfaceCC {
	return control.SurfaceCC{
		Tempo:  uint8(s.TempoCC),
		Mode:   uint8(s.ModeCC),
		Volume: uint8(s.VolumeCC),
		AccelX: uint8(s.AccelXCC),
		AccelY: uint8(s.AccelYCC),
		AccelZ: uint8(s.AccelZCC),
	}
}

type Status struct {
	// Interval between status lines. Zero disables the status line.
	Interval time.Duration `yaml:"interval"`
	Color    bool          `yaml:"color"`
}

type Config struct {
	Assets   Assets    `yaml:"assets"`
	Audio    Audio     `yaml:"audio"`
	Beat     Beat      `yaml:"beat"`
	Patterns []Pattern `yaml:"patterns"`
	Control  Control   `yaml:"control"`
	Status   Status    `yaml:"status"`
	LogLevel string    `yaml:"log_level"`
}

// Default returns the settings used for every key missing from the file.
func Default() *Config {
	dev := sink.DefaultConfig()

	return &Config{
		Assets: Assets{
			HiHat: "wave-files/100053__menegass__gui-drum-cc.wav",
			Bass:  "wave-files/100051__menegass__gui-drum-bd-hard.wav",
			Snare: "wave-files/100059__menegass__gui-drum-snare-soft.wav",
		},
		Audio: Audio{
			SampleRate:   dev.SampleRate,
			Channels:     dev.Channels,
			PeriodFrames: dev.PeriodFrames,
			Periods:      dev.Periods,
			MaxVoices:    mixer.DefaultMaxVoices,
			Output:       dev.Output,
		},
		Beat: Beat{
			BPM:    sequencer.DefaultBPM,
			Volume: mixer.DefaultVolume,
			Mode:   "rock",
		},
		Control: Control{
			UDPAddr: control.DefaultUDPAddr,
			Surface: defaultSurface(),
		},
		Status: Status{
			Interval: time.Second,
		},
		LogLevel: "info",
	}
}

func defaultSurface() Surface {
	cc := control.DefaultSurfaceCC()

	return Surface{
		TempoCC:  int(cc.Tempo),
		ModeCC:   int(cc.Mode),
		VolumeCC: int(cc.Volume),
		AccelXCC: int(cc.AccelX),
		AccelYCC: int(cc.AccelY),
		AccelZCC: int(cc.AccelZ),
	}
}

// Load reads path over the defaults. A missing file is not an error: the
// defaults are returned as they are.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	if err := Parse(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes YAML data over cfg and validates the result.
func Parse(data []byte, cfg *Config) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}

	return cfg.Validate()
}

func (c *Config) Validate() error {
	if err := c.Audio.Sink().Validate(); err != nil {
		return fmt.Errorf("%w: audio: %w", ErrInvalid, err)
	}
	if c.Audio.MaxVoices <= 0 {
		return fmt.Errorf("%w: audio.max_voices must be positive, got %d", ErrInvalid, c.Audio.MaxVoices)
	}

	for s, path := range c.Assets.Paths() {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("%w: assets.%s is empty", ErrInvalid, s)
		}
	}

	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.Control.Surface.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Status.Interval < 0 {
		return fmt.Errorf("%w: status.interval is negative", ErrInvalid)
	}

	patterns, err := c.SequencerPatterns()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if !knownMode(c.Beat.Mode, patterns) {
		return fmt.Errorf("%w: beat.mode %q matches no pattern", ErrInvalid, c.Beat.Mode)
	}

	return nil
}

// Level parses LogLevel (debug, info, warn or error).
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}

	return l, nil
}

// SequencerPatterns converts the configured patterns. With none configured
// it returns the built-in rock and custom patterns.
func (c *Config) SequencerPatterns() ([]sequencer.Pattern, error) {
	if len(c.Patterns) == 0 {
		return sequencer.DefaultPatterns(), nil
	}

	out := make([]sequencer.Pattern, 0, len(c.Patterns))
	for _, p := range c.Patterns {
		sp := sequencer.Pattern{Name: p.Name, Steps: make([]sequencer.Step, len(p.Steps))}

		for i, names := range p.Steps {
			for _, name := range names {
				s, err := audio.ParseSound(name)
				if err != nil {
					return nil, fmt.Errorf("pattern %q step %d: %w", p.Name, i, err)
				}
				sp.Steps[i] = append(sp.Steps[i], s)
			}
		}

		if err := sp.Validate(); err != nil {
			return nil, err
		}
		out = append(out, sp)
	}

	return out, nil
}

// knownMode reports whether name is "none", a mode number or a pattern name.
func knownMode(name string, patterns []sequencer.Pattern) bool {
	name = strings.ToLower(strings.TrimSpace(name))

	if n, err := strconv.Atoi(name); err == nil {
		return n >= 0 && n <= len(patterns)
	}
	if name == "none" || name == "off" || name == "" {
		return true
	}

	for _, p := range patterns {
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}

	return false
}
