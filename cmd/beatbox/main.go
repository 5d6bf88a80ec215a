// SPDX-License-Identifier: EPL-2.0

// Command beatbox runs the drum machine: it loads the kit, opens the audio
// device, plays the selected beat and listens for control commands until
// interrupted or told to stop.
//
// With -render it writes the selected pattern to a WAV file instead.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/ik5/beatbox"
	"github.com/ik5/beatbox/audio"
	"github.com/ik5/beatbox/config"
	"github.com/ik5/beatbox/control"
	"github.com/ik5/beatbox/diag"
	"github.com/ik5/beatbox/formats/wav"
	"github.com/ik5/beatbox/mixer"
	"github.com/ik5/beatbox/sequencer"
	"github.com/ik5/beatbox/sink"
	"github.com/ik5/beatbox/timing"
)

type flags struct {
	config string
	debug  bool
	render string
	bars   int
	mode   string
	bpm    int
}

func parseFlags(args []string) (flags, error) {
	var f flags

	fs := flag.NewFlagSet("beatbox", flag.ContinueOnError)
	fs.StringVar(&f.config, "config", config.DefaultPath, "YAML configuration file")
	fs.BoolVar(&f.debug, "debug", false, "log at debug level")
	fs.StringVar(&f.render, "render", "", "write the selected pattern to this WAV file and exit")
	fs.IntVar(&f.bars, "bars", 4, "bars to render with -render")
	fs.StringVar(&f.mode, "mode", "", "initial mode: number, pattern name or none")
	fs.IntVar(&f.bpm, "bpm", 0, "initial tempo in beats per minute")

	if err := fs.Parse(args); err != nil {
		return f, err
	}

	return f, nil
}

func main() {
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	if err := run(f, os.Stdout); err != nil {
		slog.Error("beatbox failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadKit decodes every asset. Any failure is fatal: the machine cannot play
// with a partial kit.
func loadKit(assets config.Assets, sampleRate int, log *slog.Logger) (*audio.Registry, error) {
	kit := audio.NewRegistry()

	for _, s := range audio.Sounds {
		path := assets.Paths()[s]

		a, err := wav.Load(path, sampleRate)
		if err != nil {
			return nil, err
		}

		kit.Register(s, a)
		log.Debug("asset loaded", "sound", s, "path", path, "samples", a.SampleCount())
	}

	return kit, nil
}

func run(f flags, stdout io.Writer) error {
	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}

	level, _ := cfg.Level()
	if f.debug {
		level = slog.LevelDebug
	}
	log := newLogger(level)
	slog.SetDefault(log)

	if f.mode != "" {
		cfg.Beat.Mode = f.mode
	}
	if f.bpm != 0 {
		cfg.Beat.BPM = f.bpm
	}

	patterns, err := cfg.SequencerPatterns()
	if err != nil {
		return err
	}

	kit, err := loadKit(cfg.Assets, cfg.Audio.SampleRate, log)
	if err != nil {
		return err
	}

	volume := cfg.Beat.Volume
	if volume == 0 {
		volume = -1
	}

	if f.render != "" {
		return render(f, cfg, patterns, kit, volume, log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dev, err := sink.Open(cfg.Audio.Sink())
	if err != nil {
		return err
	}

	rec := timing.NewRecorder()

	mix := mixer.New(dev, mixer.Options{
		MaxVoices:    cfg.Audio.MaxVoices,
		PeriodFrames: cfg.Audio.PeriodFrames,
		Volume:       volume,
		Logger:       log,
		Recorder:     rec,
	})
	if err := mix.Start(ctx); err != nil {
		return errors.Join(err, dev.Close())
	}
	defer mix.Close()

	seq, err := sequencer.New(mix, kit, sequencer.Options{
		Patterns: patterns,
		BPM:      cfg.Beat.BPM,
		Logger:   log,
		Recorder: rec,
	})
	if err != nil {
		return err
	}
	if err := setMode(seq, cfg.Beat.Mode); err != nil {
		return err
	}

	udp, err := control.ListenUDP(cfg.Control.UDPAddr, control.NewCommands(seq, log), stop, log)
	if err != nil {
		return err
	}
	udp.Start()
	defer udp.Close()

	if cfg.Control.HTTPAddr != "" {
		gin.SetMode(gin.ReleaseMode)

		api := &diag.API{Controller: seq, Mixer: mix, Kit: kit, Recorder: rec, Logger: log}
		srv, err := diag.Listen(cfg.Control.HTTPAddr, api.Router(), log)
		if err != nil {
			return err
		}
		srv.Start()
		defer srv.Close()
	}

	var surface *control.Surface
	if cfg.Control.MIDIPort != "" {
		pads := control.NewMIDIPads(seq, log)
		surface = control.NewSurface(cfg.Control.Surface.CC())
		pads.Attach(surface)

		if err := pads.Open(cfg.Control.MIDIPort); err != nil {
			// The pads are optional; the beat keeps playing without them.
			log.Warn("midi pads unavailable", "error", err)
			surface = nil
		} else {
			defer pads.Close()
		}
		defer closeMIDI()
	}

	var reporter *diag.Reporter
	if cfg.Status.Interval > 0 {
		var styles *diag.Styles
		if cfg.Status.Color {
			st := diag.DefaultStyles()
			styles = &st
		}

		reporter = diag.NewReporter(stdout, seq, rec, cfg.Status.Interval, styles)
	}

	ctlCtx, stopControls := context.WithCancel(ctx)
	waitControls := startControls(ctlCtx, seq, surface, rec, reporter, log)

	log.Info("beatbox running",
		"mode", seq.ModeName(seq.Mode()),
		"bpm", seq.BPM(),
		"volume", mix.Volume(),
		"udp", udp.Addr().String(),
		"output", cfg.Audio.Output,
	)

	err = seq.Run(ctx)

	stopControls()
	waitControls()

	st := mix.Stats()
	log.Info("beatbox stopping",
		"steps", seq.Stats().Steps,
		"dropped", st.Dropped,
		"underruns", st.Underruns,
	)

	return err
}

// startControls starts the status reporter and, when surface is set, the
// accelerometer, joystick, tempo knob and mode button pollers reading from
// it. Either may be nil. The returned func waits until all of them stopped,
// which happens once ctx is done.
func startControls(ctx context.Context, target control.Target, surface *control.Surface,
	rec *timing.Recorder, reporter *diag.Reporter, log *slog.Logger,
) (wait func()) {
	var runners []control.Runner
	if surface != nil {
		runners = surface.Pollers(target, rec, log)
	}
	if reporter != nil {
		runners = append(runners, reporter)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		control.RunAll(ctx, runners...)
	}()

	return func() { <-done }
}

func setMode(seq *sequencer.Sequencer, name string) error {
	if strings.TrimSpace(name) == "" {
		return seq.SetMode(sequencer.ModeNone)
	}

	m, err := seq.ParseMode(name)
	if err != nil {
		return err
	}

	return seq.SetMode(m)
}

func render(f flags, cfg *config.Config, patterns []sequencer.Pattern, kit *audio.Registry, volume int, log *slog.Logger) error {
	// The sequencer only resolves the mode here; it never runs.
	seq, err := sequencer.New(nil, kit, sequencer.Options{Patterns: patterns, Logger: log})
	if err != nil {
		return err
	}
	if err := setMode(seq, cfg.Beat.Mode); err != nil {
		return err
	}

	p, ok := seq.Pattern(seq.Mode())
	if !ok {
		return fmt.Errorf("render: mode %q plays nothing", cfg.Beat.Mode)
	}

	pcm, err := beatbox.RenderSamples(p, kit, beatbox.RenderOptions{
		Bars:       f.bars,
		BPM:        cfg.Beat.BPM,
		Volume:     volume,
		SampleRate: cfg.Audio.SampleRate,
		MaxVoices:  cfg.Audio.MaxVoices,
	})
	if err != nil {
		return err
	}

	if err := wav.WriteFile(f.render, cfg.Audio.SampleRate, pcm); err != nil {
		return err
	}

	log.Info("pattern rendered", "pattern", p.Name, "bars", f.bars, "samples", len(pcm), "file", f.render)

	return nil
}
