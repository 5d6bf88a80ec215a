// SPDX-License-Identifier: EPL-2.0

// Package beatbox is an embedded drum machine: a fixed-pool mixing engine fed
// by a half-beat step sequencer, plus the control surfaces that drive them.
//
// # Packages
//
// The engine is split by concern:
//   - audio: sound identifiers, decoded assets and the drum kit registry
//   - formats/wav: loads the kit from mono 16-bit PCM WAV files
//   - mixer: the voice pool, volume and the playback goroutine
//   - sink: the playback device (oto, a paced null device, or memory)
//   - sequencer: beat patterns, tempo and mode
//   - timing: interval statistics for the audio, beat and accelerometer loops
//   - control: UDP commands, accelerometer hits, joystick volume, tempo knob,
//     mode button and MIDI pads
//   - diag: the terminal status line and the HTTP status API
//   - config: YAML settings
//
// # Quick Start
//
// Load the kit, start the mixer on a device and run the sequencer:
//
//	kit := audio.NewRegistry()
//	bass, _ := wav.Load("bass.wav", audio.SampleRate)
//	kit.Register(audio.BaseDrum, bass)
//	// ... hi-hat and snare
//
//	dev, _ := sink.Open(sink.DefaultConfig())
//	mix := mixer.New(dev, mixer.Options{})
//	mix.Start(ctx)
//	defer mix.Close()
//
//	seq, _ := sequencer.New(mix, kit, sequencer.Options{Mode: sequencer.ModeRock})
//	seq.Run(ctx)
//
// # Offline Rendering
//
// Render bounces a pattern through the same mixer without any device, which
// is handy for checking a pattern or a kit:
//
//	f, _ := os.Create("rock.wav")
//	err := beatbox.Render(f, sequencer.Rock(), kit, beatbox.RenderOptions{Bars: 4})
package beatbox
