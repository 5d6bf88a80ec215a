// SPDX-License-Identifier: EPL-2.0

package control

import (
	"fmt"
	"log/slog"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/ik5/beatbox/audio"
)

// General MIDI percussion keys.
var drumNotes = map[uint8]audio.Sound{
	35: audio.BaseDrum, // acoustic bass drum
	36: audio.BaseDrum, // bass drum 1
	38: audio.Snare,    // acoustic snare
	40: audio.Snare,    // electric snare
	42: audio.HiHat,    // closed hi-hat
	44: audio.HiHat,    // pedal hi-hat
	46: audio.HiHat,    // open hi-hat
}

// NoteSound maps a General MIDI drum key to a sound.
func NoteSound(note uint8) (audio.Sound, bool) {
	s, ok := drumNotes[note]
	return s, ok
}

// MIDIPads plays drum hits from note-on messages of a MIDI input. A driver
// must be registered by the caller, usually with a blank import of
// gitlab.com/gomidi/midi/v2/drivers/rtmididrv.
type MIDIPads struct {
	player  SoundPlayer
	surface *Surface
	log     *slog.Logger
	stop    func()
}

func NewMIDIPads(player SoundPlayer, log *slog.Logger) *MIDIPads {
	if log == nil {
		log = slog.Default()
	}

	return &MIDIPads{player: player, log: log.With("component", "midi")}
}

// Attach routes control-change messages to s. Call it before Open.
func (p *MIDIPads) Attach(s *Surface) {
	p.surface = s
}

// Open starts listening on the input port whose name matches portName.
func (p *MIDIPads) Open(portName string) error {
	in, err := gomidi.FindInPort(portName)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrNoMIDIPort, portName, err)
	}

	return p.Listen(in)
}

// Listen starts listening on in.
func (p *MIDIPads) Listen(in drivers.In) error {
	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, _ int32) {
		if !p.Handle(msg) && p.surface != nil {
			p.surface.Handle(msg)
		}
	})
	if err != nil {
		return fmt.Errorf("open midi input %s: %w", in.String(), err)
	}

	p.stop = stop
	p.log.Info("listening for drum pads", "port", in.String())

	return nil
}

// Handle plays the sound for a note-on message. It reports whether the
// message triggered a hit.
func (p *MIDIPads) Handle(msg gomidi.Message) bool {
	var channel, note, velocity uint8
	if !msg.GetNoteOn(&channel, &note, &velocity) || velocity == 0 {
		return false
	}

	sound, ok := NoteSound(note)
	if !ok {
		return false
	}

	if err := p.player.Play(sound); err != nil {
		p.log.Debug("pad hit dropped", "note", note, "error", err)
		return false
	}

	return true
}

func (p *MIDIPads) Close() {
	if p.stop != nil {
		p.stop()
		p.stop = nil
	}
}
