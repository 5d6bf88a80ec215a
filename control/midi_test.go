// SPDX-License-Identifier: EPL-2.0

package control

import (
	"errors"
	"slices"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/ik5/beatbox/audio"
	"github.com/ik5/beatbox/internal/audiotest"
	"github.com/ik5/beatbox/sequencer"
)

func TestNoteSound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		note uint8
		want audio.Sound
		ok   bool
	}{
		{note: 35, want: audio.BaseDrum, ok: true},
		{note: 36, want: audio.BaseDrum, ok: true},
		{note: 38, want: audio.Snare, ok: true},
		{note: 40, want: audio.Snare, ok: true},
		{note: 42, want: audio.HiHat, ok: true},
		{note: 44, want: audio.HiHat, ok: true},
		{note: 46, want: audio.HiHat, ok: true},
		{note: 37},
		{note: 60},
	}

	for _, tt := range tests {
		got, ok := NoteSound(tt.note)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("NoteSound(%d) = %v, %v, want %v, %v", tt.note, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMIDIPads_Handle(t *testing.T) {
	t.Parallel()

	target, q := newTarget(t)
	pads := NewMIDIPads(target, nil)
	defer pads.Close()

	tests := []struct {
		name string
		msg  gomidi.Message
		want bool
	}{
		{name: "kick", msg: gomidi.NoteOn(9, 36, 100), want: true},
		{name: "closed hat", msg: gomidi.NoteOn(9, 42, 64), want: true},
		{name: "zero velocity", msg: gomidi.NoteOn(9, 38, 0)},
		{name: "note off", msg: gomidi.NoteOff(9, 38)},
		{name: "unmapped", msg: gomidi.NoteOn(9, 60, 100)},
		{name: "snare", msg: gomidi.NoteOn(0, 38, 1), want: true},
	}

	for _, tt := range tests {
		if got := pads.Handle(tt.msg); got != tt.want {
			t.Errorf("%s: Handle() = %v, want %v", tt.name, got, tt.want)
		}
	}

	if want := []string{"bass", "hihat", "snare"}; !slices.Equal(q.Names(), want) {
		t.Errorf("queued = %v, want %v", q.Names(), want)
	}
}

func TestMIDIPads_PlayFailure(t *testing.T) {
	t.Parallel()

	q := &audiotest.Queue{Err: errors.New("voice pool is full")}
	target, err := sequencer.New(q, audiotest.Kit(), sequencer.Options{})
	if err != nil {
		t.Fatalf("sequencer.New() error = %v", err)
	}

	pads := NewMIDIPads(target, nil)
	if pads.Handle(gomidi.NoteOn(9, 36, 100)) {
		t.Error("Handle() = true for a dropped hit, want false")
	}
}
