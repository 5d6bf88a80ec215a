// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Fixed PCM format shared by every asset and the output device.
const (
	SampleRate    = 44100
	Channels      = 1
	BitsPerSample = 16
)

// Asset is a fully decoded mono 16-bit PCM clip.
//
// An Asset is never mutated after construction, so a single *Asset can be
// shared by reference between the loader, the sequencer and the mixer
// without any locking.
type Asset struct {
	name       string
	sampleRate int
	samples    []int16
}

// NewAsset wraps samples into an Asset. The slice is copied so later changes
// by the caller are not observed.
func NewAsset(name string, sampleRate int, samples []int16) *Asset {
	cp := make([]int16, len(samples))
	copy(cp, samples)

	return &Asset{
		name:       name,
		sampleRate: sampleRate,
		samples:    cp,
	}
}

func (a *Asset) Name() string     { return a.name }
func (a *Asset) SampleRate() int  { return a.sampleRate }
func (a *Asset) SampleCount() int { return len(a.samples) }

// Samples returns the underlying PCM data. Callers must treat it as read-only.
func (a *Asset) Samples() []int16 { return a.samples }

// Sound identifies one of the drum sounds the machine can trigger.
type Sound int

const (
	BaseDrum Sound = iota
	HiHat
	Snare
)

// Sounds lists every known sound in wire order (the numbering used by the
// "play <n>" command).
var Sounds = []Sound{BaseDrum, HiHat, Snare}

func (s Sound) String() string {
	switch s {
	case BaseDrum:
		return "bass"
	case HiHat:
		return "hihat"
	case Snare:
		return "snare"
	}

	return fmt.Sprintf("sound(%d)", int(s))
}

// Valid reports whether s is one of the known sounds.
func (s Sound) Valid() bool {
	return s >= BaseDrum && s <= Snare
}

// ParseSound maps a name or a wire number to a Sound. A few common aliases
// are accepted.
func ParseSound(name string) (Sound, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	if n, err := strconv.Atoi(name); err == nil {
		if s := Sound(n); s.Valid() {
			return s, nil
		}
		return 0, fmt.Errorf("%w: %d", ErrUnknownSound, n)
	}

	switch name {
	case "bass", "base", "basedrum", "kick", "bd":
		return BaseDrum, nil
	case "hihat", "hi-hat", "hh", "hat":
		return HiHat, nil
	case "snare", "sd":
		return Snare, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownSound, name)
}

// Registry maps sounds to their loaded assets (a drum kit).
type Registry struct {
	assets map[Sound]*Asset

	mtx *sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		assets: make(map[Sound]*Asset),
		mtx:    &sync.RWMutex{},
	}
}

func (r *Registry) Register(s Sound, a *Asset) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.assets[s] = a
}

func (r *Registry) Get(s Sound) (*Asset, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	a, ok := r.assets[s]
	return a, ok
}

// Missing returns the known sounds that have no asset registered.
func (r *Registry) Missing() []Sound {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	var missing []Sound
	for _, s := range Sounds {
		if _, ok := r.assets[s]; !ok {
			missing = append(missing, s)
		}
	}

	return missing
}
