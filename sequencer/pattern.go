// SPDX-License-Identifier: EPL-2.0

package sequencer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ik5/beatbox/audio"
)

// Step is the set of sounds triggered together on one half-beat. An empty
// step is a rest.
type Step []audio.Sound

// Has reports whether s triggers sound.
func (s Step) Has(sound audio.Sound) bool {
	return slices.Contains(s, sound)
}

func (s Step) String() string {
	if len(s) == 0 {
		return "-"
	}

	names := make([]string, len(s))
	for i, sound := range s {
		names[i] = sound.String()
	}

	return strings.Join(names, "+")
}

// Pattern is a named loop of steps.
type Pattern struct {
	Name  string
	Steps []Step
}

func (p Pattern) Len() int { return len(p.Steps) }

func (p Pattern) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrBadPattern)
	}
	if len(p.Steps) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyPattern, p.Name)
	}

	for i, step := range p.Steps {
		for _, sound := range step {
			if !sound.Valid() {
				return fmt.Errorf("%w: %s step %d: %v", ErrBadPattern, p.Name, i, sound)
			}
		}
	}

	return nil
}

// Rock is the eight half-beat rock beat: hi-hat on every half-beat, bass
// drum on beats 1 and 3, snare on beats 2 and 4.
func Rock() Pattern {
	return Pattern{
		Name: "rock",
		Steps: []Step{
			{audio.HiHat, audio.BaseDrum},
			{audio.HiHat},
			{audio.HiHat, audio.Snare},
			{audio.HiHat},
			{audio.HiHat, audio.BaseDrum},
			{audio.HiHat},
			{audio.HiHat, audio.Snare},
			{audio.HiHat},
		},
	}
}

// Custom is the four half-beat alternative beat.
func Custom() Pattern {
	return Pattern{
		Name: "custom",
		Steps: []Step{
			{audio.BaseDrum},
			{audio.Snare},
			{audio.HiHat},
			{audio.HiHat, audio.BaseDrum},
		},
	}
}

// DefaultPatterns returns the built-in patterns in mode order.
func DefaultPatterns() []Pattern {
	return []Pattern{Rock(), Custom()}
}
