//go:build headless

// SPDX-License-Identifier: EPL-2.0

package sink

import "fmt"

// Oto is unavailable in headless builds; use the "null" output instead.
type Oto struct{}

func OpenOto(cfg Config) (*Oto, error) {
	return nil, fmt.Errorf("%w: built without audio output (headless)", ErrOpen)
}

func (o *Oto) Write(frame []int16) error { return ErrClosed }
func (o *Oto) Drain() error              { return nil }
func (o *Oto) Close() error              { return nil }
func (o *Oto) Underruns() uint64         { return 0 }
