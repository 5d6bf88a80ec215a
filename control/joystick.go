// SPDX-License-Identifier: EPL-2.0

package control

import (
	"context"
	"log/slog"
	"time"
)

const (
	JoystickPoll = 100 * time.Millisecond
	VolumeStep   = 5
)

type Direction int

const (
	Center Direction = iota
	Up
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "center"
}

// Joystick reports where the stick is pushed.
type Joystick interface {
	Direction() (Direction, error)
}

// VolumePoller nudges the volume while the joystick is held up or down.
type VolumePoller struct {
	stick  Joystick
	target VolumeControl
	log    *slog.Logger
}

func NewVolumePoller(stick Joystick, target VolumeControl, log *slog.Logger) *VolumePoller {
	if log == nil {
		log = slog.Default()
	}

	return &VolumePoller{stick: stick, target: target, log: log.With("component", "joystick")}
}

func (p *VolumePoller) Run(ctx context.Context) {
	poll(ctx, JoystickPoll, p.Poll)
}

func (p *VolumePoller) Poll() {
	dir, err := p.stick.Direction()
	if err != nil {
		p.log.Warn("joystick read failed", "error", err)
		return
	}

	switch dir {
	case Up:
		p.target.SetVolume(p.target.Volume() + VolumeStep)
	case Down:
		p.target.SetVolume(p.target.Volume() - VolumeStep)
	default:
		return
	}

	p.log.Debug("volume changed", "direction", dir, "volume", p.target.Volume())
}
