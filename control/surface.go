// SPDX-License-Identifier: EPL-2.0

package control

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/ik5/beatbox/timing"
)

// SurfaceCC assigns MIDI control-change numbers to the machine's controls.
type SurfaceCC struct {
	// Tempo is a relative encoder: 1..63 turns clockwise by that many
	// detents, 65..127 turns counter-clockwise by 128-value.
	Tempo uint8
	// Mode presses the mode button when the value reaches 64.
	Mode uint8
	// Volume acts as the joystick: >= 96 is up, <= 31 is down.
	Volume uint8
	// AccelX, AccelY and AccelZ carry tilt, 64 being level.
	AccelX, AccelY, AccelZ uint8
}

func DefaultSurfaceCC() SurfaceCC {
	return SurfaceCC{Tempo: 20, Mode: 21, Volume: 1, AccelX: 16, AccelY: 17, AccelZ: 18}
}

// accelScale maps one CC step to raw accelerometer units, so a jump of 8
// steps clears the 2000 threshold of the X and Y axes.
const accelScale = 256

// Surface is a MIDI controller standing in for the rotary encoder, the mode
// button, the joystick and the accelerometer. It implements Encoder, Button,
// Joystick and Accelerometer; Handle feeds it from a MIDI input.
type Surface struct {
	Detents
	Presses

	cc    SurfaceCC
	dir   atomic.Int32
	accel [3]atomic.Int32
}

func NewSurface(cc SurfaceCC) *Surface {
	return &Surface{cc: cc}
}

// Handle applies a control-change message. It reports whether the message
// matched one of the assigned controllers.
func (s *Surface) Handle(msg gomidi.Message) bool {
	var channel, controller, value uint8
	if !msg.GetControlChange(&channel, &controller, &value) {
		return false
	}

	switch controller {
	case s.cc.Tempo:
		switch {
		case value > 0 && value < 64:
			s.Turn(int(value))
		case value > 64:
			s.Turn(int(value) - 128)
		}
	case s.cc.Mode:
		if value >= 64 {
			s.Press()
		}
	case s.cc.Volume:
		dir := Center
		switch {
		case value >= 96:
			dir = Up
		case value <= 31:
			dir = Down
		}
		s.dir.Store(int32(dir))
	case s.cc.AccelX:
		s.accel[0].Store((int32(value) - 64) * accelScale)
	case s.cc.AccelY:
		s.accel[1].Store((int32(value) - 64) * accelScale)
	case s.cc.AccelZ:
		s.accel[2].Store((int32(value) - 64) * accelScale)
	default:
		return false
	}

	return true
}

func (s *Surface) Direction() (Direction, error) {
	return Direction(s.dir.Load()), nil
}

func (s *Surface) Read() (Vector, error) {
	return Vector{
		X: int16(s.accel[0].Load()),
		Y: int16(s.accel[1].Load()),
		Z: int16(s.accel[2].Load()),
	}, nil
}

// Runner is a polling loop that returns once ctx is done.
type Runner interface {
	Run(ctx context.Context)
}

// Pollers returns the hit detector, volume poller, tempo knob and mode
// button, all reading from s.
func (s *Surface) Pollers(target Target, rec *timing.Recorder, log *slog.Logger) []Runner {
	return []Runner{
		NewHitDetector(s, target, rec, log),
		NewVolumePoller(s, target, log),
		NewTempoKnob(s, target, log),
		NewModeButton(s, target, log),
	}
}

// RunAll runs every runner on its own goroutine and returns when all of them
// have stopped.
func RunAll(ctx context.Context, runners ...Runner) {
	var wg sync.WaitGroup
	for _, r := range runners {
		wg.Go(func() { r.Run(ctx) })
	}
	wg.Wait()
}
