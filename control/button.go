// SPDX-License-Identifier: EPL-2.0

package control

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const ButtonPoll = 100 * time.Millisecond

// Button reports whether it was pressed since the previous call.
type Button interface {
	Pressed() (bool, error)
}

// Presses is a Button fed by an edge-triggered driver.
type Presses struct {
	n atomic.Int64
}

func (p *Presses) Press() {
	p.n.Add(1)
}

func (p *Presses) Pressed() (bool, error) {
	return p.n.Swap(0) > 0, nil
}

// ModeButton cycles the beat mode on every press.
type ModeButton struct {
	btn    Button
	target ModeControl
	log    *slog.Logger
}

func NewModeButton(btn Button, target ModeControl, log *slog.Logger) *ModeButton {
	if log == nil {
		log = slog.Default()
	}

	return &ModeButton{btn: btn, target: target, log: log.With("component", "button")}
}

func (b *ModeButton) Run(ctx context.Context) {
	poll(ctx, ButtonPoll, b.Poll)
}

func (b *ModeButton) Poll() {
	pressed, err := b.btn.Pressed()
	if err != nil {
		b.log.Warn("button read failed", "error", err)
		return
	}
	if !pressed {
		return
	}

	m := b.target.NextMode()
	b.log.Debug("mode button pressed", "mode", int(m))
}
