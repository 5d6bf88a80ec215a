// SPDX-License-Identifier: EPL-2.0

// Package control adapts input devices and network commands to the
// sequencer: a UDP text protocol, an accelerometer hit detector, a joystick
// volume poller, a rotary tempo knob, a mode button and MIDI drum pads.
//
// Hardware drivers stay outside this package. Each adapter reads its device
// through a one-method interface and polls it at a fixed interval.
package control
