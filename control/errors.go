// SPDX-License-Identifier: EPL-2.0

package control

import "errors"

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadArgument    = errors.New("bad argument")
	ErrNoMIDIPort     = errors.New("midi input port not found")
)
