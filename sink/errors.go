// SPDX-License-Identifier: EPL-2.0

package sink

import "errors"

var (
	// ErrOpen means the output device could not be opened.
	ErrOpen = errors.New("cannot open audio output")

	// ErrUnderrun reports that the device starved before the frame arrived.
	// It is recoverable.
	ErrUnderrun = errors.New("audio underrun")

	ErrClosed    = errors.New("audio output closed")
	ErrBadConfig = errors.New("invalid audio configuration")
)
