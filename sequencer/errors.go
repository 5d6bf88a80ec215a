// SPDX-License-Identifier: EPL-2.0

package sequencer

import "errors"

var (
	ErrUnknownMode  = errors.New("unknown mode")
	ErrEmptyPattern = errors.New("pattern has no steps")
	ErrBadPattern   = errors.New("invalid pattern")
	ErrNoKit        = errors.New("no drum kit")
	ErrMissingSound = errors.New("sound is not loaded")
)
