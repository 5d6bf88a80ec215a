// SPDX-License-Identifier: EPL-2.0

package mixer

import "errors"

var (
	// ErrVoicePoolFull is returned by QueueSound when every voice is busy.
	// The new request is dropped; voices already playing are never stolen.
	ErrVoicePoolFull = errors.New("voice pool is full")
	ErrNilAsset      = errors.New("nil asset")
	ErrEmptyAsset    = errors.New("asset has no samples")
	ErrClosed        = errors.New("mixer is closed")
	ErrNoSink        = errors.New("mixer has no sink")
	ErrStarted       = errors.New("mixer is already started")
)
