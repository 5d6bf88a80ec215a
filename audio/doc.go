// SPDX-License-Identifier: EPL-2.0

// Package audio provides the types shared by every part of the drum machine.
//
// This package contains:
//   - Asset, an immutable decoded PCM clip
//   - Sound, the identifier of a drum sound (bass drum, hi-hat, snare)
//   - Registry, the drum kit mapping each Sound to its Asset
//
// # Sample Format
//
// The machine works with exactly one PCM format:
//   - 16-bit signed samples
//   - mono
//   - 44100 Hz
//
// Loaders reject anything else instead of converting it.
//
// # Sharing Assets
//
// An Asset is read-only once built. The loader hands out *Asset values that
// are shared between goroutines without locking:
//
//	kit := audio.NewRegistry()
//	kit.Register(audio.HiHat, hiHat)
//	asset, ok := kit.Get(audio.HiHat)
//
// # Sound Numbering
//
// Sounds are numbered in the order used by the network "play" command:
// 0 is the bass drum, 1 the hi-hat and 2 the snare.
package audio
