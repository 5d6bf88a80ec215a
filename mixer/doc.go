// SPDX-License-Identifier: EPL-2.0

// Package mixer sums concurrently queued drum hits into one mono 16-bit
// stream.
//
// Any goroutine may call QueueSound, SetVolume and Volume. A single playback
// goroutine, started with Start, repeatedly pulls one period from the voice
// pool and writes it to the sink. The sink's blocking Write paces the whole
// pipeline.
//
// Each voice sample is scaled by the volume percentage with integer
// arithmetic (truncating toward zero) before summing, and the sum saturates
// at the int16 bounds instead of wrapping.
//
// The voice pool has a fixed capacity. When it is full the newest request is
// rejected with ErrVoicePoolFull and counted in Stats.Dropped.
package mixer
