// SPDX-License-Identifier: EPL-2.0

// Package sequencer plays drum patterns into a mixer at a given tempo.
//
// A pattern is an ordered list of half-beat steps. Mode 0 is silence; mode n
// plays the n-th configured pattern. The run loop triggers every sound of the
// current step, sleeps one half-beat (30000/BPM milliseconds) and moves on,
// wrapping after the last step. Mode and tempo are re-read at each step
// boundary, so changes never cut a step short.
package sequencer
