// SPDX-License-Identifier: EPL-2.0

// Package diag reports what the drum machine is doing: a status line printed
// once per interval and a small HTTP API for status, timing statistics and
// remote control.
//
// Timing statistics are read-and-clear. Every consumer (the status line and
// GET /api/stats/:kind) sees only the events since the previous read by any
// consumer.
package diag
