// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestSaturateInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input int32
		want  int16
	}{
		{
			name:  "zero",
			input: 0,
			want:  0,
		},
		{
			name:  "in range positive",
			input: 1234,
			want:  1234,
		},
		{
			name:  "in range negative",
			input: -1234,
			want:  -1234,
		},
		{
			name:  "exact max",
			input: math.MaxInt16,
			want:  math.MaxInt16,
		},
		{
			name:  "exact min",
			input: math.MinInt16,
			want:  math.MinInt16,
		},
		{
			name:  "one over max",
			input: math.MaxInt16 + 1,
			want:  math.MaxInt16, // would wrap to -32768 without saturation
		},
		{
			name:  "one under min",
			input: math.MinInt16 - 1,
			want:  math.MinInt16,
		},
		{
			name:  "two full scale voices",
			input: 2 * math.MaxInt16,
			want:  math.MaxInt16,
		},
		{
			name:  "way under min",
			input: -10 * math.MaxInt16,
			want:  math.MinInt16,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := SaturateInt16(tt.input); got != tt.want {
				t.Errorf("SaturateInt16(%d) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestScalePercent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		sample  int16
		percent int32
		want    int32
	}{
		{name: "unity keeps sample", sample: 12345, percent: 100, want: 12345},
		{name: "unity keeps min", sample: math.MinInt16, percent: 100, want: math.MinInt16},
		{name: "zero mutes", sample: math.MaxInt16, percent: 0, want: 0},
		{name: "half even", sample: 1000, percent: 50, want: 500},
		{name: "half odd truncates", sample: 3, percent: 50, want: 1},
		{name: "half odd negative truncates toward zero", sample: -3, percent: 50, want: -1},
		{name: "half of max", sample: math.MaxInt16, percent: 50, want: 16383},
		{name: "half of min", sample: math.MinInt16, percent: 50, want: -16384},
		{name: "small value at low volume", sample: 99, percent: 1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ScalePercent(tt.sample, tt.percent); got != tt.want {
				t.Errorf("ScalePercent(%d, %d) = %d, want %d", tt.sample, tt.percent, got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		v, lo, hi, want int
	}{
		{v: 50, lo: 0, hi: 100, want: 50},
		{v: -1, lo: 0, hi: 100, want: 0},
		{v: 101, lo: 0, hi: 100, want: 100},
		{v: 40, lo: 40, hi: 300, want: 40},
		{v: 300, lo: 40, hi: 300, want: 300},
	}

	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%d, %d, %d) = %d, want %d", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}
