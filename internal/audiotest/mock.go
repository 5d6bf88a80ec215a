// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds fixtures shared by the package tests.
package audiotest

import (
	"bytes"
	"encoding/binary"
	"math"
	"sync"

	"github.com/ik5/beatbox/audio"
)

// WAVSpec describes a synthetic WAV file. Zero fields take the machine's
// native format (PCM, 16-bit, mono, 44100 Hz).
type WAVSpec struct {
	FormatTag     uint16
	Channels      uint16
	BitsPerSample uint16
	SampleRate    uint32
	Samples       []int16
	// DataSize overrides the declared data chunk size, to build truncated files.
	DataSize *uint32
	// ExtraChunk is written between "fmt " and "data" when set.
	ExtraChunk string
}

// WAV encodes spec into a byte slice.
func WAV(spec WAVSpec) []byte {
	if spec.FormatTag == 0 {
		spec.FormatTag = 1
	}
	if spec.Channels == 0 {
		spec.Channels = 1
	}
	if spec.BitsPerSample == 0 {
		spec.BitsPerSample = 16
	}
	if spec.SampleRate == 0 {
		spec.SampleRate = audio.SampleRate
	}

	dataSize := uint32(len(spec.Samples) * 2)
	if spec.DataSize != nil {
		dataSize = *spec.DataSize
	}

	extra := 0
	if spec.ExtraChunk != "" {
		extra = 8 + 4
	}

	blockAlign := spec.Channels * spec.BitsPerSample / 8
	buf := new(bytes.Buffer)

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+extra)+dataSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, spec.FormatTag)
	binary.Write(buf, binary.LittleEndian, spec.Channels)
	binary.Write(buf, binary.LittleEndian, spec.SampleRate)
	binary.Write(buf, binary.LittleEndian, spec.SampleRate*uint32(blockAlign))
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, spec.BitsPerSample)

	if spec.ExtraChunk != "" {
		buf.WriteString(spec.ExtraChunk)
		binary.Write(buf, binary.LittleEndian, uint32(4))
		buf.Write([]byte{0, 0, 0, 0})
	}

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)
	for _, s := range spec.Samples {
		binary.Write(buf, binary.LittleEndian, s)
	}

	return buf.Bytes()
}

// ConstantAsset returns an asset of n samples all equal to value.
func ConstantAsset(name string, n int, value int16) *audio.Asset {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = value
	}

	return audio.NewAsset(name, audio.SampleRate, samples)
}

// RampAsset returns an asset whose sample i is start+i*step.
func RampAsset(name string, n int, start, step int16) *audio.Asset {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = start + int16(i)*step
	}

	return audio.NewAsset(name, audio.SampleRate, samples)
}

// SineAsset returns n samples of a full scale sine wave.
func SineAsset(name string, n int, frequency float64) *audio.Asset {
	samples := make([]int16, n)
	for i := range samples {
		t := float64(i) / float64(audio.SampleRate)
		samples[i] = int16(math.Sin(2*math.Pi*frequency*t) * math.MaxInt16)
	}

	return audio.NewAsset(name, audio.SampleRate, samples)
}

// Kit returns a registry holding one short asset per sound.
func Kit() *audio.Registry {
	kit := audio.NewRegistry()
	kit.Register(audio.BaseDrum, ConstantAsset("bass", 64, 1000))
	kit.Register(audio.HiHat, ConstantAsset("hihat", 32, 200))
	kit.Register(audio.Snare, ConstantAsset("snare", 48, -500))

	return kit
}

// Queue records every asset handed to QueueSound. Err, when set, is returned
// from QueueSound after recording.
type Queue struct {
	mu     sync.Mutex
	queued []*audio.Asset
	volume int
	Err    error
}

func (q *Queue) QueueSound(a *audio.Asset) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.queued = append(q.queued, a)
	return q.Err
}

func (q *Queue) SetVolume(v int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.volume = min(max(v, 0), 100)
}

func (q *Queue) Volume() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.volume
}

// Queued returns a copy of the recorded assets.
func (q *Queue) Queued() []*audio.Asset {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*audio.Asset, len(q.queued))
	copy(out, q.queued)
	return out
}

// Names returns the names of the recorded assets in order.
func (q *Queue) Names() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	names := make([]string, len(q.queued))
	for i, a := range q.queued {
		names[i] = a.Name()
	}
	return names
}

// Reset forgets every recorded asset.
func (q *Queue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.queued = nil
}
