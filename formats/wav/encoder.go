// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/beatbox/audio"
)

// WriteFile writes samples to path as a mono 16-bit PCM WAV at sampleRate.
// The header sizes are filled in by go-audio's encoder on Close.
func WriteFile(path string, sampleRate int, samples []int16) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	enc := gowav.NewEncoder(f, sampleRate, audio.BitsPerSample, audio.Channels, wavFormatPCM)

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: audio.Channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: audio.BitsPerSample,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finish %s: %w", path, err)
	}

	return nil
}
