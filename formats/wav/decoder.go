// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gowav "github.com/go-audio/wav"

	"github.com/ik5/beatbox/audio"
)

const wavFormatPCM = 1

// Decoder turns a RIFF/WAVE stream into an audio.Asset.
//
// SampleRate is the rate every asset must have. Zero accepts any rate.
type Decoder struct {
	SampleRate int
}

// Load reads the whole file at path into memory and decodes it.
func Load(path string, sampleRate int) (*audio.Asset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAssetLoad, path, err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	asset, err := Decoder{SampleRate: sampleRate}.decode(f, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return asset, nil
}

// Decode decodes r into an asset named "wav". Readers that cannot seek are
// buffered in memory first.
func (d Decoder) Decode(r io.Reader) (*audio.Asset, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: reading wav data: %w", ErrAssetLoad, err)
		}
		rs = bytes.NewReader(data)
	}

	return d.decode(rs, "wav")
}

func (d Decoder) decode(rs io.ReadSeeker, name string) (*audio.Asset, error) {
	if err := checkRIFF(rs); err != nil {
		return nil, fail(err)
	}

	dec := gowav.NewDecoder(rs)
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return nil, fail(fmt.Errorf("%w: %w", ErrUnsupportedWavLayout, err))
		}
		return nil, fail(ErrUnsupportedWavLayout)
	}

	// Header fields are checked before the sample count is trusted.
	if dec.WavAudioFormat != wavFormatPCM || dec.BitDepth != audio.BitsPerSample {
		return nil, fail(fmt.Errorf("%w: format tag %d, %d bits",
			ErrOnlyPCM16bitSupported, dec.WavAudioFormat, dec.BitDepth))
	}
	if dec.NumChans != audio.Channels {
		return nil, fail(fmt.Errorf("%w: %d channels", ErrNotMono, dec.NumChans))
	}
	if d.SampleRate > 0 && int(dec.SampleRate) != d.SampleRate {
		return nil, fail(fmt.Errorf("%w: got %d Hz, want %d Hz",
			ErrSampleRateMismatch, dec.SampleRate, d.SampleRate))
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fail(fmt.Errorf("%w: %w", ErrTruncated, err))
	}

	declared := int(dec.PCMLen()) / 2
	if len(buf.Data) != declared {
		return nil, fail(fmt.Errorf("%w: read %d of %d samples", ErrTruncated, len(buf.Data), declared))
	}
	if declared == 0 {
		return nil, fail(ErrEmpty)
	}

	samples := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = int16(v)
	}

	return audio.NewAsset(name, int(dec.SampleRate), samples), nil
}

// checkRIFF validates the 12 byte RIFF/WAVE preamble and rewinds.
func checkRIFF(rs io.ReadSeeker) error {
	header := make([]byte, 12)
	if _, err := io.ReadFull(rs, header); err != nil {
		return fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}

	if !bytes.HasPrefix(header[:4], []byte("RIFF")) || !bytes.HasPrefix(header[8:12], []byte("WAVE")) {
		return ErrNotWavFile
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind: %w", err)
	}

	return nil
}

func fail(err error) error {
	return fmt.Errorf("%w: %w", ErrAssetLoad, err)
}
