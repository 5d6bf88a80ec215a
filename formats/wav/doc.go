// SPDX-License-Identifier: EPL-2.0

// Package wav loads drum samples from WAV files and writes rendered audio
// back out.
//
// Parsing is done with github.com/go-audio/wav. Only one layout is accepted:
// PCM (format tag 1), 16 bits per sample, one channel, and, when the caller
// asks for it, a fixed sample rate. Extra chunks between "fmt " and "data"
// are skipped.
//
// # Loading Assets
//
//	hiHat, err := wav.Load("wave-files/hi-hat.wav", audio.SampleRate)
//	if err != nil {
//	    // errors.Is(err, wav.ErrAssetLoad) is always true here
//	}
//
// The whole data chunk is decoded into memory. There is no streaming.
//
// # Errors
//
// Every failure wraps ErrAssetLoad together with a more precise cause:
//   - ErrNotWavFile: missing RIFF/WAVE preamble
//   - ErrUnsupportedWavLayout: chunks could not be parsed
//   - ErrOnlyPCM16bitSupported: compressed or non 16-bit data
//   - ErrNotMono: more than one channel
//   - ErrSampleRateMismatch: rate differs from Decoder.SampleRate
//   - ErrTruncated: fewer samples than the data chunk declares
//   - ErrEmpty: a data chunk with no samples
//
// # Writing WAV Files
//
//	err := wav.WriteWAV16(file, 44100, samples)
//
// WriteWAV16 works on any io.Writer and writes the canonical 44 byte header
// followed by little-endian samples.
package wav
