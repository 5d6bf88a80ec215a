// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	// ErrAssetLoad is wrapped by every failure of Load and Decoder.Decode.
	ErrAssetLoad = errors.New("asset load failed")

	ErrNotWavFile            = errors.New("not a WAV file")
	ErrUnsupportedWavLayout  = errors.New("unsupported WAV layout")
	ErrOnlyPCM16bitSupported = errors.New("only PCM 16-bit supported")
	ErrNotMono               = errors.New("only mono supported")
	ErrSampleRateMismatch    = errors.New("unexpected sample rate")
	ErrTruncated             = errors.New("truncated sample data")
	ErrEmpty                 = errors.New("no sample data")
)
