// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrUnknownSound = errors.New("unknown sound")
)
