// SPDX-License-Identifier: EPL-2.0

package timing

import "errors"

var (
	ErrUnknownKind = errors.New("unknown event kind")
)
