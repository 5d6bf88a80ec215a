// SPDX-License-Identifier: EPL-2.0

package diag

import "errors"

var ErrMissingValue = errors.New(`body must be {"value": <integer>}`)
