// SPDX-License-Identifier: EPL-2.0

package config

import "errors"

var (
	ErrRead    = errors.New("cannot read config")
	ErrParse   = errors.New("cannot parse config")
	ErrInvalid = errors.New("invalid config")
)
