//go:build !headless

// SPDX-License-Identifier: EPL-2.0

package main

import (
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// closeMIDI releases the rtmidi driver registered above.
func closeMIDI() {
	gomidi.CloseDriver()
}
