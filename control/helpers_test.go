// SPDX-License-Identifier: EPL-2.0

package control

import (
	"testing"

	"github.com/ik5/beatbox/internal/audiotest"
	"github.com/ik5/beatbox/sequencer"
)

// newTarget returns a sequencer in rock mode that queues into q. Its run loop
// is never started.
func newTarget(t *testing.T) (*sequencer.Sequencer, *audiotest.Queue) {
	t.Helper()

	q := &audiotest.Queue{}
	s, err := sequencer.New(q, audiotest.Kit(), sequencer.Options{Mode: sequencer.ModeRock})
	if err != nil {
		t.Fatalf("sequencer.New() error = %v", err)
	}

	return s, q
}
