// SPDX-License-Identifier: EPL-2.0

package control

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/ik5/beatbox/audio"
	"github.com/ik5/beatbox/sequencer"
)

const helpText = `Accepted commands:
mode <n|name|null>  -- set or read the beat mode (0 none, 1 rock, 2 custom)
volume <n|null>     -- set or read the volume, 0 to 100
tempo <n|null>      -- set or read the tempo, 40 to 300 bpm
play <n|name>       -- play one sound (0 bass, 1 hi-hat, 2 snare)
stop                -- shut the drum machine down
<enter>             -- repeat the last command
`

// Commands interprets the text protocol: one command per line, the reply is
// the value actually applied. Empty input repeats the previous command.
type Commands struct {
	target Target
	log    *slog.Logger

	mu   sync.Mutex
	last string
}

func NewCommands(target Target, log *slog.Logger) *Commands {
	if log == nil {
		log = slog.Default()
	}

	return &Commands{target: target, log: log.With("component", "commands")}
}

// Handle runs one command and returns the reply text. stop is true for the
// "stop" command.
func (c *Commands) Handle(line string) (reply string, stop bool) {
	line = strings.TrimRight(line, "\r\n")
	line = strings.TrimSpace(line)

	c.mu.Lock()
	if line == "" {
		line = c.last
	} else {
		c.last = line
	}
	c.mu.Unlock()

	reply, stop, err := c.exec(line)
	if err != nil {
		c.log.Debug("command rejected", "command", line, "error", err)
		return "error: " + err.Error(), false
	}

	return reply, stop
}

func (c *Commands) exec(line string) (string, bool, error) {
	verb, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(verb) {
	case "":
		return "", false, fmt.Errorf("%w: empty", ErrUnknownCommand)
	case "help", "?":
		return helpText, false, nil
	case "stop":
		return "stop", true, nil
	case "mode":
		return c.mode(arg)
	case "volume":
		return c.number(arg, c.target.SetVolume, c.target.Volume)
	case "tempo":
		return c.number(arg, c.target.SetBPM, c.target.BPM)
	case "play":
		return c.play(arg)
	}

	return "", false, fmt.Errorf("%w: %q", ErrUnknownCommand, verb)
}

func (c *Commands) mode(arg string) (string, bool, error) {
	if arg == "null" {
		return strconv.Itoa(int(c.target.Mode())), false, nil
	}

	m, err := c.target.ParseMode(arg)
	if err != nil {
		return "", false, err
	}
	if err := c.target.SetMode(m); err != nil {
		return "", false, err
	}

	return strconv.Itoa(int(m)), false, nil
}

func (c *Commands) number(arg string, set func(int), get func() int) (string, bool, error) {
	if arg != "null" {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return "", false, fmt.Errorf("%w: %q is not a number", ErrBadArgument, arg)
		}
		set(n)
	}

	return strconv.Itoa(get()), false, nil
}

func (c *Commands) play(arg string) (string, bool, error) {
	sound, err := audio.ParseSound(arg)
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrBadArgument, err)
	}

	if err := c.target.Play(sound); err != nil {
		return "", false, err
	}

	return strconv.Itoa(int(sound)), false, nil
}

var _ Target = (*sequencer.Sequencer)(nil)
