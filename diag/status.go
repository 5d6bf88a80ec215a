// SPDX-License-Identifier: EPL-2.0

package diag

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ik5/beatbox/sequencer"
	"github.com/ik5/beatbox/timing"
)

const DefaultInterval = time.Second

// Machine is the state shown on the status line.
type Machine interface {
	Mode() sequencer.Mode
	ModeName(m sequencer.Mode) string
	BPM() int
	Volume() int
}

// Snapshot is one status line worth of data.
type Snapshot struct {
	Mode     int          `json:"mode"`
	ModeName string       `json:"mode_name"`
	BPM      int          `json:"bpm"`
	Volume   int          `json:"volume"`
	Audio    timing.Stats `json:"audio"`
	Accel    timing.Stats `json:"accel"`
}

// Take reads m and drains the audio and accelerometer statistics of rec.
func Take(m Machine, rec *timing.Recorder) Snapshot {
	mode := m.Mode()

	return Snapshot{
		Mode:     int(mode),
		ModeName: m.ModeName(mode),
		BPM:      m.BPM(),
		Volume:   m.Volume(),
		Audio:    rec.GetAndReset(timing.Audio),
		Accel:    rec.GetAndReset(timing.Accel),
	}
}

// String formats s as
//
//	M<mode> <bpm>bpm vol:<volume> Audio[min, max] avg a/n Accel[min, max] avg a/n
//
// with intervals in milliseconds.
func (s Snapshot) String() string {
	return fmt.Sprintf("M%d %dbpm vol:%d Audio%s Accel%s",
		s.Mode, s.BPM, s.Volume, statsText(s.Audio), statsText(s.Accel))
}

// statsText formats "[min, max] avg a/n".
func statsText(st timing.Stats) string {
	return fmt.Sprintf("[%.3f, %.3f] avg %.3f/%d", st.MinMs(), st.MaxMs(), st.AvgMs(), st.Count)
}

// Styles colours the status line for a terminal.
type Styles struct {
	Mode  lipgloss.Style
	Value lipgloss.Style
	Label lipgloss.Style
	Idle  lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Mode:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Value: lipgloss.NewStyle().Foreground(lipgloss.Color("86")),
		Label: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Idle:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
	}
}

// Render formats s like String, with the mode name and colours.
func (st Styles) Render(s Snapshot) string {
	mode := st.Mode
	if s.Mode == int(sequencer.ModeNone) {
		mode = st.Idle
	}

	return fmt.Sprintf("%s %s %s %s %s",
		mode.Render(fmt.Sprintf("M%d %-7s", s.Mode, s.ModeName)),
		st.Value.Render(fmt.Sprintf("%dbpm", s.BPM)),
		st.Label.Render("vol:")+st.Value.Render(fmt.Sprintf("%d", s.Volume)),
		st.Label.Render("Audio")+st.Value.Render(statsText(s.Audio)),
		st.Label.Render("Accel")+st.Value.Render(statsText(s.Accel)),
	)
}

// Reporter writes a status line to w every interval.
type Reporter struct {
	w        io.Writer
	machine  Machine
	rec      *timing.Recorder
	interval time.Duration
	styles   *Styles
}

// NewReporter creates a reporter. A nil styles prints plain text.
func NewReporter(w io.Writer, machine Machine, rec *timing.Recorder, interval time.Duration, styles *Styles) *Reporter {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Reporter{w: w, machine: machine, rec: rec, interval: interval, styles: styles}
}

// Report writes one line.
func (r *Reporter) Report() {
	s := Take(r.machine, r.rec)

	line := s.String()
	if r.styles != nil {
		line = r.styles.Render(s)
	}

	fmt.Fprintln(r.w, line)
}

func (r *Reporter) Run(ctx context.Context) {
	tick := time.NewTicker(r.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			r.Report()
		}
	}
}
