// Package player mirrors a browser <video> element as a domain.MediaPlayer.
//
// The browser reports its clock with every event; commands issued by the
// playback session are queued and shipped back to the page as script.
package player

import (
	"fmt"
	"math"
	"strings"
)

// CommandKind is the kind of instruction sent to the page's video element.
type CommandKind string

const (
	CommandPlay  CommandKind = "play"
	CommandPause CommandKind = "pause"
	CommandSeek  CommandKind = "seek"
)

// Command is one queued instruction for the video element.
type Command struct {
	Kind    CommandKind
	Seconds float64 // seek target, only for CommandSeek
}

// Remote implements domain.MediaPlayer over the last state the browser
// reported. It is not safe for concurrent use.
type Remote struct {
	current  float64
	duration float64
	pending  []Command
}

// NewRemote returns a player with an unknown duration at position 0.
func NewRemote() *Remote {
	return &Remote{}
}

// Sync records the clock the page reported. Non-finite or negative values
// are stored as 0.
func (r *Remote) Sync(currentTime, duration float64) {
	r.current = finite(currentTime)
	r.duration = finite(duration)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func (r *Remote) Play() error {
	r.pending = append(r.pending, Command{Kind: CommandPlay})
	return nil
}

func (r *Remote) Pause() error {
	r.pending = append(r.pending, Command{Kind: CommandPause})
	return nil
}

// Seek moves the mirrored clock and queues the seek. The browser clamps
// targets past the end on its own.
func (r *Remote) Seek(seconds float64) error {
	seconds = finite(seconds)
	r.current = seconds
	r.pending = append(r.pending, Command{Kind: CommandSeek, Seconds: seconds})
	return nil
}

func (r *Remote) CurrentTime() float64 { return r.current }

func (r *Remote) Duration() float64 { return r.duration }

// Drain returns and clears the queued commands.
func (r *Remote) Drain() []Command {
	cmds := r.pending
	r.pending = nil
	return cmds
}

// Script renders commands as JavaScript statements against the element with
// the given id. The statements sit in their own block so the script can be
// executed any number of times on the same page.
func Script(elementID string, cmds []Command) string {
	if len(cmds) == 0 {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "{ const v = document.getElementById(%q); if (v) {", elementID)
	for _, c := range cmds {
		switch c.Kind {
		case CommandPlay:
			sb.WriteString(" v.play().catch(() => {});")
		case CommandPause:
			sb.WriteString(" v.pause();")
		case CommandSeek:
			fmt.Fprintf(&sb, " v.currentTime = %g;", c.Seconds)
		}
	}
	sb.WriteString(" } }")
	return sb.String()
}
