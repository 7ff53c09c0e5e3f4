package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/msomdec/vecino-digital/internal/domain"
)

// PlaybackSession coordinates the media player with progress and
// navigation while one lesson is open in the player.
//
// Once the session is closed (by Close, Stop, Next, Prev or the end of the
// video) it ignores further time updates, so a late notification cannot
// overwrite the position of a lesson the viewer already left.
type PlaybackSession struct {
	nav      *Navigator
	player   domain.MediaPlayer
	lessonID string
	playing  bool
	started  bool
	ended    bool
	closed   bool
	percent  float64
}

// NewPlaybackSession opens a playback session for the lesson the navigator
// currently shows in the player.
func NewPlaybackSession(nav *Navigator, player domain.MediaPlayer) (*PlaybackSession, error) {
	state := nav.State()
	if state.CurrentView != domain.ViewPlayer || !state.HasSelection() {
		return nil, fmt.Errorf("open playback from %s: %w", state.CurrentView, domain.ErrInvalidTransition)
	}
	return &PlaybackSession{nav: nav, player: player, lessonID: state.SelectedLessonID}, nil
}

// Playing reports whether the last command issued was play.
func (p *PlaybackSession) Playing() bool { return p.playing }

// Closed reports whether the session stopped accepting events.
func (p *PlaybackSession) Closed() bool { return p.closed }

// Percent returns the progress computed at the last time update.
func (p *PlaybackSession) Percent() float64 { return p.percent }

// Start resumes from the stored position and begins playback.
func (p *PlaybackSession) Start(ctx context.Context) error {
	if p.closed {
		return fmt.Errorf("start playback: %w", domain.ErrInvalidTransition)
	}
	if err := p.resume(); err != nil {
		return err
	}
	if err := p.player.Play(); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	p.playing = true
	return nil
}

// resume seeks to the stored position the first time the player is driven.
// Whichever of Start, TogglePlay or Skip arrives first performs it.
func (p *PlaybackSession) resume() error {
	if p.started {
		return nil
	}
	record := p.nav.progress.Get(p.lessonID)
	if err := p.player.Seek(record.LastPosition); err != nil {
		return fmt.Errorf("seek to resume position: %w", err)
	}
	p.started = true
	p.percent = ProgressPercent(record.LastPosition, p.player.Duration())
	return nil
}

// OnTimeUpdate recomputes the progress percentage and checkpoints the
// current position. It returns the new percentage.
func (p *PlaybackSession) OnTimeUpdate(ctx context.Context) float64 {
	if p.closed || !p.active() {
		return p.percent
	}
	current := p.player.CurrentTime()
	p.percent = ProgressPercent(current, p.player.Duration())
	if err := p.nav.CheckpointPosition(ctx, current); err != nil {
		slog.Warn("checkpoint position", "lesson_id", p.lessonID, "error", err)
	}
	return p.percent
}

// OnEnded completes the lesson. Repeated end notifications for the same
// playback are ignored.
func (p *PlaybackSession) OnEnded(ctx context.Context) error {
	if p.ended || p.closed {
		return nil
	}
	if !p.active() {
		p.closed = true
		return nil
	}
	p.ended = true
	p.closed = true
	p.playing = false
	p.percent = 100
	return p.nav.PlaybackEnded(ctx)
}

// TogglePlay flips between playing and paused.
func (p *PlaybackSession) TogglePlay() error {
	if p.closed {
		return fmt.Errorf("toggle play: %w", domain.ErrInvalidTransition)
	}
	if p.playing {
		if err := p.player.Pause(); err != nil {
			return fmt.Errorf("pause: %w", err)
		}
	} else {
		if err := p.resume(); err != nil {
			return err
		}
		if err := p.player.Play(); err != nil {
			return fmt.Errorf("play: %w", err)
		}
	}
	p.playing = !p.playing
	return nil
}

// Skip moves the playhead by delta seconds. Targets before the start are
// floored at 0; the player bounds targets past the end.
func (p *PlaybackSession) Skip(delta float64) error {
	if p.closed {
		return fmt.Errorf("skip: %w", domain.ErrInvalidTransition)
	}
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return fmt.Errorf("%w: skip by %v", domain.ErrInvalidInput, delta)
	}
	if err := p.resume(); err != nil {
		return err
	}
	target := p.player.CurrentTime() + delta
	if target < 0 {
		target = 0
	}
	if err := p.player.Seek(target); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	p.percent = ProgressPercent(p.player.CurrentTime(), p.player.Duration())
	return nil
}

// Stop pauses, rewinds to the start, persists position 0 and leaves the
// player.
func (p *PlaybackSession) Stop(ctx context.Context) error {
	if p.closed {
		return fmt.Errorf("stop: %w", domain.ErrInvalidTransition)
	}
	if err := p.player.Pause(); err != nil {
		return fmt.Errorf("pause: %w", err)
	}
	if err := p.player.Seek(0); err != nil {
		return fmt.Errorf("rewind: %w", err)
	}
	p.playing = false
	p.percent = 0
	p.nav.updateProgress(ctx, p.lessonID, domain.WithPosition(0))
	return p.Close()
}

// Close leaves the player without touching progress beyond what the last
// checkpoint already stored.
func (p *PlaybackSession) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if p.playing {
		if err := p.player.Pause(); err != nil {
			return fmt.Errorf("pause: %w", err)
		}
		p.playing = false
	}
	if !p.active() {
		return nil
	}
	return p.nav.ClosePlayer()
}

// Next leaves the player for the next lesson's detail screen.
func (p *PlaybackSession) Next() error {
	if err := p.Close(); err != nil {
		return err
	}
	return p.nav.NextLesson()
}

// Prev leaves the player for the previous lesson's detail screen.
func (p *PlaybackSession) Prev() error {
	if err := p.Close(); err != nil {
		return err
	}
	return p.nav.PrevLesson()
}

// active reports whether the navigator still shows this lesson in the player.
func (p *PlaybackSession) active() bool {
	state := p.nav.State()
	return state.CurrentView == domain.ViewPlayer && state.SelectedLessonID == p.lessonID
}

// ProgressPercent returns current/duration as a percentage in [0, 100].
// An unknown, zero or non-finite duration yields 0.
func ProgressPercent(current, duration float64) float64 {
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return 0
	}
	if math.IsNaN(current) || current <= 0 {
		return 0
	}
	pct := current / duration * 100
	if pct > 100 {
		return 100
	}
	return pct
}
