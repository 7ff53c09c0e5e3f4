package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/msomdec/vecino-digital/internal/catalog"
	"github.com/msomdec/vecino-digital/internal/domain"
	"github.com/msomdec/vecino-digital/internal/player"
)

// Session is one viewer's explicitly owned context: its navigation state,
// the mirror of its browser's video element and the open playback session.
// Every operation holds the session lock for its whole duration, so events
// from the same viewer are handled one at a time.
type Session struct {
	ID string

	mu       sync.Mutex
	catalog  *catalog.Catalog
	progress *ProgressStore
	nav      *Navigator
	media    *player.Remote
	playback *PlaybackSession
	lastSeen time.Time
}

func newSession(id string, c *catalog.Catalog, progress *ProgressStore, now time.Time) *Session {
	return &Session{
		ID:       id,
		catalog:  c,
		progress: progress,
		nav:      NewNavigator(c, progress),
		media:    player.NewRemote(),
		lastSeen: now,
	}
}

// LessonCard is one row of the home screen lesson list.
type LessonCard struct {
	Lesson   domain.Lesson
	Status   domain.LessonStatus
	Featured bool
}

// Snapshot is everything the view layer needs to render a session.
type Snapshot struct {
	State    domain.SessionState
	Lesson   *domain.Lesson // nil when nothing is selected
	Progress domain.ProgressRecord
	Lessons  []LessonCard
	Metrics  domain.Metrics
	HasNext  bool
	HasPrev  bool
	Playing  bool
	Percent  float64
	Records  map[string]domain.ProgressRecord
}

// Snapshot returns the current state of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	metrics := s.nav.Metrics()
	snap := Snapshot{
		State:   s.nav.State(),
		Metrics: metrics,
		HasNext: s.nav.HasNext(),
		HasPrev: s.nav.HasPrev(),
		Records: s.progress.Records(),
	}

	for i, l := range s.catalog.Lessons() {
		status := domain.StatusPending
		if r, ok := snap.Records[l.ID]; ok {
			status = r.Status
		}
		snap.Lessons = append(snap.Lessons, LessonCard{
			Lesson:   l,
			Status:   status,
			Featured: i == 0 && metrics.Completed == 0,
		})
	}

	if lesson, ok := s.nav.CurrentLesson(); ok {
		snap.Lesson = &lesson
		snap.Progress, _ = s.nav.CurrentProgress()
	}
	if s.playback != nil && !s.playback.Closed() {
		snap.Playing = s.playback.Playing()
		snap.Percent = s.playback.Percent()
	}
	return snap
}

// SelectLesson handles a lesson card click.
func (s *Session) SelectLesson(id string) error {
	return s.do(func() error {
		return s.nav.SelectLesson(id)
	})
}

// PressPlay opens the player for the selected lesson.
func (s *Session) PressPlay(ctx context.Context) error {
	return s.do(func() error {
		s.closePlaybackLocked()
		if err := s.nav.PressPlay(ctx); err != nil {
			return err
		}
		s.media = player.NewRemote()
		pb, err := NewPlaybackSession(s.nav, s.media)
		if err != nil {
			return err
		}
		s.playback = pb
		return nil
	})
}

// NextLesson moves to the next lesson, or Home after the last one.
func (s *Session) NextLesson() error {
	return s.do(func() error {
		s.closePlaybackLocked()
		return s.nav.NextLesson()
	})
}

// PrevLesson moves to the previous lesson.
func (s *Session) PrevLesson() error {
	return s.do(func() error {
		s.closePlaybackLocked()
		return s.nav.PrevLesson()
	})
}

// BackToHome returns to the lesson list.
func (s *Session) BackToHome() {
	s.do(func() error {
		s.closePlaybackLocked()
		s.nav.BackToHome()
		return nil
	})
}

// PlayerEvent carries the browser clock reported with a player event.
type PlayerEvent struct {
	CurrentTime float64
	Duration    float64
}

// PlayerResult is the outcome of a player event: the state to render and
// the commands to send back to the video element.
type PlayerResult struct {
	Snapshot Snapshot
	Commands []player.Command
}

// StartPlayback resumes the video at the stored position.
func (s *Session) StartPlayback(ctx context.Context, ev PlayerEvent) (PlayerResult, error) {
	return s.player(ev, func(pb *PlaybackSession) error { return pb.Start(ctx) })
}

// TimeUpdate checkpoints the reported position.
func (s *Session) TimeUpdate(ctx context.Context, ev PlayerEvent) (PlayerResult, error) {
	return s.player(ev, func(pb *PlaybackSession) error {
		pb.OnTimeUpdate(ctx)
		return nil
	})
}

// Ended completes the lesson being played.
func (s *Session) Ended(ctx context.Context, ev PlayerEvent) (PlayerResult, error) {
	return s.player(ev, func(pb *PlaybackSession) error { return pb.OnEnded(ctx) })
}

// TogglePlay flips play/pause.
func (s *Session) TogglePlay(ev PlayerEvent) (PlayerResult, error) {
	return s.player(ev, func(pb *PlaybackSession) error { return pb.TogglePlay() })
}

// Skip seeks relative to the reported position.
func (s *Session) Skip(ev PlayerEvent, delta float64) (PlayerResult, error) {
	return s.player(ev, func(pb *PlaybackSession) error { return pb.Skip(delta) })
}

// Stop rewinds the lesson to 0 and leaves the player.
func (s *Session) Stop(ctx context.Context, ev PlayerEvent) (PlayerResult, error) {
	return s.player(ev, func(pb *PlaybackSession) error { return pb.Stop(ctx) })
}

// ClosePlayer leaves the player for the lesson detail screen.
func (s *Session) ClosePlayer(ev PlayerEvent) (PlayerResult, error) {
	return s.player(ev, func(pb *PlaybackSession) error { return pb.Close() })
}

// PlayerNext leaves the player for the next lesson.
func (s *Session) PlayerNext(ev PlayerEvent) (PlayerResult, error) {
	return s.player(ev, func(pb *PlaybackSession) error { return pb.Next() })
}

// PlayerPrev leaves the player for the previous lesson.
func (s *Session) PlayerPrev(ev PlayerEvent) (PlayerResult, error) {
	return s.player(ev, func(pb *PlaybackSession) error { return pb.Prev() })
}

func (s *Session) player(ev PlayerEvent, fn func(*PlaybackSession) error) (PlayerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.playback == nil {
		return PlayerResult{Snapshot: s.snapshotLocked()}, fmt.Errorf("player event outside the player: %w", domain.ErrInvalidTransition)
	}
	s.media.Sync(ev.CurrentTime, ev.Duration)
	err := fn(s.playback)
	res := PlayerResult{Snapshot: s.snapshotLocked(), Commands: s.media.Drain()}
	if s.playback.Closed() {
		s.playback = nil
	}
	return res, err
}

func (s *Session) do(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// closePlaybackLocked drops any open playback so it stops checkpointing.
func (s *Session) closePlaybackLocked() {
	if s.playback == nil {
		return
	}
	s.playback.closed = true
	s.playback = nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
