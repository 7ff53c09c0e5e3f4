package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/msomdec/vecino-digital/internal/catalog"
	"github.com/msomdec/vecino-digital/internal/domain"
)

// Navigator is the view state machine of one viewer session. It owns the
// session's SessionState and is the only place that changes it.
//
// Navigator is not safe for concurrent use; Session serializes access.
type Navigator struct {
	catalog  *catalog.Catalog
	progress *ProgressStore
	state    domain.SessionState
}

// NewNavigator creates a Navigator on the Home view with nothing selected.
func NewNavigator(c *catalog.Catalog, progress *ProgressStore) *Navigator {
	return &Navigator{
		catalog:  c,
		progress: progress,
		state:    domain.SessionState{CurrentView: domain.ViewHome},
	}
}

// State returns the current session state.
func (n *Navigator) State() domain.SessionState {
	return n.state
}

// CurrentLesson returns the selected lesson, if any.
func (n *Navigator) CurrentLesson() (domain.Lesson, bool) {
	if !n.state.HasSelection() {
		return domain.Lesson{}, false
	}
	return n.catalog.Get(n.state.SelectedLessonID)
}

// CurrentProgress returns the progress record of the selected lesson.
func (n *Navigator) CurrentProgress() (domain.ProgressRecord, bool) {
	if !n.state.HasSelection() {
		return domain.ProgressRecord{}, false
	}
	return n.progress.Get(n.state.SelectedLessonID), true
}

// Metrics returns the completed/total summary for the course.
func (n *Navigator) Metrics() domain.Metrics {
	return ComputeMetrics(n.progress.CompletedCount(), n.catalog.Len())
}

// ComputeMetrics builds the course summary, rounding the percentage and
// returning 0 for an empty catalog.
func ComputeMetrics(completed, total int) domain.Metrics {
	m := domain.Metrics{Completed: completed, Total: total}
	if total > 0 {
		m.Percent = int(math.Round(float64(completed) / float64(total) * 100))
	}
	return m
}

// HasNext reports whether the selected lesson has a successor.
func (n *Navigator) HasNext() bool {
	_, ok := n.catalog.Next(n.state.SelectedLessonID)
	return ok
}

// HasPrev reports whether the selected lesson has a predecessor.
func (n *Navigator) HasPrev() bool {
	_, ok := n.catalog.Prev(n.state.SelectedLessonID)
	return ok
}

// SelectLesson selects a catalog lesson and shows its detail screen.
// Unknown ids leave the state untouched.
func (n *Navigator) SelectLesson(id string) error {
	if !n.catalog.Exists(id) {
		return fmt.Errorf("select lesson %q: %w", id, domain.ErrNotFound)
	}
	n.state = domain.SessionState{CurrentView: domain.ViewLessonDetail, SelectedLessonID: id}
	return nil
}

// PressPlay marks the selected lesson as in progress, unless it is already
// completed, and opens the player.
func (n *Navigator) PressPlay(ctx context.Context) error {
	id, err := n.requireSelection("press play")
	if err != nil {
		return err
	}
	notCompleted := func(r domain.ProgressRecord) bool { return r.Status != domain.StatusCompleted }
	if _, _, err := n.progress.UpdateIf(ctx, id, notCompleted, domain.WithStatus(domain.StatusInProgress)); err != nil {
		slog.Error("persist progress", "lesson_id", id, "error", err)
	}
	n.state.CurrentView = domain.ViewPlayer
	return nil
}

// PlaybackEnded completes the selected lesson and shows the completion screen.
func (n *Navigator) PlaybackEnded(ctx context.Context) error {
	id, err := n.requireSelection("playback ended")
	if err != nil {
		return err
	}
	status := domain.StatusCompleted
	zero := 0.0
	n.updateProgress(ctx, id, domain.ProgressUpdate{Status: &status, LastPosition: &zero})
	n.state.CurrentView = domain.ViewCompletion
	return nil
}

// NextLesson selects the following lesson by order, or returns Home when
// the selected lesson is the last one.
func (n *Navigator) NextLesson() error {
	id, err := n.requireSelection("next lesson")
	if err != nil {
		return err
	}
	next, ok := n.catalog.Next(id)
	if !ok {
		n.state = domain.SessionState{CurrentView: domain.ViewHome}
		return nil
	}
	n.state = domain.SessionState{CurrentView: domain.ViewLessonDetail, SelectedLessonID: next.ID}
	return nil
}

// PrevLesson selects the preceding lesson by order. On the first lesson it
// is a no-op.
func (n *Navigator) PrevLesson() error {
	id, err := n.requireSelection("previous lesson")
	if err != nil {
		return err
	}
	prev, ok := n.catalog.Prev(id)
	if !ok {
		return nil
	}
	n.state = domain.SessionState{CurrentView: domain.ViewLessonDetail, SelectedLessonID: prev.ID}
	return nil
}

// BackToHome clears the selection and shows Home.
func (n *Navigator) BackToHome() {
	n.state = domain.SessionState{CurrentView: domain.ViewHome}
}

// ClosePlayer leaves the player for the selected lesson's detail screen.
func (n *Navigator) ClosePlayer() error {
	if n.state.CurrentView != domain.ViewPlayer {
		return fmt.Errorf("close player from %s: %w", n.state.CurrentView, domain.ErrInvalidTransition)
	}
	if _, err := n.requireSelection("close player"); err != nil {
		return err
	}
	n.state.CurrentView = domain.ViewLessonDetail
	return nil
}

// CheckpointPosition records the resume position of the selected lesson
// without touching its status.
func (n *Navigator) CheckpointPosition(ctx context.Context, seconds float64) error {
	id, err := n.requireSelection("checkpoint position")
	if err != nil {
		return err
	}
	n.updateProgress(ctx, id, domain.WithPosition(seconds))
	return nil
}

func (n *Navigator) requireSelection(op string) (string, error) {
	id := n.state.SelectedLessonID
	if id == "" {
		return "", fmt.Errorf("%s: no lesson selected: %w", op, domain.ErrInvalidTransition)
	}
	if !n.catalog.Exists(id) {
		return "", fmt.Errorf("%s: lesson %q: %w", op, id, domain.ErrNotFound)
	}
	return id, nil
}

// updateProgress writes through the store. Storage failures do not block
// navigation; the in-memory record is already updated.
func (n *Navigator) updateProgress(ctx context.Context, id string, u domain.ProgressUpdate) {
	if _, err := n.progress.Update(ctx, id, u); err != nil {
		slog.Error("persist progress", "lesson_id", id, "error", err)
	}
}
