package domain

// View is the screen a session is currently showing.
type View string

const (
	ViewHome         View = "home"
	ViewLessonDetail View = "lesson"
	ViewPlayer       View = "player"
	ViewCompletion   View = "end"
)

// SessionState is the navigation state of one viewer session. It is not
// persisted; a new session always starts on Home with nothing selected.
type SessionState struct {
	CurrentView      View
	SelectedLessonID string // empty when nothing is selected
}

// HasSelection reports whether a lesson is selected.
func (s SessionState) HasSelection() bool {
	return s.SelectedLessonID != ""
}

// Metrics is the course-level completion summary shown on the home screen.
type Metrics struct {
	Completed int
	Total     int
	Percent   int // rounded, 0 when the catalog is empty
}
