package view

import (
	"github.com/a-h/templ"

	"github.com/msomdec/vecino-digital/internal/domain"
	"github.com/msomdec/vecino-digital/internal/service"
)

// SessionPage renders whichever view the session is on. A view that needs a
// lesson falls back to Home when none is selected.
func SessionPage(b Branding, snap service.Snapshot) templ.Component {
	if snap.Lesson == nil {
		return HomePage(b, snap)
	}
	switch snap.State.CurrentView {
	case domain.ViewLessonDetail:
		return LessonPage(b, snap)
	case domain.ViewPlayer:
		return PlayerPage(b, snap)
	case domain.ViewCompletion:
		return CompletionPage(b, snap)
	default:
		return HomePage(b, snap)
	}
}
