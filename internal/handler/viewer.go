package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/vecino-digital/internal/domain"
	"github.com/msomdec/vecino-digital/internal/service"
	"github.com/msomdec/vecino-digital/internal/view"
)

// ViewerHandler serves the session page and its navigation actions.
// Navigation posts are plain forms answered with 303 See Other to "/".
type ViewerHandler struct {
	branding view.Branding
}

// NewViewerHandler creates a new ViewerHandler.
func NewViewerHandler(branding view.Branding) *ViewerHandler {
	return &ViewerHandler{branding: branding}
}

// HandlePage renders the view the caller's session is on.
func (h *ViewerHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	s := SessionFromContext(r.Context())
	if s == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	view.SessionPage(h.branding, s.Snapshot()).Render(r.Context(), w)
}

// HandleHelp renders the help page. It needs no session.
func (h *ViewerHandler) HandleHelp(w http.ResponseWriter, r *http.Request) {
	view.HelpPage(h.branding).Render(r.Context(), w)
}

// HandleSelect opens a lesson's detail view.
// POST /lessons/{id}
func (h *ViewerHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, "select lesson", func(s *service.Session) error {
		return s.SelectLesson(r.PathValue("id"))
	})
}

// HandlePlay opens the player for the selected lesson.
// POST /play
func (h *ViewerHandler) HandlePlay(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, "press play", func(s *service.Session) error {
		return s.PressPlay(r.Context())
	})
}

// HandleNext moves to the next lesson.
// POST /next
func (h *ViewerHandler) HandleNext(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, "next lesson", func(s *service.Session) error {
		return s.NextLesson()
	})
}

// HandlePrev moves to the previous lesson.
// POST /prev
func (h *ViewerHandler) HandlePrev(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, "previous lesson", func(s *service.Session) error {
		return s.PrevLesson()
	})
}

// HandleHome returns to the lesson list.
// POST /home
func (h *ViewerHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	h.navigate(w, r, "back to home", func(s *service.Session) error {
		s.BackToHome()
		return nil
	})
}

// navigate runs op and redirects to the session page. A refused transition
// comes from a stale page, so the viewer is simply shown the current view.
func (h *ViewerHandler) navigate(w http.ResponseWriter, r *http.Request, op string, fn func(*service.Session) error) {
	s := SessionFromContext(r.Context())
	if s == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := fn(s); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidTransition):
			slog.Debug("refused transition", "op", op, "session_id", s.ID, "error", err)
		case errors.Is(err, domain.ErrNotFound):
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		default:
			slog.Error(op, "session_id", s.ID, "error", err)
			http.Error(w, http.StatusText(statusFor(err)), statusFor(err))
			return
		}
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
