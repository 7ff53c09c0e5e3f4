package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/vecino-digital/internal/domain"
	"github.com/msomdec/vecino-digital/internal/player"
	"github.com/msomdec/vecino-digital/internal/service"
	"github.com/msomdec/vecino-digital/internal/view"
)

// playerSignals is the clock the page reports with every player event.
type playerSignals struct {
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`
}

// PlayerHandler serves the Datastar endpoints behind the video player.
type PlayerHandler struct{}

// NewPlayerHandler creates a new PlayerHandler.
func NewPlayerHandler() *PlayerHandler {
	return &PlayerHandler{}
}

// HandleStart seeks to the stored position and starts playback.
func (h *PlayerHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "start playback", func(s *service.Session, ev service.PlayerEvent) (service.PlayerResult, error) {
		return s.StartPlayback(r.Context(), ev)
	})
}

// HandleTimeUpdate checkpoints the playback position.
func (h *PlayerHandler) HandleTimeUpdate(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "time update", func(s *service.Session, ev service.PlayerEvent) (service.PlayerResult, error) {
		return s.TimeUpdate(r.Context(), ev)
	})
}

// HandleEnded completes the lesson and sends the page to the completion view.
func (h *PlayerHandler) HandleEnded(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "playback ended", func(s *service.Session, ev service.PlayerEvent) (service.PlayerResult, error) {
		return s.Ended(r.Context(), ev)
	})
}

// HandleToggle flips between play and pause.
func (h *PlayerHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "toggle playback", func(s *service.Session, ev service.PlayerEvent) (service.PlayerResult, error) {
		return s.TogglePlay(ev)
	})
}

// HandleStop rewinds the lesson and leaves the player.
func (h *PlayerHandler) HandleStop(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "stop playback", func(s *service.Session, ev service.PlayerEvent) (service.PlayerResult, error) {
		return s.Stop(r.Context(), ev)
	})
}

// HandleSkip seeks by the number of seconds in the delta query parameter.
func (h *PlayerHandler) HandleSkip(w http.ResponseWriter, r *http.Request) {
	delta, err := strconv.ParseFloat(r.URL.Query().Get("delta"), 64)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	h.handle(w, r, "skip", func(s *service.Session, ev service.PlayerEvent) (service.PlayerResult, error) {
		return s.Skip(ev, delta)
	})
}

// HandleClose leaves the player for the lesson detail view.
func (h *PlayerHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "close player", func(s *service.Session, ev service.PlayerEvent) (service.PlayerResult, error) {
		return s.ClosePlayer(ev)
	})
}

// HandleNext leaves the player for the next lesson.
func (h *PlayerHandler) HandleNext(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "player next", func(s *service.Session, ev service.PlayerEvent) (service.PlayerResult, error) {
		return s.PlayerNext(ev)
	})
}

// HandlePrev leaves the player for the previous lesson.
func (h *PlayerHandler) HandlePrev(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "player previous", func(s *service.Session, ev service.PlayerEvent) (service.PlayerResult, error) {
		return s.PlayerPrev(ev)
	})
}

func (h *PlayerHandler) handle(w http.ResponseWriter, r *http.Request, op string, fn func(*service.Session, service.PlayerEvent) (service.PlayerResult, error)) {
	s := SessionFromContext(r.Context())
	if s == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var signals playerSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	res, err := fn(s, service.PlayerEvent{CurrentTime: signals.CurrentTime, Duration: signals.Duration})
	if err != nil && !errors.Is(err, domain.ErrInvalidTransition) {
		slog.Error(op, "session_id", s.ID, "error", err)
		http.Error(w, http.StatusText(statusFor(err)), statusFor(err))
		return
	}

	sse := datastar.NewSSE(w, r)

	// Once the session has left the player, or the event arrived from a page
	// that is out of date, the page reloads into the current view.
	if err != nil || res.Snapshot.State.CurrentView != domain.ViewPlayer {
		if err != nil {
			slog.Debug("player event outside the player", "op", op, "session_id", s.ID)
		}
		sse.Redirect("/")
		return
	}

	sse.PatchElementTempl(
		view.PlayerControls(res.Snapshot),
		datastar.WithSelectorID(view.PlayerControlsID),
	)
	if script := player.Script(view.VideoElementID, res.Commands); script != "" {
		sse.ExecuteScript(script)
	}
}
