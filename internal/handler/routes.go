package handler

import (
	"net/http"

	"github.com/msomdec/vecino-digital/internal/service"
	"github.com/msomdec/vecino-digital/internal/view"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, sessions *service.SessionManager, tokens *service.SessionTokens, limiter *service.TokenBucket, branding view.Branding, cookieSecure bool) {
	binder := NewSessionBinder(sessions, tokens, limiter, cookieSecure)
	viewer := NewViewerHandler(branding)
	playerHandler := NewPlayerHandler()

	withSession := func(fn http.HandlerFunc) http.Handler {
		return binder.WithSession(fn)
	}

	mux.HandleFunc("GET /healthz", HandleHealthz)
	mux.HandleFunc("GET /help", viewer.HandleHelp)

	mux.Handle("GET /{$}", withSession(viewer.HandlePage))
	mux.Handle("GET /api/state", withSession(HandleState))

	mux.Handle("POST /lessons/{id}", withSession(viewer.HandleSelect))
	mux.Handle("POST /play", withSession(viewer.HandlePlay))
	mux.Handle("POST /next", withSession(viewer.HandleNext))
	mux.Handle("POST /prev", withSession(viewer.HandlePrev))
	mux.Handle("POST /home", withSession(viewer.HandleHome))

	mux.Handle("POST /player/start", withSession(playerHandler.HandleStart))
	mux.Handle("POST /player/timeupdate", withSession(playerHandler.HandleTimeUpdate))
	mux.Handle("POST /player/ended", withSession(playerHandler.HandleEnded))
	mux.Handle("POST /player/toggle", withSession(playerHandler.HandleToggle))
	mux.Handle("POST /player/stop", withSession(playerHandler.HandleStop))
	mux.Handle("POST /player/skip", withSession(playerHandler.HandleSkip))
	mux.Handle("POST /player/close", withSession(playerHandler.HandleClose))
	mux.Handle("POST /player/next", withSession(playerHandler.HandleNext))
	mux.Handle("POST /player/prev", withSession(playerHandler.HandlePrev))
}
