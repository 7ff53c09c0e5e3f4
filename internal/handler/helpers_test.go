package handler_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/msomdec/vecino-digital/internal/catalog"
	"github.com/msomdec/vecino-digital/internal/handler"
	"github.com/msomdec/vecino-digital/internal/repository/memory"
	"github.com/msomdec/vecino-digital/internal/service"
	"github.com/msomdec/vecino-digital/internal/view"
)

const testSecret = "test-secret-that-is-at-least-32-characters-long"

type testServer struct {
	*httptest.Server
	sessions *service.SessionManager
	kv       *memory.Store
	client   *http.Client
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithLimiter(t, nil)
}

func newTestServerWithLimiter(t *testing.T, limiter *service.TokenBucket) *testServer {
	t.Helper()

	kv := memory.New()
	progress := service.LoadProgressStore(context.Background(), kv, service.DefaultProgressKey)
	sessions := service.NewSessionManager(catalog.Default(), progress, time.Hour)
	tokens := service.NewSessionTokens(testSecret, 0)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, sessions, tokens, limiter, view.Branding{AppName: "Vecino Digital", Municipality: "Municipalidad"}, false)

	srv := httptest.NewServer(handler.SecurityHeaders(mux))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse // don't follow redirects automatically
		},
	}

	return &testServer{Server: srv, sessions: sessions, kv: kv, client: client}
}

// get fetches path and returns the status and body.
func (ts *testServer) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := ts.client.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

// post submits a navigation form and expects the redirect back to "/".
func (ts *testServer) post(t *testing.T, path string) {
	t.Helper()
	resp, err := ts.client.PostForm(ts.URL+path, nil)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("POST %s: expected 303, got %d", path, resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/" {
		t.Fatalf("POST %s: expected redirect to /, got %s", path, loc)
	}
}

// playerEvent posts a Datastar player event carrying the given clock and
// returns the status and the event stream body.
func (ts *testServer) playerEvent(t *testing.T, path string, currentTime, duration float64) (int, string) {
	t.Helper()
	payload := `{"currentTime":` + formatFloat(currentTime) + `,"duration":` + formatFloat(duration) + `}`
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, bytes.NewBufferString(payload))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Datastar-Request", "true")

	resp, err := ts.client.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
