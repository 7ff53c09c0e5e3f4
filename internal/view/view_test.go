package view_test

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/msomdec/vecino-digital/internal/domain"
	"github.com/msomdec/vecino-digital/internal/service"
	"github.com/msomdec/vecino-digital/internal/view"
)

var branding = view.Branding{AppName: "Vecino Digital", Municipality: "Municipalidad"}

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	if err := c.Render(context.Background(), &sb); err != nil {
		t.Fatalf("render: %v", err)
	}
	return sb.String()
}

func assertContains(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Fatalf("expected output to contain %q", want)
		}
	}
}

func assertNotContains(t *testing.T, body string, unwanted ...string) {
	t.Helper()
	for _, u := range unwanted {
		if strings.Contains(body, u) {
			t.Fatalf("expected output not to contain %q", u)
		}
	}
}

func testLesson() domain.Lesson {
	return domain.Lesson{
		ID:          "1",
		Title:       "Primeros <Pasos>",
		Description: "Aprende lo básico",
		Duration:    "3:45",
		Thumbnail:   "https://example.com/1.jpg",
		VideoURL:    "https://example.com/1.mp4",
		Order:       1,
	}
}

func TestHomePage(t *testing.T) {
	l := testLesson()
	snap := service.Snapshot{
		State:   domain.SessionState{CurrentView: domain.ViewHome},
		Metrics: domain.Metrics{Completed: 1, Total: 2, Percent: 50},
		Lessons: []service.LessonCard{
			{Lesson: l, Status: domain.StatusCompleted},
			{Lesson: domain.Lesson{ID: "2", Title: "Navegar", Order: 2}, Status: domain.StatusPending},
		},
	}

	body := render(t, view.SessionPage(branding, snap))

	assertContains(t, body,
		"Municipalidad",
		`<span id="course-percent">50%</span>`,
		"Has completado <strong>1</strong> de <strong>2</strong>",
		`action="/lessons/1"`,
		`action="/lessons/2"`,
		`class="badge COMPLETED">Hecha`,
		`class="badge PENDING">Pendiente`,
		`href="/help"`,
		"Primeros &lt;Pasos&gt;",
	)
	assertNotContains(t, body, "Primeros <Pasos>", `class="card featured"`, "datastar.js")
}

func TestLessonCard_ButtonHoldsPhrasingContent(t *testing.T) {
	body := render(t, view.LessonCard(service.LessonCard{Lesson: testLesson(), Status: domain.StatusInProgress}))

	start := strings.Index(body, "<button")
	end := strings.Index(body, "</button>")
	if start < 0 || end < start {
		t.Fatalf("expected a button, got %s", body)
	}
	inner := body[start:end]
	for _, tag := range []string{"<div", "<h3", "<p>", "<p "} {
		if strings.Contains(inner, tag) {
			t.Fatalf("expected only phrasing content in the card button, found %s in %s", tag, inner)
		}
	}
	assertContains(t, inner, `class="card-title"`, `class="card-text"`)
}

func TestHomePage_FeaturedFirstLesson(t *testing.T) {
	snap := service.Snapshot{
		Lessons: []service.LessonCard{{Lesson: testLesson(), Status: domain.StatusPending, Featured: true}},
	}

	body := render(t, view.HomePage(branding, snap))

	assertContains(t, body, `class="card featured"`)
}

func TestLessonPage_PlayLabel(t *testing.T) {
	l := testLesson()
	snap := service.Snapshot{
		State:  domain.SessionState{CurrentView: domain.ViewLessonDetail, SelectedLessonID: "1"},
		Lesson: &l,
	}

	body := render(t, view.SessionPage(branding, snap))
	assertContains(t, body, `action="/play"`, "VER AHORA", `action="/home"`, "3:45 mins")
	assertNotContains(t, body, "CONTINUAR")

	snap.Progress = domain.ProgressRecord{LessonID: "1", Status: domain.StatusInProgress, LastPosition: 42}
	body = render(t, view.SessionPage(branding, snap))
	assertContains(t, body, "CONTINUAR VÍDEO")
}

func TestPlayerPage(t *testing.T) {
	l := testLesson()
	snap := service.Snapshot{
		State:   domain.SessionState{CurrentView: domain.ViewPlayer, SelectedLessonID: "1"},
		Lesson:  &l,
		HasNext: true,
		Playing: true,
		Percent: 25,
	}

	body := render(t, view.SessionPage(branding, snap))

	assertContains(t, body,
		"datastar.js",
		`id="lesson-video"`,
		`src="https://example.com/1.mp4"`,
		"data-on:timeupdate__throttle.1000ms=",
		"data-init=\"if (el.readyState &gt;= 1) {",
		"@post(&#39;/player/timeupdate&#39;)",
		"@post(&#39;/player/ended&#39;)",
		"@post(&#39;/player/start&#39;)",
		"@post(&#39;/player/next&#39;)",
		"@post(&#39;/player/close&#39;)",
		`id="player-controls"`,
		"width:25.0%",
		"Pausa",
	)
	assertNotContains(t, body, "/player/prev")
}

func TestPlayerControls_PausedWithPrev(t *testing.T) {
	body := render(t, view.PlayerControls(service.Snapshot{HasPrev: true}))

	assertContains(t, body, "/player/prev", "Reproducir", "width:0.0%")
	assertNotContains(t, body, "/player/next", "Pausa")
}

func TestCompletionPage(t *testing.T) {
	l := testLesson()
	snap := service.Snapshot{
		State:   domain.SessionState{CurrentView: domain.ViewCompletion, SelectedLessonID: "1"},
		Lesson:  &l,
		HasNext: true,
	}

	body := render(t, view.SessionPage(branding, snap))
	assertContains(t, body, "¡Bravo!", `action="/next"`, "VOLVER AL INICIO")
	assertNotContains(t, body, "course-finished")

	snap.HasNext = false
	body = render(t, view.SessionPage(branding, snap))
	assertContains(t, body, `id="course-finished"`)
	assertNotContains(t, body, `action="/next"`)
}

func TestSessionPage_NoSelectionFallsBackHome(t *testing.T) {
	snap := service.Snapshot{State: domain.SessionState{CurrentView: domain.ViewPlayer}}

	body := render(t, view.SessionPage(branding, snap))

	assertContains(t, body, `id="lessons"`)
}

func TestHelpPage(t *testing.T) {
	body := render(t, view.HelpPage(branding))

	assertContains(t, body, "Ayuda", "¿Cómo reproduzco un vídeo?", `href="/"`)
}
