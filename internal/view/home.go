package view

import (
	"context"

	"github.com/a-h/templ"

	"github.com/msomdec/vecino-digital/internal/domain"
	"github.com/msomdec/vecino-digital/internal/service"
)

var statusLabels = map[domain.LessonStatus]string{
	domain.StatusPending:    "Pendiente",
	domain.StatusInProgress: "En curso",
	domain.StatusCompleted:  "Hecha",
}

// ProgressBar shows course completion as "completed of total".
func ProgressBar(m domain.Metrics) templ.Component {
	return component(func(_ context.Context, h *html) {
		h.raw(`<section class="card"><div class="card-body"><p><strong>Progreso del curso</strong> <span id="course-percent">`)
		h.printf("%d%%", m.Percent)
		h.raw(`</span></p><div class="bar"><div style="width:`)
		h.printf("%d%%", m.Percent)
		h.raw(`"></div></div><p>Has completado <strong>`)
		h.printf("%d", m.Completed)
		h.raw(`</strong> de <strong>`)
		h.printf("%d", m.Total)
		h.raw(`</strong> píldoras</p></div></section>`)
	})
}

// LessonCard is one selectable lesson on the home screen.
func LessonCard(c service.LessonCard) templ.Component {
	return component(func(_ context.Context, h *html) {
		class := "card"
		if c.Featured {
			class += " featured"
		}
		h.raw(`<form method="post" action="/lessons/`)
		h.text(c.Lesson.ID)
		h.raw(`" class="`)
		h.raw(class)
		h.raw(`"><button type="submit" class="card-button"><img src="`)
		h.text(c.Lesson.Thumbnail)
		h.raw(`" alt="`)
		h.text(c.Lesson.Title)
		h.raw(`" referrerpolicy="no-referrer"><span class="card-body"><span class="badge `)
		h.text(string(c.Status))
		h.raw(`">`)
		h.text(statusLabels[c.Status])
		h.raw(`</span> <span>#`)
		h.printf("%d", c.Lesson.Order)
		h.raw(` · `)
		h.text(c.Lesson.Duration)
		h.raw(`</span><span class="card-title">`)
		h.text(c.Lesson.Title)
		h.raw(`</span><span class="card-text">`)
		h.text(c.Lesson.Description)
		h.raw(`</span></span></button></form>`)
	})
}

// HomePage lists the course with its progress.
func HomePage(b Branding, snap service.Snapshot) templ.Component {
	body := component(func(ctx context.Context, h *html) {
		h.render(ctx, ProgressBar(snap.Metrics))
		h.raw(`<section id="lessons"><h2>Tu aprendizaje hoy</h2>`)
		for _, c := range snap.Lessons {
			h.render(ctx, LessonCard(c))
		}
		h.raw(`</section><p><a class="btn secondary" href="/help">¿Quieres que te ayudemos?</a></p>`)
	})
	return Layout(b, "Inicio", false, body)
}
