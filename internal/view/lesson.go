package view

import (
	"context"

	"github.com/a-h/templ"

	"github.com/msomdec/vecino-digital/internal/service"
)

// LessonPage shows the selected lesson with the play button.
func LessonPage(b Branding, snap service.Snapshot) templ.Component {
	l := snap.Lesson
	body := component(func(_ context.Context, h *html) {
		postButton(h, "/home", "btn link", "← Volver al curso")
		h.raw(`<article class="card" id="lesson-detail"><img src="`)
		h.text(l.Thumbnail)
		h.raw(`" alt=""><div class="card-body"><p><span class="badge IN_PROGRESS">Lección `)
		h.printf("%d", l.Order)
		h.raw(`</span> <span>`)
		h.text(l.Duration)
		h.raw(` mins</span></p><h2>`)
		h.text(l.Title)
		h.raw(`</h2><p>`)
		h.text(l.Description)
		h.raw(`</p>`)
		label := "VER AHORA"
		if snap.Progress.LastPosition > 0 {
			label = "CONTINUAR VÍDEO"
		}
		postButton(h, "/play", "btn primary", "▶ "+label)
		h.raw(`</div></article>`)
	})
	return Layout(b, l.Title, false, body)
}
