package view

import (
	"context"

	"github.com/a-h/templ"

	"github.com/msomdec/vecino-digital/internal/service"
)

// CompletionPage congratulates the viewer on finishing a lesson.
func CompletionPage(b Branding, snap service.Snapshot) templ.Component {
	body := component(func(_ context.Context, h *html) {
		h.raw(`<section class="done" id="completion"><h2>¡Bravo!</h2><p>Has completado:<br><strong>"`)
		if snap.Lesson != nil {
			h.text(snap.Lesson.Title)
		}
		h.raw(`"</strong></p>`)
		if snap.HasNext {
			postButton(h, "/next", "btn primary", "SIGUIENTE VÍDEO →")
		} else {
			h.raw(`<p id="course-finished"><strong>¡Has terminado todo el curso!</strong></p>`)
		}
		postButton(h, "/home", "btn secondary", "VOLVER AL INICIO")
		h.raw(`</section>`)
	})
	return Layout(b, "¡Bravo!", false, body)
}
