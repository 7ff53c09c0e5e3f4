package view

import (
	"context"

	"github.com/a-h/templ"
)

type faq struct {
	q, a string
}

var faqs = []faq{
	{
		q: "¿Cómo reproduzco un vídeo?",
		a: "Pulsa sobre la imagen del vídeo que quieras ver y luego pulsa el botón azul grande con el triángulo (Play).",
	},
	{
		q: "¿Cómo continúo donde lo dejé?",
		a: `La aplicación recuerda por dónde ibas. Si entras en un vídeo que ya empezaste, pulsa "Continuar vídeo" y seguirá desde ese punto.`,
	},
	{
		q: "¿Cómo paso al siguiente vídeo?",
		a: `Al terminar un vídeo aparecerá un botón grande que dice "Siguiente". También puedes usar las flechas en el reproductor.`,
	},
}

// HelpPage answers the common questions. It does not touch session state.
func HelpPage(b Branding) templ.Component {
	body := component(func(_ context.Context, h *html) {
		h.raw(`<section class="card faq" id="help"><div class="card-body"><h2>Ayuda</h2>`)
		for _, f := range faqs {
			h.raw(`<h3>`)
			h.text(f.q)
			h.raw(`</h3><p>`)
			h.text(f.a)
			h.raw(`</p>`)
		}
		h.raw(`<a class="btn primary" href="/">Entendido, volver</a></div></section>`)
	})
	return Layout(b, "Ayuda", false, body)
}
