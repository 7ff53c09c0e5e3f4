// Package view renders the lesson viewer pages as templ components.
package view

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// DatastarScript is the client bundle the player page loads.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

// Branding is the institution shown in the page header.
type Branding struct {
	AppName      string
	Municipality string
}

// html accumulates writes and keeps the first error.
type html struct {
	w   io.Writer
	err error
}

func (h *html) raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

// text writes s escaped for element content and attribute values.
func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *html) printf(format string, args ...any) {
	h.raw(fmt.Sprintf(format, args...))
}

func (h *html) render(ctx context.Context, c templ.Component) {
	if h.err != nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

func component(fn func(ctx context.Context, h *html)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		fn(ctx, h)
		return h.err
	})
}

// postButton renders a form posting to action. Navigation works without
// client script; the server answers with a redirect to the session page.
func postButton(h *html, action, class, label string) {
	h.raw(`<form method="post" action="`)
	h.text(action)
	h.raw(`"><button type="submit" class="`)
	h.text(class)
	h.raw(`">`)
	h.text(label)
	h.raw(`</button></form>`)
}

// Layout wraps body in the page shell with the branded header.
func Layout(b Branding, title string, withDatastar bool, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw(`<!DOCTYPE html><html lang="es"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title + " | " + b.AppName)
		h.raw(`</title><style>`)
		h.raw(styles)
		h.raw(`</style>`)
		if withDatastar {
			h.raw(`<script type="module" src="`)
			h.text(DatastarScript)
			h.raw(`"></script>`)
		}
		h.raw(`</head><body><header class="site-header"><a href="/" class="brand"><strong>`)
		h.text(b.Municipality)
		h.raw(`</strong><span>`)
		h.text(b.AppName)
		h.raw(`</span></a></header><main>`)
		h.render(ctx, body)
		h.raw(`</main></body></html>`)
	})
}

const styles = `
body{margin:0;font-family:system-ui,sans-serif;font-size:1.25rem;background:#f0f4f8;color:#111}
main{max-width:56rem;margin:0 auto;padding:1.5rem}
.site-header{background:#004b93;color:#fff;padding:1rem 1.5rem}
.brand{color:#fff;text-decoration:none;display:flex;flex-direction:column}
.brand strong{font-size:1.6rem;text-transform:uppercase}
.card{background:#fff;border:4px solid #e5e7eb;border-radius:1.5rem;overflow:hidden;margin-bottom:1.5rem}
.card.featured{border-color:#2563eb}
.card img{width:100%;aspect-ratio:16/9;object-fit:cover;display:block}
.card-body{display:block;padding:1.25rem}
.card-title{display:block;font-size:1.6rem;font-weight:900;margin:.75rem 0 .5rem}
.card-text{display:block;color:#4b5563}
.badge{display:inline-block;padding:.2rem .9rem;border-radius:999px;font-weight:700;font-size:.9rem;text-transform:uppercase}
.badge.PENDING{background:#f3f4f6;color:#4b5563}
.badge.IN_PROGRESS{background:#dbeafe;color:#1d4ed8}
.badge.COMPLETED{background:#dcfce7;color:#15803d}
.bar{width:100%;background:#e5e7eb;height:1.5rem;border-radius:999px;overflow:hidden}
.bar>div{background:#2563eb;height:100%}
.btn{width:100%;border:0;border-radius:2rem;padding:1.5rem;font-size:1.8rem;font-weight:900;cursor:pointer}
.btn.primary{background:#004b93;color:#fff}
.btn.secondary{background:#fff;color:#004b93;border:4px solid #004b9333}
.btn.link{background:none;color:#004b93;text-align:left;padding:.5rem 0;font-size:1.4rem}
.card-button{all:unset;display:block;width:100%;cursor:pointer}
.player{background:#000;color:#fff;border-radius:1rem;overflow:hidden}
.player video{width:100%;max-height:70vh;background:#000;display:block}
.player-top{display:flex;justify-content:space-between;align-items:center;padding:1rem}
.controls{background:#18181b;padding:1.5rem}
.controls .bar>div{background:#fecb00}
.controls .row{display:flex;justify-content:space-between;gap:1rem;margin-top:1.5rem}
.controls button{background:#27272a;color:#fff;border:0;border-radius:999px;padding:1rem 1.5rem;font-size:1.2rem;cursor:pointer}
.controls button.play{background:#004b93;font-size:1.6rem}
.done{text-align:center;background:#fff;border-radius:3rem;padding:3rem 2rem}
.faq h3{color:#1e3a8a}
`
