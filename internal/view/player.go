package view

import (
	"context"
	"fmt"

	"github.com/a-h/templ"

	"github.com/msomdec/vecino-digital/internal/service"
)

// VideoElementID is the id of the page's <video> element; player commands
// sent by the server address it.
const VideoElementID = "lesson-video"

// PlayerControlsID is the fragment patched after every player event.
const PlayerControlsID = "player-controls"

// reportFrom returns a Datastar expression that copies the clock of the
// video element ref into the currentTime and duration signals and posts to
// path. An unknown duration is sent as 0.
func reportFrom(ref, path string) string {
	return fmt.Sprintf("$currentTime = %[1]s.currentTime || 0; $duration = %[1]s.duration || 0; @post('%[2]s')", ref, path)
}

// report posts a player event from a control outside the video element.
func report(path string) string {
	return reportFrom(fmt.Sprintf("document.getElementById('%s')", VideoElementID), path)
}

func control(h *html, class, path, label string) {
	h.raw(`<button type="button"`)
	if class != "" {
		h.raw(` class="`)
		h.text(class)
		h.raw(`"`)
	}
	h.raw(` data-on:click="`)
	h.text(report(path))
	h.raw(`">`)
	h.text(label)
	h.raw(`</button>`)
}

// PlayerControls renders the progress bar and buttons below the video.
func PlayerControls(snap service.Snapshot) templ.Component {
	return component(func(_ context.Context, h *html) {
		h.raw(`<div id="`)
		h.raw(PlayerControlsID)
		h.raw(`" class="controls"><div class="bar"><div style="width:`)
		h.printf("%.1f%%", snap.Percent)
		h.raw(`"></div></div><div class="row">`)
		if snap.HasPrev {
			control(h, "", "/player/prev", "⏮ Anterior")
		}
		control(h, "", "/player/skip?delta=-10", "⟲ 10s")
		control(h, "", "/player/stop", "■ Parar")
		if snap.Playing {
			control(h, "play", "/player/toggle", "❚❚ Pausa")
		} else {
			control(h, "play", "/player/toggle", "▶ Reproducir")
		}
		control(h, "", "/player/skip?delta=10", "10s ⟳")
		if snap.HasNext {
			control(h, "", "/player/next", "Siguiente ⏭")
		}
		h.raw(`</div></div>`)
	})
}

// PlayerPage is the full-screen player. The page reports the video clock
// with every event; the server answers with control patches and commands.
func PlayerPage(b Branding, snap service.Snapshot) templ.Component {
	l := snap.Lesson
	body := component(func(ctx context.Context, h *html) {
		h.raw(`<section class="player" data-signals="{currentTime: 0, duration: 0}"><div class="player-top"><h2>`)
		h.text(l.Title)
		h.raw(`</h2>`)
		control(h, "", "/player/close", "✕ Cerrar")
		h.raw(`</div><video id="`)
		h.raw(VideoElementID)
		h.raw(`" src="`)
		h.text(l.VideoURL)
		h.raw(`" poster="`)
		h.text(l.Thumbnail)
		h.raw(`" playsinline preload="auto" controlslist="nodownload"`)
		// Metadata may already be loaded when Datastar attaches the listeners.
		h.raw(` data-init="`)
		h.text("if (el.readyState >= 1) { " + reportFrom("el", "/player/start") + " }")
		h.raw(`" data-on:loadedmetadata__once="`)
		h.text(reportFrom("el", "/player/start"))
		h.raw(`" data-on:timeupdate__throttle.1000ms="`)
		h.text(reportFrom("el", "/player/timeupdate"))
		h.raw(`" data-on:ended="`)
		h.text(reportFrom("el", "/player/ended"))
		h.raw(`" data-on:click="`)
		h.text(reportFrom("el", "/player/toggle"))
		h.raw(`"></video>`)
		h.render(ctx, PlayerControls(snap))
		h.raw(`</section>`)
	})
	return Layout(b, l.Title, true, body)
}
