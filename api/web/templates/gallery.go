// Package templates renders the gallery section as templ components.
package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
	"github.com/aouyang1/beforeafter/content"
	"github.com/aouyang1/beforeafter/layout"
)

const imageSizes = "(max-width: 768px) 100vw, 50vw"

// GalleryView is everything the gallery needs for one render.
type GalleryView struct {
	Section *content.GallerySection
	Cards   []layout.Card
	Current int

	// SessionID names the live carousel session behind the controls. Empty
	// renders a static carousel without server round trips.
	SessionID string
}

func NewGalleryView(section *content.GallerySection, current int, sessionID string) GalleryView {
	return GalleryView{
		Section:   section,
		Cards:     layout.ResolveSection(section),
		Current:   current,
		SessionID: sessionID,
	}
}

func (v GalleryView) carousel() bool {
	return v.Section.DisplayStyle.Layout() == content.DisplayCarousel
}

// Gallery renders the whole section, or nothing when the section is
// absent, disabled or empty.
func Gallery(v GalleryView) templ.Component {
	if !v.Section.Visible() {
		return templ.NopComponent
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}

		h.rawf(`<section class="py-20 %s">`, backgroundClass(v.Section.Background))
		h.raw(`<div class="max-w-7xl mx-auto px-4 sm:px-6 lg:px-8">`)

		h.raw(`<div class="text-center mb-16">`)
		h.raw(`<h2 class="text-3xl lg:text-4xl font-bold text-gray-900 mb-4">`)
		h.text(v.Section.Title)
		h.raw(`</h2>`)
		h.raw(`<p class="text-xl text-gray-600 max-w-3xl mx-auto">`)
		h.text(v.Section.Subtitle)
		h.raw(`</p></div>`)
		if h.err != nil {
			return h.err
		}

		if !v.carousel() {
			h.raw(`<div class="grid grid-cols-1 md:grid-cols-2 gap-8">`)
			for _, card := range v.Cards {
				writeCard(h, card, false)
			}
			h.raw(`</div>`)
		} else if v.SessionID != "" {
			h.raw(`<div class="gallery-live" hx-ext="sse"`)
			h.attr("sse-connect", eventsURL(v.SessionID))
			h.raw(`>`)
			if h.err != nil {
				return h.err
			}
			if err := Carousel(v).Render(ctx, w); err != nil {
				return err
			}
			h.raw(`</div>`)
		} else {
			if err := Carousel(v).Render(ctx, w); err != nil {
				return err
			}
		}

		h.raw(`</div></section>`)
		return h.err
	})
}

// Carousel renders the carousel block alone. It is the fragment swapped
// after navigation and pushed on slide events.
func Carousel(v GalleryView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		n := len(v.Cards)
		live := v.SessionID != ""

		h.raw(`<div class="relative max-w-4xl mx-auto"`)
		h.attr("id", CarouselID(v.SessionID))
		h.attr("data-slide", strconv.Itoa(v.Current))
		if live {
			h.raw(` sse-swap="slide" hx-swap="outerHTML"`)
		}
		h.raw(`>`)

		h.raw(`<div class="relative overflow-hidden rounded-lg">`)
		h.raw(`<div class="flex transition-transform duration-500 ease-in-out"`)
		h.rawf(` style="transform: translateX(-%d%%)">`, v.Current*100)
		for _, card := range v.Cards {
			h.raw(`<div class="w-full flex-shrink-0">`)
			writeCard(h, card, true)
			h.raw(`</div>`)
		}
		h.raw(`</div></div>`)

		if n > 1 {
			writeNavButton(h, v, "prev", "Previous slide", "left-4", chevronLeft)
			writeNavButton(h, v, "next", "Next slide", "right-4", chevronRight)

			h.raw(`<div class="flex justify-center mt-6 space-x-2">`)
			for i := 0; i < n; i++ {
				h.raw(`<button type="button" class="w-3 h-3 rounded-full transition-colors duration-200 `)
				if i == v.Current {
					h.raw(`bg-primary"`)
				} else {
					h.raw(`bg-gray-300 hover:bg-gray-400"`)
				}
				h.attr("aria-label", "Go to slide "+strconv.Itoa(i+1))
				if live {
					writeHTMXPost(h, gotoURL(v.SessionID, i), v.SessionID)
				}
				h.raw(`></button>`)
			}
			h.raw(`</div>`)
		}

		h.raw(`</div>`)
		return h.err
	})
}

const (
	chevronLeft  = `<svg xmlns="http://www.w3.org/2000/svg" class="h-6 w-6" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><path d="m15 18-6-6 6-6"/></svg>`
	chevronRight = `<svg xmlns="http://www.w3.org/2000/svg" class="h-6 w-6" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><path d="m9 18 6-6-6-6"/></svg>`
)

func writeNavButton(h *htmlWriter, v GalleryView, action, label, side, icon string) {
	h.rawf(`<button type="button" class="absolute %s top-1/2 -translate-y-1/2 bg-white/80 hover:bg-white text-gray-800 rounded-full p-2 shadow-lg transition-all duration-200 z-10"`, side)
	h.attr("aria-label", label)
	if v.SessionID != "" {
		writeHTMXPost(h, slideURL(v.SessionID, action), v.SessionID)
	}
	h.raw(`>`)
	h.raw(icon)
	h.raw(`</button>`)
}

func writeHTMXPost(h *htmlWriter, target, sessionID string) {
	h.attr("hx-post", target)
	h.attr("hx-target", "#"+CarouselID(sessionID))
	h.raw(` hx-swap="outerHTML"`)
}

func writeCard(h *htmlWriter, card layout.Card, inCarousel bool) {
	h.raw(`<div class="rounded-lg bg-card text-card-foreground border-0 shadow-lg hover:shadow-xl transition-shadow duration-300 overflow-hidden`)
	if inCarousel {
		h.raw(` w-full`)
	}
	h.raw(`"`)
	h.attr("id", card.ID)
	h.raw(`><div class="p-0"><div class="relative">`)

	if len(card.Images) > 0 {
		h.rawf(`<div class="grid grid-cols-%d items-start">`, len(card.Images))
		for _, img := range card.Images {
			writeImage(h, img)
		}
		h.raw(`</div>`)
	}

	if card.HasText() {
		h.raw(`<div class="p-6">`)
		if card.Title != "" {
			h.raw(`<h3 class="text-xl font-semibold text-gray-900 mb-2">`)
			h.text(card.Title)
			h.raw(`</h3>`)
		}
		if card.Description != "" {
			h.raw(`<p class="text-gray-600">`)
			h.text(card.Description)
			h.raw(`</p>`)
		}
		h.raw(`</div>`)
	}

	h.raw(`</div></div></div>`)
}

func writeImage(h *htmlWriter, img layout.Image) {
	if img.Fit == layout.FitCover {
		h.raw(`<div class="relative aspect-[16/10]"><img`)
		h.attr("src", img.Src)
		h.attr("alt", img.Alt)
		h.raw(` class="absolute inset-0 h-full w-full object-cover object-center"`)
	} else {
		h.raw(`<div class="relative w-full"><img`)
		h.attr("src", img.Src)
		h.attr("alt", img.Alt)
		h.attr("width", strconv.Itoa(img.Dims.Width))
		h.attr("height", strconv.Itoa(img.Dims.Height))
		h.raw(` class="w-full h-auto object-contain"`)
	}
	h.attr("sizes", imageSizes)
	h.raw(` loading="lazy">`)

	if img.Badge != layout.BadgeNone {
		h.rawf(`<div class="absolute top-4 %s-4">`, img.BadgeSide)
		h.raw(`<span class="inline-flex items-center rounded-full border border-transparent px-2.5 py-0.5 text-xs font-semibold `)
		if img.Badge == layout.BadgeBefore {
			h.raw(`bg-red-100 text-red-800">`)
		} else {
			h.raw(`bg-green-100 text-green-800">`)
		}
		h.text(string(img.Badge))
		h.raw(`</span></div>`)
	}
	h.raw(`</div>`)
}

// Page wraps a body component into a standalone document that loads htmx
// and its server-sent events extension.
func Page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title>`)
		h.raw(`<link rel="stylesheet" href="/static/gallery.css">`)
		h.raw(`<script src="https://unpkg.com/htmx.org@2.0.4"></script>`)
		h.raw(`<script src="https://unpkg.com/htmx-ext-sse@2.2.2/sse.js"></script>`)
		h.raw(`</head><body>`)
		if h.err != nil {
			return h.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		h.raw(`</body></html>`)
		return h.err
	})
}
