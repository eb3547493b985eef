package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/aouyang1/beforeafter/content"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func section(style content.DisplayStyle, items ...content.GalleryItem) *content.GallerySection {
	return &content.GallerySection{
		Enabled:      true,
		DisplayStyle: style,
		Background:   content.BackgroundWhite,
		Title:        "Our <Work>",
		Subtitle:     "Before & after",
		Items:        items,
	}
}

var (
	pairItem = content.GalleryItem{
		Title:       "Kitchen",
		Description: "Full remodel",
		Before:      &content.ImageRef{Kind: content.ImagePath, Src: "/k-before-400x800.jpg"},
		After:       &content.ImageRef{Kind: content.ImagePath, Src: "/k-after-800x400.jpg"},
	}
	afterOnlyItem = content.GalleryItem{
		Title: "Deck",
		After: &content.ImageRef{Kind: content.ImageDescriptor, Src: "/deck.jpg", Width: 1200, Height: 800},
	}
)

func TestGallery_NotVisible(t *testing.T) {
	tests := []struct {
		name string
		s    *content.GallerySection
	}{
		{"nil", nil},
		{"disabled", &content.GallerySection{Items: []content.GalleryItem{pairItem}}},
		{"empty", &content.GallerySection{Enabled: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(t, Gallery(NewGalleryView(tt.s, 0, ""))); got != "" {
				t.Errorf("expected no output, got %q", got)
			}
		})
	}
}

func TestGallery_Grid(t *testing.T) {
	out := render(t, Gallery(NewGalleryView(section(content.DisplayGrid, pairItem, afterOnlyItem), 0, "")))

	for _, want := range []string{
		`<section class="py-20 bg-white">`,
		`Our &lt;Work&gt;`,
		`Before &amp; after`,
		`grid grid-cols-1 md:grid-cols-2 gap-8`,
		`grid grid-cols-2 items-start`,
		`grid grid-cols-1 items-start`,
		`alt="Kitchen - Before"`,
		`alt="Kitchen - After"`,
		`alt="Deck"`,
		`width="800" height="1200"`,
		`width="1600" height="1000"`,
		`width="1200" height="800"`,
		`>Before</span>`,
		`>After</span>`,
		`<h3 class="text-xl font-semibold text-gray-900 mb-2">Kitchen</h3>`,
		`<p class="text-gray-600">Full remodel</p>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}
	if strings.Contains(out, "object-cover") {
		t.Error("grid must never crop images")
	}
	if strings.Count(out, "<span") != 2 {
		t.Errorf("expected exactly two badges")
	}
	if strings.Contains(out, "aria-label") {
		t.Error("grid has no carousel controls")
	}
}

func TestGallery_CarouselFit(t *testing.T) {
	out := render(t, Gallery(NewGalleryView(section(content.DisplayCarousel, pairItem), 0, "")))

	// portrait before image stays whole, landscape after image is cropped
	if !strings.Contains(out, `<div class="relative w-full"><img src="/k-before-400x800.jpg"`) {
		t.Error("portrait image should render at natural height")
	}
	if !strings.Contains(out, `<div class="relative aspect-[16/10]"><img src="/k-after-800x400.jpg"`) {
		t.Error("landscape image should render in a cropped 16:10 box")
	}
	if strings.Contains(out, "Previous slide") {
		t.Error("single slide carousel must hide controls")
	}
	if strings.Contains(out, "Go to slide") {
		t.Error("single slide carousel must hide dots")
	}
}

func TestCarousel_Controls(t *testing.T) {
	v := NewGalleryView(section(content.DisplayCarousel, pairItem, afterOnlyItem, pairItem), 2, "abc")
	out := render(t, Carousel(v))

	for _, want := range []string{
		`id="gallery-carousel-abc"`,
		`data-slide="2"`,
		`sse-swap="slide"`,
		`style="transform: translateX(-200%)"`,
		`aria-label="Previous slide" hx-post="/gallery/sessions/abc/prev"`,
		`aria-label="Next slide" hx-post="/gallery/sessions/abc/next"`,
		`aria-label="Go to slide 1" hx-post="/gallery/sessions/abc/goto/0"`,
		`aria-label="Go to slide 3" hx-post="/gallery/sessions/abc/goto/2"`,
		`hx-target="#gallery-carousel-abc"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q", want)
		}
	}
	if got := strings.Count(out, "bg-primary\""); got != 1 {
		t.Errorf("active dots = %d, want 1", got)
	}
	if got := strings.Count(out, "Go to slide"); got != 3 {
		t.Errorf("dots = %d, want 3", got)
	}
}

func TestCarousel_Static(t *testing.T) {
	v := NewGalleryView(section(content.DisplayCarousel, pairItem, afterOnlyItem), 0, "")
	out := render(t, Gallery(v))

	if !strings.Contains(out, `translateX(-0%)`) {
		t.Error("first slide should be shown")
	}
	if strings.Contains(out, "hx-post") || strings.Contains(out, "sse-connect") {
		t.Error("static carousel must not talk to the server")
	}
	if !strings.Contains(out, `aria-label="Next slide"`) {
		t.Error("controls expected for more than one slide")
	}
}

func TestGallery_LiveWrapper(t *testing.T) {
	v := NewGalleryView(section(content.DisplayCarousel, pairItem, afterOnlyItem), 0, "s1")
	out := render(t, Gallery(v))
	if !strings.Contains(out, `hx-ext="sse" sse-connect="/gallery/sessions/s1/events"`) {
		t.Error("live carousel should subscribe to slide events")
	}
}

func TestBackgroundClass(t *testing.T) {
	tests := map[content.Background]string{
		content.BackgroundWhite:          "bg-white",
		content.BackgroundPrimaryLight:   "bg-primary-light",
		content.BackgroundSecondaryLight: "bg-secondary-light",
		content.BackgroundAccentLight:    "bg-accent-light",
		content.BackgroundGray:           "bg-gray-50",
		"neon":                           "bg-gray-50",
	}
	for bg, want := range tests {
		if got := backgroundClass(bg); got != want {
			t.Errorf("backgroundClass(%q) = %q, want %q", bg, got, want)
		}
	}
}

func TestPage(t *testing.T) {
	out := render(t, Page("Gallery & Co", templ.NopComponent))
	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Error("missing doctype")
	}
	if !strings.Contains(out, "<title>Gallery &amp; Co</title>") {
		t.Error("title should be escaped")
	}
	if !strings.Contains(out, "htmx.org") {
		t.Error("htmx should be loaded")
	}
}
