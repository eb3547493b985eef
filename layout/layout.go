// Package layout decides how each gallery image is shown: its orientation,
// the size hints handed to the image pipeline, how it fills its box, and
// which before/after badge it carries.
package layout

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/aouyang1/beforeafter/content"
	"github.com/gosimple/slug"
)

// dimsInPath matches size hints such as "photo-800x1200.jpg".
var dimsInPath = regexp.MustCompile(`-(\d{2,5})x(\d{2,5})\.`)

// Fallback size hints. They only satisfy the image pipeline's need for an
// intrinsic size and say nothing about the real asset.
var (
	PortraitFallback  = Dims{Width: 800, Height: 1200}
	LandscapeFallback = Dims{Width: 1600, Height: 1000}
)

type Dims struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Fit is how an image fills the space it is given.
type Fit int

const (
	// FitNatural renders at intrinsic height, fully contained.
	FitNatural Fit = iota
	// FitCover crops into a fixed 16:10 box.
	FitCover
)

type Badge string

const (
	BadgeNone   Badge = ""
	BadgeBefore Badge = "Before"
	BadgeAfter  Badge = "After"
)

type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

type Image struct {
	Src       string
	Alt       string
	Portrait  bool
	Dims      Dims
	Fit       Fit
	Badge     Badge
	BadgeSide Side
}

// Card is one gallery item resolved for a display style.
type Card struct {
	Index       int
	ID          string
	Title       string
	Description string
	Images      []Image
}

// HasText reports whether the card has a text block to render.
func (c Card) HasText() bool {
	return c.Title != "" || c.Description != ""
}

// IsPortrait reports whether the referenced image is taller than wide.
// Unknown orientation counts as landscape.
func IsPortrait(ref *content.ImageRef) bool {
	if !ref.Present() {
		return false
	}
	if ref.Kind == content.ImageDescriptor {
		if ref.HasDims() {
			return ref.Height > ref.Width
		}
		return false
	}
	w, h, ok := DimsFromPath(ref.Src)
	return ok && h > w
}

// DimsFromPath extracts a trailing "-WIDTHxHEIGHT." size hint from a path.
func DimsFromPath(path string) (int, int, bool) {
	m := dimsInPath.FindStringSubmatch(path)
	if m == nil {
		return 0, 0, false
	}
	w, errW := strconv.Atoi(m[1])
	h, errH := strconv.Atoi(m[2])
	if errW != nil || errH != nil {
		return 0, 0, false
	}
	return w, h, true
}

// DimsWithFallback keeps known dimensions and otherwise substitutes the
// fixed hint for the orientation.
func DimsWithFallback(portrait bool, width, height int) Dims {
	if width > 0 && height > 0 {
		return Dims{Width: width, Height: height}
	}
	if portrait {
		return PortraitFallback
	}
	return LandscapeFallback
}

// FitFor returns how an image fills its box. Grid cards keep every image
// uncropped; carousel slides crop landscape images to a uniform box so the
// strip keeps one height while portrait images stay whole.
func FitFor(style content.DisplayStyle, portrait bool) Fit {
	if style.Layout() == content.DisplayCarousel && !portrait {
		return FitCover
	}
	return FitNatural
}

// ResolveImage resolves a single image of an item.
func ResolveImage(ref *content.ImageRef, alt string, style content.DisplayStyle) Image {
	portrait := IsPortrait(ref)
	return Image{
		Src:      ref.Src,
		Alt:      alt,
		Portrait: portrait,
		Dims:     DimsWithFallback(portrait, ref.Width, ref.Height),
		Fit:      FitFor(style, portrait),
	}
}

// Resolve lays out one item. When both images exist they are badged
// Before/After; a lone image carries no badge and uses the title as alt.
func Resolve(index int, item content.GalleryItem, style content.DisplayStyle) Card {
	card := Card{
		Index:       index,
		ID:          cardID(index, item.Title),
		Title:       item.Title,
		Description: item.Description,
	}

	pair := item.Before.Present() && item.After.Present()
	if item.Before.Present() {
		img := ResolveImage(item.Before, item.Title, style)
		if pair {
			img.Alt = item.Title + " - Before"
			img.Badge = BadgeBefore
			img.BadgeSide = SideLeft
		}
		card.Images = append(card.Images, img)
	}
	if item.After.Present() {
		img := ResolveImage(item.After, item.Title, style)
		if pair {
			img.Alt = item.Title + " - After"
			img.Badge = BadgeAfter
			img.BadgeSide = SideRight
		}
		card.Images = append(card.Images, img)
	}
	return card
}

// ResolveSection lays out every item of a section for its display style.
func ResolveSection(s *content.GallerySection) []Card {
	if s == nil {
		return nil
	}
	cards := make([]Card, len(s.Items))
	for i, item := range s.Items {
		cards[i] = Resolve(i, item, s.DisplayStyle)
	}
	return cards
}

func cardID(index int, title string) string {
	if s := slug.Make(title); s != "" {
		return fmt.Sprintf("gallery-item-%d-%s", index, s)
	}
	return fmt.Sprintf("gallery-item-%d", index)
}
