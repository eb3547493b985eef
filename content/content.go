// Package content holds the typed gallery content model and decodes the
// loosely shaped content documents supplied by the host into it.
package content

import (
	"fmt"
	"time"
)

type DisplayStyle string

const (
	DisplayGrid     DisplayStyle = "grid"
	DisplayCarousel DisplayStyle = "carousel"
)

// Layout is the layout a style renders with. An unset style is a grid and
// anything else but grid lays out as a carousel; only a literal carousel
// rotates on its own.
func (d DisplayStyle) Layout() DisplayStyle {
	if d == DisplayGrid || d == "" {
		return DisplayGrid
	}
	return DisplayCarousel
}

type Background string

const (
	BackgroundGray           Background = "gray"
	BackgroundWhite          Background = "white"
	BackgroundPrimaryLight   Background = "primary-light"
	BackgroundSecondaryLight Background = "secondary-light"
	BackgroundAccentLight    Background = "accent-light"
)

// DefaultAutoRotateInterval applies when a section does not configure one
// or configures one that cannot be read as a number.
const DefaultAutoRotateInterval = 5 * time.Second

// ImageKind tells how an ImageRef was written in the content document.
type ImageKind int

const (
	ImagePath ImageKind = iota + 1
	ImageDescriptor
)

// ImageRef is either a plain path or a descriptor carrying dimensions.
// Width and Height are zero when unknown.
type ImageRef struct {
	Kind   ImageKind `json:"kind"`
	Src    string    `json:"src"`
	Width  int       `json:"width,omitempty"`
	Height int       `json:"height,omitempty"`
}

// Present reports whether the reference points at something renderable.
func (r *ImageRef) Present() bool {
	return r != nil && r.Src != ""
}

// HasDims reports whether both intrinsic dimensions are known.
func (r *ImageRef) HasDims() bool {
	return r != nil && r.Width > 0 && r.Height > 0
}

type GalleryItem struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Before      *ImageRef `json:"beforeImage,omitempty"`
	After       *ImageRef `json:"afterImage,omitempty"`
}

type GallerySection struct {
	Enabled            bool          `json:"enabled"`
	DisplayStyle       DisplayStyle  `json:"displayStyle"`
	AutoRotateInterval time.Duration `json:"autoRotateInterval"`
	Background         Background    `json:"background"`
	Title              string        `json:"title"`
	Subtitle           string        `json:"subtitle"`
	Items              []GalleryItem `json:"items"`
}

// Visible reports whether the section renders anything at all.
func (s *GallerySection) Visible() bool {
	return s != nil && s.Enabled && len(s.Items) > 0
}

// AutoRotates reports whether a mounted carousel for this section should
// advance on its own.
func (s *GallerySection) AutoRotates() bool {
	return s.Visible() &&
		s.DisplayStyle == DisplayCarousel &&
		s.AutoRotateInterval > 0 &&
		len(s.Items) > 1
}

type Sections struct {
	Gallery *GallerySection `json:"gallery,omitempty"`
}

// Content is the decoded host content object.
type Content struct {
	Sections Sections    `json:"sections"`
	Site     *SiteConfig `json:"site,omitempty"`

	// Fallbacks lists every place where decoding substituted a default for
	// a value it could not use.
	Fallbacks []Fallback `json:"fallbacks,omitempty"`
}

// Gallery returns the gallery section when it is visible, nil otherwise.
func (c *Content) Gallery() *GallerySection {
	if c == nil || !c.Sections.Gallery.Visible() {
		return nil
	}
	return c.Sections.Gallery
}

// Fallback records one default substitution made while decoding.
type Fallback struct {
	Field  string `json:"field"`
	Value  string `json:"value,omitempty"`
	Reason string `json:"reason"`
}

func (f Fallback) String() string {
	if f.Value == "" {
		return fmt.Sprintf("%s: %s", f.Field, f.Reason)
	}
	return fmt.Sprintf("%s: %s (got %q)", f.Field, f.Reason, f.Value)
}
