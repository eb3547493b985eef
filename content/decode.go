package content

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"gopkg.in/yaml.v3"
)

// ErrStrict is returned by strict decoding when any default had to be
// substituted.
var ErrStrict = errors.New("content has values that needed a fallback")

var knownBackgrounds = mapset.NewSet(
	BackgroundWhite,
	BackgroundPrimaryLight,
	BackgroundSecondaryLight,
	BackgroundAccentLight,
	BackgroundGray,
)

type decodeOptions struct {
	strict bool
}

type DecodeOption func(*decodeOptions)

// Strict makes Decode fail with ErrStrict instead of silently resolving
// defaults for malformed values.
func Strict(strict bool) DecodeOption {
	return func(o *decodeOptions) { o.strict = strict }
}

// DecodeFile reads and decodes a YAML or JSON content document.
func DecodeFile(path string, opts ...DecodeOption) (*Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}
	return Decode(data, opts...)
}

// Decode parses a YAML or JSON content document. Only a syntactically
// broken document is an error; malformed fields resolve to defaults and
// are recorded in Content.Fallbacks.
func Decode(data []byte, opts ...DecodeOption) (*Content, error) {
	var o decodeOptions
	for _, opt := range opts {
		opt(&o)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}

	d := &decoder{}
	c := &Content{}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	switch {
	case root.Kind == 0 || isNull(root):
		// empty document
	case root.Kind != yaml.MappingNode:
		d.fallback("(root)", "", "content is not a mapping, ignoring it")
	default:
		if g := lookup(lookup(root, "sections"), "gallery"); g != nil && !isNull(g) {
			c.Sections.Gallery = d.gallery("sections.gallery", g)
		}
		if s := lookup(root, "site"); s != nil && !isNull(s) {
			c.Site = d.site("site", s)
		}
	}
	c.Fallbacks = d.fallbacks

	if o.strict && len(c.Fallbacks) > 0 {
		return c, fmt.Errorf("%w: %s", ErrStrict, c.Fallbacks[0])
	}
	return c, nil
}

type decoder struct {
	fallbacks []Fallback
}

func (d *decoder) fallback(field, value, reason string) {
	f := Fallback{Field: field, Value: value, Reason: reason}
	slog.Debug("content fallback", "field", f.Field, "value", f.Value, "reason", f.Reason)
	d.fallbacks = append(d.fallbacks, f)
}

func (d *decoder) gallery(path string, n *yaml.Node) *GallerySection {
	if n.Kind != yaml.MappingNode {
		d.fallback(path, n.Value, "gallery section is not a mapping, ignoring it")
		return nil
	}

	s := &GallerySection{
		Enabled:            d.boolean(path+".enabled", lookup(n, "enabled")),
		DisplayStyle:       d.displayStyle(path+".displayStyle", lookup(n, "displayStyle")),
		AutoRotateInterval: d.interval(path+".autoRotateInterval", lookup(n, "autoRotateInterval")),
		Background:         d.background(path+".background", lookup(n, "background")),
		Title:              d.text(path+".title", lookup(n, "title")),
		Subtitle:           d.text(path+".subtitle", lookup(n, "subtitle")),
	}

	items := lookup(n, "items")
	switch {
	case items == nil || isNull(items):
	case items.Kind != yaml.SequenceNode:
		d.fallback(path+".items", items.Value, "items is not a list, treating it as empty")
	default:
		for i, it := range items.Content {
			itemPath := fmt.Sprintf("%s.items[%d]", path, i)
			if it.Kind != yaml.MappingNode {
				d.fallback(itemPath, it.Value, "item is not a mapping, skipping it")
				continue
			}
			s.Items = append(s.Items, GalleryItem{
				Title:       d.text(itemPath+".title", lookup(it, "title")),
				Description: d.text(itemPath+".description", lookup(it, "description")),
				Before:      d.imageRef(itemPath+".beforeImage", lookup(it, "beforeImage")),
				After:       d.imageRef(itemPath+".afterImage", lookup(it, "afterImage")),
			})
		}
	}
	return s
}

func (d *decoder) boolean(path string, n *yaml.Node) bool {
	if n == nil || isNull(n) {
		return false
	}
	if n.Kind == yaml.ScalarNode {
		if b, err := strconv.ParseBool(strings.TrimSpace(n.Value)); err == nil {
			return b
		}
	}
	d.fallback(path, n.Value, "not a boolean, using false")
	return false
}

func (d *decoder) text(path string, n *yaml.Node) string {
	if n == nil || isNull(n) {
		return ""
	}
	if n.Kind != yaml.ScalarNode {
		d.fallback(path, "", "not text, using empty")
		return ""
	}
	return n.Value
}

func (d *decoder) displayStyle(path string, n *yaml.Node) DisplayStyle {
	v := d.text(path, n)
	switch DisplayStyle(v) {
	case "":
		return DisplayGrid
	case DisplayGrid, DisplayCarousel:
		return DisplayStyle(v)
	}
	d.fallback(path, v, "unknown display style, using the carousel layout without rotation")
	return DisplayStyle(v)
}

func (d *decoder) background(path string, n *yaml.Node) Background {
	v := Background(d.text(path, n))
	if v == "" {
		return BackgroundGray
	}
	if !knownBackgrounds.Contains(v) {
		d.fallback(path, string(v), "unknown background, using gray")
		return BackgroundGray
	}
	return v
}

// maxIntervalSeconds is the largest whole-second count a time.Duration holds.
const maxIntervalSeconds = math.MaxInt64 / 1_000_000_000

// interval reads autoRotateInterval as whole seconds. Numeric strings are
// read by their leading integer, so "7s" means seven seconds.
func (d *decoder) interval(path string, n *yaml.Node) time.Duration {
	if n == nil || isNull(n) {
		return DefaultAutoRotateInterval
	}
	if n.Kind != yaml.ScalarNode {
		d.fallback(path, "", "not a number, using 5 seconds")
		return DefaultAutoRotateInterval
	}

	v := strings.TrimSpace(n.Value)
	if v == "" {
		return DefaultAutoRotateInterval
	}

	var secs int64
	switch n.Tag {
	case "!!int":
		// out of range parses saturate and are clamped below
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			d.fallback(path, v, "not a number, using 5 seconds")
			return DefaultAutoRotateInterval
		}
		secs = i
	case "!!float":
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			d.fallback(path, v, "not a number, using 5 seconds")
			return DefaultAutoRotateInterval
		}
		switch {
		case f <= 0:
			secs = 0
		case f > maxIntervalSeconds:
			secs = maxIntervalSeconds + 1
		default:
			secs = int64(f)
		}
	default:
		i, ok := leadingInt(v)
		if !ok {
			d.fallback(path, v, "not a number, using 5 seconds")
			return DefaultAutoRotateInterval
		}
		secs = i
	}

	if secs <= 0 {
		return 0
	}
	if secs > maxIntervalSeconds {
		d.fallback(path, v, "interval too large, clamping")
		return time.Duration(maxIntervalSeconds) * time.Second
	}
	return time.Duration(secs) * time.Second
}

func (d *decoder) imageRef(path string, n *yaml.Node) *ImageRef {
	if n == nil || isNull(n) {
		return nil
	}

	switch n.Kind {
	case yaml.ScalarNode:
		if n.Value == "" {
			return nil
		}
		return &ImageRef{Kind: ImagePath, Src: n.Value}
	case yaml.MappingNode:
		src := d.text(path+".src", lookup(n, "src"))
		if src == "" {
			d.fallback(path+".src", "", "image descriptor without src, skipping it")
			return nil
		}
		return &ImageRef{
			Kind:   ImageDescriptor,
			Src:    src,
			Width:  d.dimension(path+".width", lookup(n, "width")),
			Height: d.dimension(path+".height", lookup(n, "height")),
		}
	}
	d.fallback(path, "", "not an image reference, skipping it")
	return nil
}

func (d *decoder) dimension(path string, n *yaml.Node) int {
	if n == nil || isNull(n) {
		return 0
	}
	if n.Kind == yaml.ScalarNode {
		if i, ok := leadingInt(strings.TrimSpace(n.Value)); ok && i > 0 && i <= math.MaxInt32 {
			return int(i)
		}
	}
	d.fallback(path, n.Value, "not a positive number, treating it as unknown")
	return 0
}

// leadingInt parses an optional sign followed by digits at the start of s
// and ignores whatever follows. Values beyond int64 saturate.
func leadingInt(s string) (int64, bool) {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	i, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return i, true
}

// lookup returns the value stored under key in a mapping node.
func lookup(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}
