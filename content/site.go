package content

import (
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"gopkg.in/yaml.v3"
)

type OverlayType string

const (
	OverlayNone      OverlayType = "none"
	OverlayDark      OverlayType = "dark"
	OverlayLight     OverlayType = "light"
	OverlayPrimary   OverlayType = "primary"
	OverlaySecondary OverlayType = "secondary"
	OverlayAccent    OverlayType = "accent"
	OverlayCustom    OverlayType = "custom"
)

type VideoAlignment string

const (
	AlignCenter VideoAlignment = "center"
	AlignTop    VideoAlignment = "top"
	AlignBottom VideoAlignment = "bottom"
)

var (
	knownOverlays = mapset.NewSet(
		OverlayNone, OverlayDark, OverlayLight, OverlayPrimary,
		OverlaySecondary, OverlayAccent, OverlayCustom,
	)
	knownAlignments = mapset.NewSet(AlignCenter, AlignTop, AlignBottom)
)

// OverlaySettings describes the tint drawn over a hero video or image.
type OverlaySettings struct {
	OverlayType    OverlayType    `json:"overlayType"`
	OverlayOpacity float64        `json:"overlayOpacity"`
	OverlayColor   string         `json:"overlayColor,omitempty"`
	VideoAlignment VideoAlignment `json:"videoAlignment,omitempty"`
}

type MediaType string

const (
	MediaVideo MediaType = "video"
	MediaImage MediaType = "image"
)

// MediaEntry is one file of the host's media library.
type MediaEntry struct {
	Filename string    `json:"filename"`
	Path     string    `json:"path"`
	Type     MediaType `json:"type"`
}

// SiteConfig is the site wide media configuration. The gallery does not
// consume it; it is decoded so the host can read it from the same
// document. Keys this type does not know are kept in Extra.
type SiteConfig struct {
	HeroVideos        map[string]string          `json:"heroVideos"`
	HeroBackgrounds   map[string]string          `json:"heroBackgrounds"`
	HeroOverlays      map[string]OverlaySettings `json:"heroOverlays"`
	HeroOverlayByPath map[string]OverlaySettings `json:"heroOverlayByPath"`
	Extra             map[string]any             `json:"extra,omitempty"`
}

func (d *decoder) site(path string, n *yaml.Node) *SiteConfig {
	if n.Kind != yaml.MappingNode {
		d.fallback(path, n.Value, "site config is not a mapping, ignoring it")
		return nil
	}

	s := &SiteConfig{
		HeroVideos:        map[string]string{},
		HeroBackgrounds:   map[string]string{},
		HeroOverlays:      map[string]OverlaySettings{},
		HeroOverlayByPath: map[string]OverlaySettings{},
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, n.Content[i+1]
		field := path + "." + key
		switch key {
		case "heroVideos":
			d.stringMap(field, val, s.HeroVideos)
		case "heroBackgrounds":
			d.stringMap(field, val, s.HeroBackgrounds)
		case "heroOverlays":
			d.overlayMap(field, val, s.HeroOverlays)
		case "heroOverlayByPath":
			d.overlayMap(field, val, s.HeroOverlayByPath)
		default:
			var v any
			if err := val.Decode(&v); err != nil {
				d.fallback(field, "", "unreadable value, dropping it")
				continue
			}
			if s.Extra == nil {
				s.Extra = map[string]any{}
			}
			s.Extra[key] = v
		}
	}
	return s
}

func (d *decoder) stringMap(path string, n *yaml.Node, out map[string]string) {
	if isNull(n) {
		return
	}
	if n.Kind != yaml.MappingNode {
		d.fallback(path, n.Value, "not a mapping, ignoring it")
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if v := d.text(path+"."+key, n.Content[i+1]); v != "" {
			out[key] = v
		}
	}
}

func (d *decoder) overlayMap(path string, n *yaml.Node, out map[string]OverlaySettings) {
	if isNull(n) {
		return
	}
	if n.Kind != yaml.MappingNode {
		d.fallback(path, n.Value, "not a mapping, ignoring it")
		return
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		field := path + "." + key
		if n.Content[i+1].Kind != yaml.MappingNode {
			d.fallback(field, n.Content[i+1].Value, "overlay is not a mapping, skipping it")
			continue
		}
		out[key] = d.overlay(field, n.Content[i+1])
	}
}

func (d *decoder) overlay(path string, n *yaml.Node) OverlaySettings {
	o := OverlaySettings{
		OverlayType:    OverlayType(d.text(path+".overlayType", lookup(n, "overlayType"))),
		OverlayColor:   d.text(path+".overlayColor", lookup(n, "overlayColor")),
		VideoAlignment: VideoAlignment(d.text(path+".videoAlignment", lookup(n, "videoAlignment"))),
	}
	if !knownOverlays.Contains(o.OverlayType) {
		if o.OverlayType != "" {
			d.fallback(path+".overlayType", string(o.OverlayType), "unknown overlay type, using none")
		}
		o.OverlayType = OverlayNone
	}
	if o.VideoAlignment != "" && !knownAlignments.Contains(o.VideoAlignment) {
		d.fallback(path+".videoAlignment", string(o.VideoAlignment), "unknown alignment, dropping it")
		o.VideoAlignment = ""
	}

	if op := lookup(n, "overlayOpacity"); op != nil && !isNull(op) {
		f, err := strconv.ParseFloat(strings.TrimSpace(op.Value), 64)
		if op.Kind != yaml.ScalarNode || err != nil {
			d.fallback(path+".overlayOpacity", op.Value, "not a number, using 0")
		} else {
			o.OverlayOpacity = f
		}
	}
	return o
}
