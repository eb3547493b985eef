// Package util is a set of utility variables or methods
package util

import (
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

var SupportedImageExt = mapset.NewSet(
	".jpeg", ".jpg",
	".png",
	".gif",
	".webp",
)

var SupportedVideoExt = mapset.NewSet(
	".mp4", ".webm", ".mov",
)

// IsImage reports whether the file name carries a servable image extension.
func IsImage(name string) bool {
	return SupportedImageExt.Contains(strings.ToLower(filepath.Ext(name)))
}

// IsVideo reports whether the file name carries a servable video extension.
func IsVideo(name string) bool {
	return SupportedVideoExt.Contains(strings.ToLower(filepath.Ext(name)))
}
