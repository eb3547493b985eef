// Package assets reads the host's asset directory: it lists media files and
// probes intrinsic image dimensions so the layout does not have to guess.
package assets

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aouyang1/beforeafter/content"
	"github.com/aouyang1/beforeafter/util"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/webp"
)

var (
	ErrOutsideRoot = errors.New("asset path escapes the asset directory")
	ErrNotAnImage  = errors.New("asset is not a supported image")
)

// headerSize is enough for filetype to recognise every format we serve.
const headerSize = 262

type Prober struct {
	root string
}

func NewProber(root string) *Prober {
	return &Prober{root: root}
}

// Resolve maps a site path such as "/img/a.jpg" to a file under the root.
func Resolve(root, src string) (string, error) {
	if strings.Contains(src, "://") || strings.HasPrefix(src, "//") {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, src)
	}
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	clean := path.Clean("/" + src)
	if clean == "/" {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, src)
	}
	return filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

// Dimensions returns the intrinsic size of the image behind src.
func (p *Prober) Dimensions(src string) (int, int, error) {
	name, err := Resolve(p.root, src)
	if err != nil {
		return 0, 0, err
	}

	f, err := os.Open(name)
	if err != nil {
		return 0, 0, fmt.Errorf("unable to open asset, %s, %w", src, err)
	}
	defer f.Close()

	head := make([]byte, headerSize)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, 0, fmt.Errorf("unable to read asset, %s, %w", src, err)
	}
	if !filetype.IsImage(head[:n]) {
		return 0, 0, fmt.Errorf("%w: %s", ErrNotAnImage, src)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, 0, fmt.Errorf("unable to rewind asset, %s, %w", src, err)
	}

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("unable to read image config, %s, %w", src, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Fill probes every gallery image whose dimensions are unknown and records
// the measured size on it. It returns how many references were filled.
func (p *Prober) Fill(c *content.Content) int {
	if c == nil || c.Sections.Gallery == nil {
		return 0
	}

	filled := 0
	for i := range c.Sections.Gallery.Items {
		item := &c.Sections.Gallery.Items[i]
		for _, ref := range []*content.ImageRef{item.Before, item.After} {
			if !ref.Present() || ref.HasDims() {
				continue
			}
			w, h, err := p.Dimensions(ref.Src)
			if err != nil {
				slog.Debug("unable to probe image dimensions", "src", ref.Src, "error", err)
				continue
			}
			ref.Kind = content.ImageDescriptor
			ref.Width, ref.Height = w, h
			filled++
		}
	}
	return filled
}

// Scan lists the images and videos under root. Files whose extension and
// content disagree are skipped.
func Scan(root string) ([]content.MediaEntry, error) {
	var entries []content.MediaEntry
	err := filepath.WalkDir(root, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		var want content.MediaType
		switch {
		case util.IsImage(name):
			want = content.MediaImage
		case util.IsVideo(name):
			want = content.MediaVideo
		default:
			return nil
		}

		kind, err := sniff(name)
		if err != nil {
			slog.Warn("unable to read media file", "name", name, "error", err)
			return nil
		}
		if kind != want {
			slog.Warn("media file content does not match its extension", "name", name, "ext", filepath.Ext(name))
			return nil
		}

		rel, err := filepath.Rel(root, name)
		if err != nil {
			return err
		}
		entries = append(entries, content.MediaEntry{
			Filename: d.Name(),
			Path:     "/" + filepath.ToSlash(rel),
			Type:     kind,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to scan asset directory, %s, %w", root, err)
	}
	return entries, nil
}

func sniff(name string) (content.MediaType, error) {
	f, err := os.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, headerSize)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	switch {
	case filetype.IsImage(head[:n]):
		return content.MediaImage, nil
	case filetype.IsVideo(head[:n]):
		return content.MediaVideo, nil
	}
	return "", nil
}
