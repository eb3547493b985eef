package api

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/aouyang1/beforeafter/assets"
	"github.com/aouyang1/beforeafter/content"
	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 250 * time.Millisecond

// ContentSource hands out the content the gallery renders.
type ContentSource interface {
	Content() *content.Content
}

// StaticContent serves a fixed content object.
type StaticContent struct {
	C *content.Content
}

func (s StaticContent) Content() *content.Content {
	return s.C
}

// ContentManager keeps the decoded content file in memory and reloads it
// when the file changes. A reload that fails keeps the previous content.
type ContentManager struct {
	path   string
	strict bool
	prober *assets.Prober

	mu      sync.RWMutex
	current *content.Content

	Updated chan bool
}

// NewContentManager loads the content file once. prober may be nil to skip
// dimension probing.
func NewContentManager(path string, strict bool, prober *assets.Prober) (*ContentManager, error) {
	m := &ContentManager{
		path:    path,
		strict:  strict,
		prober:  prober,
		Updated: make(chan bool, 1),
	}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *ContentManager) Content() *content.Content {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *ContentManager) Reload() error {
	c, err := content.DecodeFile(m.path, content.Strict(m.strict))
	if err != nil {
		return fmt.Errorf("unable to load content, %s, %w", m.path, err)
	}
	for _, f := range c.Fallbacks {
		slog.Warn("content value replaced by default", "field", f.Field, "value", f.Value, "reason", f.Reason)
	}
	if m.prober != nil {
		if n := m.prober.Fill(c); n > 0 {
			slog.Info("probed gallery image dimensions", "count", n)
		}
	}

	m.mu.Lock()
	m.current = c
	m.mu.Unlock()

	items := 0
	if g := c.Gallery(); g != nil {
		items = len(g.Items)
	}
	slog.Info("loaded content", "path", m.path, "visible_items", items)
	return nil
}

// Watch reloads the content whenever its file is written, created or
// renamed into place, until ctx is done. The directory is watched so
// editors that replace the file are picked up.
func (m *ContentManager) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to create content watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		return fmt.Errorf("unable to watch content directory, %s, %w", m.path, err)
	}

	target := filepath.Clean(m.path)
	var timer *time.Timer
	reload := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case <-reload:
			if err := m.Reload(); err != nil {
				slog.Warn("content reload failed, keeping previous content", "error", err)
				continue
			}
			select {
			case m.Updated <- true:
			default:
				// Channel is full, skip
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("content watcher error", "error", err)
		}
	}
}
