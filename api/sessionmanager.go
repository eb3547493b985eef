package api

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aouyang1/beforeafter/api/models"
	"github.com/aouyang1/beforeafter/api/web/templates"
	"github.com/aouyang1/beforeafter/content"
	"github.com/aouyang1/beforeafter/slideshow"
	"github.com/google/uuid"
)

const (
	sessionSweepInterval  = time.Minute
	DefaultSessionIdleTTL = 30 * time.Minute
	// sessions mounted by a page render that never open their event
	// stream are dropped sooner
	pendingSessionTTL = 2 * time.Minute
)

var (
	ErrSessionNotFound = errors.New("carousel session not found")
	ErrNothingToMount  = errors.New("gallery is not visible")
)

// Session is one mounted gallery. It keeps the section it was mounted with
// so later content reloads do not change a carousel under a viewer.
type Session struct {
	ID       string
	Section  *content.GallerySection
	Carousel *slideshow.Carousel

	lastSeen time.Time
	pending  bool
}

func (s *Session) View() templates.GalleryView {
	return templates.NewGalleryView(s.Section, s.Carousel.Current(), s.ID)
}

func (s *Session) State() models.SlideStateResponse {
	return models.SlideStateResponse{
		Session:                   s.ID,
		Index:                     s.Carousel.Current(),
		Count:                     s.Carousel.Len(),
		AutoRotateIntervalSeconds: int(s.Carousel.Interval() / time.Second),
		AutoRotates:               s.Section.AutoRotates(),
	}
}

// SessionManager owns the carousels of every mounted gallery and unmounts
// the ones nobody has touched within the idle TTL.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	idleTTL time.Duration
	now     func() time.Time
}

func NewSessionManager(idleTTL time.Duration) *SessionManager {
	if idleTTL <= 0 {
		idleTTL = DefaultSessionIdleTTL
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// Mount creates a session with its own carousel positioned on the first
// slide. Rotation only runs for carousel sections with a positive interval.
func (m *SessionManager) Mount(section *content.GallerySection) (*Session, error) {
	return m.mount(section, false)
}

// MountPending mounts a session for a rendered page. It is swept after
// the short pending TTL unless Attach is called first.
func (m *SessionManager) MountPending(section *content.GallerySection) (*Session, error) {
	return m.mount(section, true)
}

func (m *SessionManager) mount(section *content.GallerySection, pending bool) (*Session, error) {
	if !section.Visible() {
		return nil, ErrNothingToMount
	}

	var interval time.Duration
	if section.AutoRotates() {
		interval = section.AutoRotateInterval
	}
	carousel, err := slideshow.New(len(section.Items), slideshow.WithInterval(interval))
	if err != nil {
		return nil, err
	}

	s := &Session{
		ID:       uuid.NewString(),
		Section:  section,
		Carousel: carousel,
		pending:  pending,
	}

	m.mu.Lock()
	s.lastSeen = m.now()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	carousel.Start()
	slog.Debug("mounted carousel session", "session", s.ID, "slides", len(section.Items), "interval", interval)
	return s, nil
}

// Get returns a live session and marks it as seen.
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.lastSeen = m.now()
	return s, nil
}

// Attach marks a session as watched by an event stream so it gets the
// full idle TTL.
func (m *SessionManager) Attach(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.pending = false
	s.lastSeen = m.now()
	return s, nil
}

// Unmount stops the session's carousel and forgets it.
func (m *SessionManager) Unmount(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.Carousel.Stop()
	slog.Debug("unmounted carousel session", "session", id)
	return nil
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep unmounts sessions idle for longer than their TTL and returns how
// many were removed.
func (m *SessionManager) Sweep() int {
	m.mu.Lock()
	now := m.now()
	var idle []*Session
	for id, s := range m.sessions {
		ttl := m.idleTTL
		if s.pending && pendingSessionTTL < ttl {
			ttl = pendingSessionTTL
		}
		if now.Sub(s.lastSeen) > ttl {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.Carousel.Stop()
	}
	if len(idle) > 0 {
		slog.Info("unmounted idle carousel sessions", "count", len(idle))
	}
	return len(idle)
}

// Close unmounts every session.
func (m *SessionManager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Carousel.Stop()
	}
}

func (m *SessionManager) Run(ctx context.Context) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Close()
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
