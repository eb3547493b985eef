// Package api is the web server hosting the gallery
package api

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/aouyang1/beforeafter/api/models"
	"github.com/aouyang1/beforeafter/api/web/templates"
	"github.com/aouyang1/beforeafter/assets"
	"github.com/aouyang1/beforeafter/content"
	"github.com/aouyang1/beforeafter/slideshow"
	"github.com/aouyang1/beforeafter/util"
	"github.com/gin-gonic/gin"
)

//go:embed web/static
var webFiles embed.FS

const (
	sseHeartbeat    = 30 * time.Second
	defaultTitle    = "Gallery"
	shutdownTimeout = 5 * time.Second
)

type Options struct {
	// AssetsDir is served as-is at the site root, like a public directory.
	AssetsDir string
	// Strict rejects posted content that needed fallbacks.
	Strict         bool
	SessionIdleTTL time.Duration
	Title          string
}

type WebServer struct {
	router   *gin.Engine
	content  ContentSource
	sessions *SessionManager
	opts     Options
}

func NewWebServer(source ContentSource, opts Options) *WebServer {
	router := gin.Default()

	if opts.Title == "" {
		opts.Title = defaultTitle
	}

	ws := &WebServer{
		router:   router,
		content:  source,
		sessions: NewSessionManager(opts.SessionIdleTTL),
		opts:     opts,
	}

	// Setup routes
	ws.setupRoutes()

	return ws
}

func (ws *WebServer) setupRoutes() {
	// Create filesystem for static files (strip "web/" prefix)
	staticFS, err := fs.Sub(webFiles, "web/static")
	if err != nil {
		panic(fmt.Sprintf("failed to create static filesystem: %v", err))
	}
	ws.router.StaticFS("/static", http.FS(staticFS))

	ws.router.GET("/", ws.handlePage)
	ws.router.GET("/gallery", ws.handleGallery)
	ws.router.POST("/render", ws.handleRender)
	ws.router.POST("/validate", ws.handleValidate)
	ws.router.GET("/media", ws.handleMedia)
	ws.router.GET("/assets/*path", func(c *gin.Context) {
		ws.serveAsset(c, c.Param("path"))
	})

	sessions := ws.router.Group("/gallery/sessions")
	sessions.POST("", ws.handleMount)
	sessions.GET("/:id", ws.handleState)
	sessions.DELETE("/:id", ws.handleUnmount)
	sessions.POST("/:id/next", ws.handleNext)
	sessions.POST("/:id/prev", ws.handlePrev)
	sessions.POST("/:id/goto/:index", ws.handleGoTo)
	sessions.GET("/:id/events", ws.handleSlideEvents)

	// everything else may be a public asset
	ws.router.NoRoute(ws.handleAsset)
}

func (ws *WebServer) Handler() http.Handler {
	return ws.router
}

func (ws *WebServer) Sessions() *SessionManager {
	return ws.sessions
}

// Start serves until ctx is cancelled, then unmounts every session.
func (ws *WebServer) Start(ctx context.Context, addr string) error {
	go ws.sessions.Run(ctx)

	if cm, ok := ws.content.(*ContentManager); ok {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-cm.Updated:
					slog.Info("content updated, new mounts use it", "active_sessions", ws.sessions.Len())
				}
			}
		}()
	}

	srv := &http.Server{
		Addr:    addr,
		Handler: ws.router,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("web server shutdown", "error", err)
		}
	}()

	slog.Info("starting web server", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start web server: %w", err)
	}
	return nil
}

func isHTMX(c *gin.Context) bool {
	return c.GetHeader("HX-Request") == "true"
}

func (ws *WebServer) fail(c *gin.Context, status int, msg string) {
	if isHTMX(c) {
		c.String(status, "Error: "+msg)
		return
	}
	c.JSON(status, models.ErrorResponse{Error: msg})
}

func renderString(ctx context.Context, component templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (ws *WebServer) renderHTML(c *gin.Context, component templ.Component) {
	html, err := renderString(c.Request.Context(), component)
	if err != nil {
		slog.Error("failed to render gallery", "error", err)
		c.String(http.StatusInternalServerError, "Failed to render gallery")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// galleryView builds the view for the current content, mounting a session
// when the gallery is a carousel.
func (ws *WebServer) galleryView() (templates.GalleryView, error) {
	g := ws.content.Content().Gallery()
	if g == nil || g.DisplayStyle.Layout() != content.DisplayCarousel {
		return templates.NewGalleryView(g, 0, ""), nil
	}
	s, err := ws.sessions.MountPending(g)
	if err != nil {
		return templates.GalleryView{}, err
	}
	return s.View(), nil
}

func (ws *WebServer) handlePage(c *gin.Context) {
	view, err := ws.galleryView()
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("Error mounting gallery: %v", err))
		return
	}
	ws.renderHTML(c, templates.Page(ws.opts.Title, templates.Gallery(view)))
}

func (ws *WebServer) handleGallery(c *gin.Context) {
	view, err := ws.galleryView()
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("Error mounting gallery: %v", err))
		return
	}
	ws.renderHTML(c, templates.Gallery(view))
}

func (ws *WebServer) decodeBody(c *gin.Context) (*content.Content, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		ws.fail(c, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return nil, false
	}
	doc, err := content.Decode(body, content.Strict(ws.opts.Strict))
	if err != nil {
		ws.fail(c, http.StatusBadRequest, fmt.Sprintf("Invalid content: %v", err))
		return nil, false
	}
	return doc, true
}

// handleRender renders posted content statically, always on the first
// slide and without a session.
func (ws *WebServer) handleRender(c *gin.Context) {
	doc, ok := ws.decodeBody(c)
	if !ok {
		return
	}
	ws.renderHTML(c, templates.Gallery(templates.NewGalleryView(doc.Gallery(), 0, "")))
}

func (ws *WebServer) handleValidate(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Invalid request body: %v", err)})
		return
	}
	doc, err := content.Decode(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: fmt.Sprintf("Invalid content: %v", err)})
		return
	}

	resp := models.ValidateResponse{Fallbacks: doc.Fallbacks}
	if g := doc.Gallery(); g != nil {
		resp.Visible = true
		resp.Items = len(g.Items)
	}
	if resp.Fallbacks == nil {
		resp.Fallbacks = []content.Fallback{}
	}
	c.JSON(http.StatusOK, resp)
}

func (ws *WebServer) handleMount(c *gin.Context) {
	s, err := ws.sessions.Mount(ws.content.Content().Gallery())
	if errors.Is(err, ErrNothingToMount) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to mount gallery: %v", err)})
		return
	}
	c.JSON(http.StatusOK, s.State())
}

func (ws *WebServer) session(c *gin.Context) (*Session, bool) {
	s, err := ws.sessions.Get(c.Param("id"))
	if err != nil {
		ws.fail(c, http.StatusNotFound, fmt.Sprintf("Session '%s' not found", c.Param("id")))
		return nil, false
	}
	return s, true
}

func (ws *WebServer) handleState(c *gin.Context) {
	s, ok := ws.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.State())
}

func (ws *WebServer) handleUnmount(c *gin.Context) {
	id := c.Param("id")
	if err := ws.sessions.Unmount(id); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: fmt.Sprintf("Session '%s' not found", id)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Session '%s' unmounted", id)})
}

// respondSlide answers navigation with the carousel fragment for htmx and
// with the slide state otherwise.
func (ws *WebServer) respondSlide(c *gin.Context, s *Session) {
	if isHTMX(c) {
		ws.renderHTML(c, templates.Carousel(s.View()))
		return
	}
	c.JSON(http.StatusOK, s.State())
}

func (ws *WebServer) handleNext(c *gin.Context) {
	s, ok := ws.session(c)
	if !ok {
		return
	}
	s.Carousel.Next()
	ws.respondSlide(c, s)
}

func (ws *WebServer) handlePrev(c *gin.Context) {
	s, ok := ws.session(c)
	if !ok {
		return
	}
	s.Carousel.Prev()
	ws.respondSlide(c, s)
}

func (ws *WebServer) handleGoTo(c *gin.Context) {
	s, ok := ws.session(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		ws.fail(c, http.StatusBadRequest, "Invalid slide index")
		return
	}
	if _, err := s.Carousel.GoTo(index); err != nil {
		if errors.Is(err, slideshow.ErrOutOfRange) {
			ws.fail(c, http.StatusBadRequest, fmt.Sprintf("Slide %d out of range [0, %d)", index, s.Carousel.Len()))
			return
		}
		ws.fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	ws.respondSlide(c, s)
}

// handleSlideEvents streams the carousel fragment on every slide change.
// The stream is the session's mount: when the viewer goes away the
// session is unmounted.
func (ws *WebServer) handleSlideEvents(c *gin.Context) {
	s, err := ws.sessions.Attach(c.Param("id"))
	if err != nil {
		ws.fail(c, http.StatusNotFound, fmt.Sprintf("Session '%s' not found", c.Param("id")))
		return
	}

	updates, cancel := s.Carousel.Subscribe()
	defer cancel()
	defer ws.sessions.Unmount(s.ID)

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	// open the stream now rather than on the first event
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-heartbeat.C:
			if _, err := ws.sessions.Get(s.ID); err != nil {
				return false
			}
			c.SSEvent("ping", "")
			return true
		case _, ok := <-updates:
			if !ok {
				return false
			}
			html, err := renderString(ctx, templates.Carousel(s.View()))
			if err != nil {
				slog.Warn("failed to render slide event", "session", s.ID, "error", err)
				return false
			}
			c.SSEvent("slide", html)
			return true
		}
	})
}

func (ws *WebServer) handleMedia(c *gin.Context) {
	if ws.opts.AssetsDir == "" {
		c.JSON(http.StatusOK, []content.MediaEntry{})
		return
	}
	entries, err := assets.Scan(ws.opts.AssetsDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to list media: %v", err)})
		return
	}
	if entries == nil {
		entries = []content.MediaEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (ws *WebServer) handleAsset(c *gin.Context) {
	ws.serveAsset(c, c.Request.URL.Path)
}

// serveAsset serves images and videos from the assets directory as-is.
func (ws *WebServer) serveAsset(c *gin.Context, p string) {
	if ws.opts.AssetsDir == "" ||
		(c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) ||
		(!util.IsImage(p) && !util.IsVideo(p)) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Not found"})
		return
	}

	name, err := assets.Resolve(ws.opts.AssetsDir, p)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Not found"})
		return
	}
	if info, err := os.Stat(name); err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: fmt.Sprintf("Asset not found: %s", p)})
		return
	}
	c.File(name)
}
