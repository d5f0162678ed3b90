// Package server exposes the render pipeline and bookmark store over HTTP.
//
// Routes:
//
//	GET    /healthz            liveness probe
//	GET    /version            build information
//	GET    /render             one encoded frame (PNG or JPEG)
//	GET    /ws/render          progressive row stream over a websocket
//	GET    /palettes           built-in palette names
//	GET    /bookmarks          saved views, newest first
//	POST   /bookmarks          save a view
//	GET    /bookmarks/{id}     one view, by id, name or preset
//	DELETE /bookmarks/{id}     remove a view
//
// Frame parameters are query values: cx, cy, width, w, h, iter, radius,
// smooth, palette, format and samples. Missing values fall back to the
// server's default options.
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/mandelview/pkg/bookmark"
	"github.com/matzehuels/mandelview/pkg/pipeline"
)

// ShutdownTimeout bounds how long Run waits for in-flight requests.
const ShutdownTimeout = 10 * time.Second

// Server serves frames and bookmarks.
type Server struct {
	Runner    *pipeline.Runner
	Bookmarks bookmark.Store
	Logger    *log.Logger

	// Defaults seeds every frame request before query values apply.
	Defaults pipeline.Options

	router chi.Router
}

// New builds a server. A nil store disables the bookmark routes.
func New(runner *pipeline.Runner, store bookmark.Store, logger *log.Logger, defaults pipeline.Options) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		Runner:    runner,
		Bookmarks: store,
		Logger:    logger,
		Defaults:  defaults,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Get("/render", s.handleRender)
	r.Get("/ws/render", s.handleRenderStream)
	r.Get("/palettes", s.handlePalettes)

	if s.Bookmarks != nil {
		r.Route("/bookmarks", func(r chi.Router) {
			r.Get("/", s.handleListBookmarks)
			r.Post("/", s.handleCreateBookmark)
			r.Get("/{id}", s.handleGetBookmark)
			r.Delete("/{id}", s.handleDeleteBookmark)
		})
	}
	return r
}

// Run listens on addr until ctx is cancelled, then drains in-flight
// requests for up to ShutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
