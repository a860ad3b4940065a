// Package web serves the inventory over a JSON API, with a server-sent event
// feed of table changes for live views.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vbonduro/homeinv/internal/backup"
	"github.com/vbonduro/homeinv/internal/photostore"
	"github.com/vbonduro/homeinv/internal/service"
	"github.com/vbonduro/homeinv/internal/watch"
)

type Server struct {
	locations  *service.LocationService
	categories *service.CategoryService
	items      *service.ItemService
	codec      *backup.Codec
	photoStore photostore.PhotoStore
	hub        *watch.Hub
	router     chi.Router
	logger     *slog.Logger
}

func NewServer(
	locations *service.LocationService,
	categories *service.CategoryService,
	items *service.ItemService,
	codec *backup.Codec,
	ps photostore.PhotoStore,
	hub *watch.Hub,
	logger *slog.Logger,
) *Server {
	s := &Server{
		locations:  locations,
		categories: categories,
		items:      items,
		codec:      codec,
		photoStore: ps,
		hub:        hub,
		router:     chi.NewRouter(),
		logger:     logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/rooms", func(r chi.Router) {
		r.Get("/", s.handleListRooms)
		r.Post("/", s.handleAddRoom)
		r.Route("/{room}", func(r chi.Router) {
			r.Patch("/", s.handleUpdateRoom)
			r.Delete("/", s.handleDeleteRoom)
			r.Get("/items", s.handleListRoomItems)

			r.Get("/containers", s.handleListContainers)
			r.Post("/containers", s.handleAddContainer)
			r.Route("/containers/{container}", func(r chi.Router) {
				r.Patch("/", s.handleUpdateContainer)
				r.Delete("/", s.handleDeleteContainer)
				r.Get("/items", s.handleListLocationItems)

				r.Get("/subcontainers", s.handleListSubContainers)
				r.Post("/subcontainers", s.handleAddSubContainer)
				r.Route("/subcontainers/{sub}", func(r chi.Router) {
					r.Patch("/", s.handleUpdateSubContainer)
					r.Delete("/", s.handleDeleteSubContainer)

					r.Get("/thirdcontainers", s.handleListThirdContainers)
					r.Post("/thirdcontainers", s.handleAddThirdContainer)
					r.Patch("/thirdcontainers/{third}", s.handleUpdateThirdContainer)
					r.Delete("/thirdcontainers/{third}", s.handleDeleteThirdContainer)
				})
			})
		})
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", s.handleListCategories)
		r.Post("/", s.handleAddCategory)
		r.Get("/{category}", s.handleGetCategory)
		r.Put("/{category}", s.handleUpdateCategory)
		r.Delete("/{category}", s.handleDeleteCategory)
	})

	r.Route("/items", func(r chi.Router) {
		r.Get("/", s.handleListItems)
		r.Post("/", s.handleAddItem)
		r.Put("/", s.handleUpdateItems)
		r.Delete("/", s.handleDeleteItems)
		r.Get("/expiring", s.handleListExpiring)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetItem)
			r.Put("/", s.handleUpdateItem)
			r.Delete("/", s.handleDeleteItem)
			r.Post("/photos", s.handleUploadPhoto)
			r.Get("/photos/{index}", s.handleGetPhoto)
			r.Get("/thumbnail", s.handleGetThumbnail)
		})
	})

	r.Get("/backup", s.handleExport)
	r.Post("/backup", s.handleImport)
	r.Get("/events", s.handleEvents)
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; img-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.router)).ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled and then shuts down, giving
// in-flight requests a few seconds to finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
