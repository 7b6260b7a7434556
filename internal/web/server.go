// Package web provides the HTTP server and JSON API for the records
// service: import profiles, template downloads, batch imports, and the
// identifier preview and create endpoints.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jpcardenas/archivador/internal/catalog"
	"github.com/jpcardenas/archivador/internal/config"
	"github.com/jpcardenas/archivador/internal/importer"
	"github.com/jpcardenas/archivador/internal/numbering"
	"github.com/jpcardenas/archivador/internal/records"
)

// Server is the HTTP server for the records application.
type Server struct {
	cfg       *config.Config
	catalog   *catalog.Store
	engine    *importer.Engine
	inventory *records.InventoryStore
	acts      *records.ActStore
	users     *records.UserStore
	router    *chi.Mux
	server    *http.Server
}

// NewServer wires the stores and the import engine onto a shared
// allocator and builds the router.
func NewServer(cfg *config.Config, pool *pgxpool.Pool) *Server {
	alloc := numbering.NewAllocator()
	s := &Server{
		cfg:       cfg,
		catalog:   catalog.NewStore(pool),
		engine:    importer.NewEngine(&cfg.Import),
		inventory: records.NewInventoryStore(pool, alloc),
		acts:      records.NewActStore(pool, alloc),
		users:     records.NewUserStore(pool),
		router:    chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

	s.router.Use(securityHeaders)

	// Rate limiting: 100 requests per minute per IP
	limiter := newRateLimiter(100, time.Minute)
	s.router.Use(limiter.middleware)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Catalog listings
		r.Get("/catalog/units", s.handleListUnits)
		r.Get("/catalog/units/{id}/assignments", s.handleUnitAssignments)
		r.Get("/catalog/series", s.handleListSeries)
		r.Put("/catalog/series/{id}/context", s.handleSetSeriesContext)
		r.Get("/catalog/subseries", s.handleListSubseries)

		// Import profiles
		r.Get("/profiles", s.handleListProfiles)
		r.Get("/template/{profileKey}", s.handleDownloadTemplate)
		r.Post("/import/{profileKey}", s.handleImport)

		// Inventory records
		r.Get("/records/next-code", s.handleNextReferenceCode)
		r.Post("/records", s.handleCreateRecord)
		r.Delete("/records/{id}", s.handleDeleteRecord)
		r.Post("/records/{id}/restore", s.handleRestoreRecord)

		// Administrative acts
		r.Get("/acts/next-filing-number", s.handleNextFilingNumber)
		r.Post("/acts", s.handleCreateAct)
		r.Delete("/acts/{id}", s.handleDeleteAct)
		r.Post("/acts/{id}/restore", s.handleRestoreAct)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
