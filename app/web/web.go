// Package web implements the JSON API server for the job board
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/didip/tollbooth/v8"
	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/careerhub/jobboard/app/store"
)

// JobStore defines the store operations the server exposes
type JobStore interface {
	List() ([]store.Job, error)
	Get(id string) (store.Job, error)
	Create(input store.JobInput) (store.Job, error)
	Update(id string, patch store.Patch) (store.Job, error)
	Archive(id string) (store.Job, error)
	Delete(id string) error
	Export() (data []byte, filename string, err error)
	Import(data []byte) error
	Reset() error
}

// Polisher rewrites a posting description, always returns usable text
type Polisher interface {
	Polish(ctx context.Context, title, description string) string
}

// Notifier gets posting lifecycle events, delivery is its own concern
type Notifier interface {
	OnCreated(ctx context.Context, job store.Job)
	OnArchived(ctx context.Context, job store.Job)
}

// Server represents the web server
type Server struct {
	store          JobStore
	polisher       Polisher
	notifier       Notifier // optional, nil disables notifications
	version        string
	passwordHash   string // bcrypt hash for basic auth, empty disables auth
	notifyTimeout  time.Duration
	csrfProtection *http.CrossOriginProtection
	startTime      time.Time
}

// Config holds server configuration
type Config struct {
	Store         JobStore
	Polisher      Polisher
	Notifier      Notifier
	Version       string
	PasswordHash  string // bcrypt hash for basic auth (empty to disable)
	NotifyTimeout time.Duration
}

// rate limit for polish calls, each one hits the paid external service
var polishLimiter = tollbooth.NewLimiter(1, nil)

// New creates a new web server
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("web server initialization failed: store is required")
	}
	if cfg.Polisher == nil {
		return nil, fmt.Errorf("web server initialization failed: polisher is required")
	}

	notifyTimeout := cfg.NotifyTimeout
	if notifyTimeout == 0 {
		notifyTimeout = 30 * time.Second
	}

	return &Server{
		store:          cfg.Store,
		polisher:       cfg.Polisher,
		notifier:       cfg.Notifier,
		version:        cfg.Version,
		passwordHash:   cfg.PasswordHash,
		notifyTimeout:  notifyTimeout,
		csrfProtection: http.NewCrossOriginProtection(),
		startTime:      time.Now(),
	}, nil
}

// Run starts the web server and blocks until the context is canceled
func (s *Server) Run(ctx context.Context, address string) error {
	server := &http.Server{
		Addr:              address,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] failed to shutdown server: %v", err)
		}
	}()

	log.Printf("[INFO] starting web server on %s", address)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web server failed: %w", err)
	}
	return nil
}

// routes returns the http.Handler with all routes configured
func (s *Server) routes() http.Handler {
	router := routegroup.New(http.NewServeMux())

	// global middleware - applied to all routes
	router.Use(
		rest.RealIP,
		rest.Recoverer(log.Default()),
		rest.Throttle(1000),
		rest.AppInfo("jobboard", "careerhub", s.version),
		rest.Ping,
		rest.Trace,
		rest.SizeLimit(256*1024), // 256KB max request size, covers backup imports
		logger.New(logger.Log(log.Default()), logger.Prefix("[DEBUG]")).Handler,
	)

	if s.passwordHash != "" {
		log.Printf("[INFO] authentication enabled for API")
		router.Use(s.authMiddleware)
	}

	router.Mount("/api/v1").Route(func(api *routegroup.Bundle) {
		api.Use(rest.NoCache)
		api.Use(s.csrfProtection.Handler) // CSRF protection for POST endpoints

		api.HandleFunc("GET /jobs", s.handleListJobs)
		api.HandleFunc("POST /jobs", s.handleCreateJob)
		api.HandleFunc("GET /jobs/{id}", s.handleGetJob)
		api.HandleFunc("PATCH /jobs/{id}", s.handleUpdateJob)
		api.HandleFunc("POST /jobs/{id}/archive", s.handleArchiveJob)
		api.HandleFunc("DELETE /jobs/{id}", s.handleDeleteJob)
		api.With(tollbooth.HTTPMiddleware(polishLimiter)).HandleFunc("POST /jobs/{id}/polish", s.handlePolishJob)

		api.HandleFunc("GET /export", s.handleExport)
		api.HandleFunc("POST /import", s.handleImport)
		api.HandleFunc("POST /reset", s.handleReset)
		api.HandleFunc("GET /status", s.handleStatus)
	})

	return router
}
