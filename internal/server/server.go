package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ziadkadry99/docchat/internal/client"
	"github.com/ziadkadry99/docchat/internal/db"
	"github.com/ziadkadry99/docchat/internal/documents"
	"github.com/ziadkadry99/docchat/internal/profile"
	"github.com/ziadkadry99/docchat/internal/qa"
	"github.com/ziadkadry99/docchat/internal/vectordb"
)

// Config holds server configuration.
type Config struct {
	Port           int
	DataDir        string   // uploads, SQLite DB and vector index live here
	AllowedTypes   []string // glob patterns matched against upload filenames
	MaxUploadBytes int64
	AllowAll       bool // allow all CORS origins (dev mode)
	ChatAttempts   int
	ChatBackoff    time.Duration
}

// Server is the document chat backend.
type Server struct {
	cfg      Config
	db       *db.DB
	store    vectordb.VectorStore
	chain    *qa.Chain
	docs     *documents.List
	profiles *profile.Store
	metrics  *Metrics
	registry *prometheus.Registry
	sleep    client.SleepFunc

	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all dependencies.
func New(cfg Config, database *db.DB, store vectordb.VectorStore, chain *qa.Chain) *Server {
	if cfg.ChatAttempts <= 0 {
		cfg.ChatAttempts = 3
	}
	if cfg.ChatBackoff <= 0 {
		cfg.ChatBackoff = 250 * time.Millisecond
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 50 * 1024 * 1024
	}

	reg := prometheus.NewRegistry()
	s := &Server{
		cfg:      cfg,
		db:       database,
		store:    store,
		chain:    chain,
		docs:     documents.NewList(),
		profiles: profile.NewStore(database),
		metrics:  NewMetrics(reg),
		registry: reg,
		sleep:    client.Sleep,
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", s.metrics.Handler(s.registry))

	// The websocket outlives any per-request timeout.
	r.Get("/ws/chat", s.handleWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/", s.handleIndex)
		r.Get("/documents", s.handleDocuments)
		r.Post("/upload", s.handleUpload)
		r.Post("/chat", s.handleChat)
		r.Get("/profile", s.handleGetProfile)
		r.Post("/profile", s.handleSaveProfile)
		r.Get("/debug_retrieval", s.handleDebugRetrieval)
	})

	return r
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// Documents returns the list of uploaded documents.
func (s *Server) Documents() *documents.List { return s.docs }

// Restore reloads the upload list and the persisted vector index from the
// data directory. A missing index is not an error.
func (s *Server) Restore(ctx context.Context) error {
	uploads, err := listUploads(ctx, s.db)
	if err != nil {
		return err
	}
	for _, u := range uploads {
		s.docs.Put(u.Filename, u.CreatedAt, documents.SizeLabel(u.SizeBytes))
	}

	dir := s.vectorDir()
	if _, err := os.Stat(filepath.Join(dir, vectordb.SnapshotFile)); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := s.store.Load(ctx, dir); err != nil {
		return fmt.Errorf("loading vector index: %w", err)
	}
	log.Printf("server: restored %d document(s), %d chunk(s)", len(uploads), s.store.Count())
	return nil
}

func (s *Server) uploadDir() string { return filepath.Join(s.cfg.DataDir, "uploads") }
func (s *Server) vectorDir() string { return filepath.Join(s.cfg.DataDir, "vectors") }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("docchat server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
