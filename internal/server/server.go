// Package server exposes the document pipeline over HTTP: multipart
// upload, processing, question answering and flush endpoints, plus a
// WebSocket chat channel.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Pipeline is the part of the orchestrator the server needs.
type Pipeline interface {
	SubmitDocument(ctx context.Context, userID, filename string, data []byte) (string, error)
	BuildIndex(ctx context.Context, userID string) (string, error)
	Ask(ctx context.Context, userID, question string) (string, error)
	GenerateQuestions(ctx context.Context, userID, documentText string, n int) ([]string, error)
	Flush(ctx context.Context, userID string) (string, error)
}

// Config holds server configuration.
type Config struct {
	Port          int
	MaxUploadSize int64 // bytes; 0 means the default of 32 MiB
	AllowAll      bool  // allow all CORS origins (dev mode)
}

// Server serves the document question-answering API.
type Server struct {
	cfg        Config
	pipeline   Pipeline
	router     chi.Router
	httpServer *http.Server
}

// New creates a server around the given pipeline.
func New(cfg Config, pipeline Pipeline) *Server {
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = 32 << 20
	}
	s := &Server{cfg: cfg, pipeline: pipeline}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "userId"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/upload", s.handleUpload)
	r.Post("/process_pdf", s.handleProcess)
	r.Post("/ask", s.handleAsk)
	r.Post("/get-questions", s.handleGetQuestions)
	r.Post("/flush", s.handleFlush)
	r.Get("/ws/chat", s.handleWebSocket)

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("askdoc server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
