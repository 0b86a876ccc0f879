// Package api exposes the partition decoders over HTTP for local
// inspection tooling: raw partition images go in, decoded records and
// warnings come out as JSON.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/espcarve/espcarve/pkg/nvs"
)

// ServerConfig holds the decode service configuration.
type ServerConfig struct {
	Bind string
	Port int

	// MaxImageBytes caps the request body size. Zero means the default of
	// 64 MiB, comfortably above the largest ESP32 flash part.
	MaxImageBytes int64

	// Options are the default record filters, overridable per request via
	// the written and erased query parameters.
	Options nvs.Options
}

// Server handles decode requests.
type Server struct {
	config  ServerConfig
	metrics *Metrics
	log     *zap.Logger
}

// NewServer creates a new decode server.
func NewServer(config ServerConfig, metrics *Metrics, log *zap.Logger) *Server {
	if config.MaxImageBytes == 0 {
		config.MaxImageBytes = 64 << 20
	}
	return &Server{config: config, metrics: metrics, log: log}
}

// Router builds the HTTP routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", s.metrics.InstrumentHandler("GET", "/healthz", s.handleHealth))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/nvs", s.metrics.InstrumentHandler("POST", "/api/v1/nvs", s.handleDecodeNVS))
		r.Post("/mi", s.metrics.InstrumentHandler("POST", "/api/v1/mi", s.handleDecodeMi))
	})

	return r
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.config.Bind, s.config.Port)
	s.log.Info("decode service listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, s.Router())
}
