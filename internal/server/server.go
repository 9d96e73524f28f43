// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"trendcloud/internal/config"
	"trendcloud/internal/domain/hashtag"
	"trendcloud/internal/metrics"
	"trendcloud/internal/server/handlers"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// Dependencies are the collaborators the routes need. DocumentStore and
// EventBus may be nil; their routes are then not mounted.
type Dependencies struct {
	Service       hashtag.Service
	DocumentStore handlers.DocumentStore
	EventBus      handlers.Subscriber
	EventsSubject string
	Metrics       *metrics.Metrics
	Log           *zap.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, deps Dependencies) *Server {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(log.Named("http"), deps.Metrics))
	router.Use(middleware.Recoverer)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	hashtagHandler := handlers.NewHashtagHandler(deps.Service, log.Named("hashtags"))

	// Routes
	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			r.Route("/hashtags", func(r chi.Router) {
				r.Get("/", hashtagHandler.GetHashtags)
				r.Get("/{text}", hashtagHandler.GetHashtag)
			})
			r.Get("/countries", hashtagHandler.GetCountries)
			r.Get("/wordcloud", hashtagHandler.GetWordCloud)
			r.Post("/refresh", hashtagHandler.Refresh)

			if deps.DocumentStore != nil {
				sourceHandler := handlers.NewSourceHandler(deps.DocumentStore, deps.Service, log.Named("sources"))
				r.Route("/sources", func(r chi.Router) {
					r.Get("/", sourceHandler.ListDocuments)
					r.Post("/", sourceHandler.UploadDocument)
				})
			}
		})
	})

	// WebSocket endpoint for refresh notifications
	if deps.EventBus != nil {
		router.Get("/ws/wordcloud", handlers.WordCloudStreamHandler(deps.EventBus, deps.EventsSubject, log.Named("stream")))
	}

	if deps.Metrics != nil {
		router.Handle("/metrics", promhttp.Handler())
	}

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
