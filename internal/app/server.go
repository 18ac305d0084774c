package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/markdave123-py/Lumen/internal/api/handlers"
	appMiddleware "github.com/markdave123-py/Lumen/internal/api/middlewares"
	"github.com/markdave123-py/Lumen/internal/config"
	"github.com/markdave123-py/Lumen/internal/core"
	"github.com/markdave123-py/Lumen/internal/core/ingestion_engine"
	"github.com/markdave123-py/Lumen/internal/core/metrics"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, ing ingestion_engine.Ingestor, summarizer core.Summarizer, m *metrics.PipelineMetrics, gatherer prometheus.Gatherer, mcpSrv *mcp.Server, logger *slog.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           NewRouter(cfg, ing, summarizer, m, gatherer, mcpSrv, logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// NewRouter returns the chi router; split out so tests can drive it with httptest.
func NewRouter(cfg *config.Config, ing ingestion_engine.Ingestor, summarizer core.Summarizer, m *metrics.PipelineMetrics, gatherer prometheus.Gatherer, mcpSrv *mcp.Server, logger *slog.Logger) http.Handler {
	docHandler := handlers.NewDocumentHandler(ing, logger)
	summaryHandler := handlers.NewSummaryHandler(ing, summarizer, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appMiddleware.Instrument(m))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	if mcpSrv != nil {
		r.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return mcpSrv }, nil))
	}

	// API routes
	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(60 * time.Second))

		api.With(appMiddleware.BodyLimit(cfg.MaxUploadBytes)).Post("/files", docHandler.UploadFiles)

		api.Get("/tasks", docHandler.ListTasks)
		api.Route("/tasks/{id}", func(task chi.Router) {
			task.Get("/", docHandler.GetTask)
			task.Delete("/", docHandler.DiscardTask)
			task.Get("/preview", docHandler.GetPreview)
			task.Post("/summary", summaryHandler.Summarize)
		})
	})

	return r
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
