// Package server exposes the presentation pipeline over HTTP.
package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deckforge/deckforge/render"
	"github.com/deckforge/deckforge/workflow"
)

// generateRequest is the body of POST /v1/presentations.
type generateRequest struct {
	// DocumentText is the extracted plain text to present.
	DocumentText string `json:"document_text" binding:"required"`
	// TargetSlides fixes the slide count; zero derives it from the document.
	TargetSlides int `json:"target_slides"`
	// Format selects the response: "json" (default), "html" or "markdown".
	Format string `json:"format"`
}

// Server wires the workflow coordinator into HTTP handlers. One Server
// serves many concurrent runs; the coordinator's rate limiter is the only
// state they share.
type Server struct {
	coord    *workflow.Coordinator
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGatherer sets the metrics gatherer backing GET /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// New creates a Server around the given coordinator.
func New(coord *workflow.Coordinator, opts ...Option) *Server {
	s := &Server{
		coord:    coord,
		gatherer: prometheus.DefaultGatherer,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	router.POST("/v1/presentations", s.handleGenerate)

	return router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.coord.Run(c.Request.Context(), req.DocumentText, workflow.Options{
		TargetSlides: req.TargetSlides,
	})
	if err != nil {
		if errors.Is(err, workflow.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.logger.Error("Presentation run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	switch req.Format {
	case "", "json":
		c.JSON(http.StatusOK, result)
	case "markdown":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(render.Markdown(result)))
	case "html":
		page, err := render.HTML(result)
		if err != nil {
			s.logger.Error("HTML rendering failed", "run_id", result.RunID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown format " + req.Format})
	}
}
