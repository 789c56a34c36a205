// Package api exposes the case-assistant HTTP surface: case CRUD,
// enrichment operations, standalone tool endpoints, and admin
// endpoints for the translation cache.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/medcase-assist-server/internal/database"
	"github.com/medcase-assist-server/internal/domain"
	"github.com/medcase-assist-server/internal/middleware"
	"github.com/medcase-assist-server/internal/service"
)

// Server is the HTTP server wiring the enrichment pipeline and its
// supporting services behind Gin.
type Server struct {
	config *domain.Config
	router *gin.Engine
	server *http.Server
	logger *logrus.Logger

	db         *database.DB
	repo       domain.CaseRepository
	pipeline   *service.EnrichmentPipeline
	simplifier *service.Simplifier
	matcher    *service.InteractionMatcher
	translator *service.Translator
	cache      *service.TranslationCache
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(
	config *domain.Config,
	db *database.DB,
	repo domain.CaseRepository,
	pipeline *service.EnrichmentPipeline,
	translator *service.Translator,
	cache *service.TranslationCache,
	logger *logrus.Logger,
) *Server {
	if config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.AuditLogger())
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())
	router.Use(corsMiddleware())

	s := &Server{
		config:     config,
		router:     router,
		logger:     logger,
		db:         db,
		repo:       repo,
		pipeline:   pipeline,
		simplifier: service.NewSimplifier(),
		matcher:    service.NewInteractionMatcher(),
		translator: translator,
		cache:      cache,
	}

	s.setupRoutes()
	return s
}

// Start runs the HTTP server until the context is cancelled, then
// shuts it down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.config.Server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// Router exposes the underlying router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		cases := v1.Group("/cases")
		{
			cases.POST("", s.handleCreateCase)
			cases.GET("/:id", s.handleGetCase)
			cases.DELETE("/:id", s.handleDeleteCase)
			cases.PUT("/:id/medications", s.handleUpdateMedications)

			cases.POST("/:id/analyze", s.handleAnalyzeCase)
			cases.POST("/:id/interactions", s.handleCheckInteractions)
			cases.POST("/:id/education", s.handleGenerateEducation)
			cases.POST("/:id/report", s.handleGenerateReport)
			cases.POST("/:id/questions", s.handleAskQuestion)
			cases.GET("/:id/questions", s.handleListQuestions)
		}

		tools := v1.Group("/tools")
		{
			tools.POST("/simplify", s.handleSimplify)
			tools.POST("/translate", s.handleTranslate)
			tools.POST("/interactions", s.handleInteractionsTool)
		}

		admin := v1.Group("/admin")
		{
			admin.POST("/translation-cache/clear", s.handleCacheClear)
			admin.GET("/translation-cache/stats", s.handleCacheStats)
		}
	}
}

// corsMiddleware adds CORS headers to responses.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Correlation-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length, X-Correlation-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// handleHealth reports process and database health.
func (s *Server) handleHealth(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK

	dbStatus := "ok"
	if s.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.Health(ctx); err != nil {
			dbStatus = "unreachable"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, gin.H{
		"status":    status,
		"database":  dbStatus,
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
	})
}
