package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/astroadvisor/internal/api/handler"
	"github.com/jon4hz/astroadvisor/internal/api/middleware"
	"github.com/jon4hz/astroadvisor/internal/auth"
	"github.com/jon4hz/astroadvisor/internal/config"
	"github.com/jon4hz/astroadvisor/internal/engine"
	"github.com/jon4hz/astroadvisor/internal/gravatar"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg          *config.Config
	ginEngine    *gin.Engine
	engine       *engine.Engine
	authProvider *auth.Provider
	avatars      *gravatar.Avatars
	metrics      *middleware.Metrics
	rateLimiter  *middleware.RateLimiter
}

// New creates the HTTP server and registers all routes.
func New(cfg *config.Config, e *engine.Engine) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if e == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if err := gravatar.Validate(cfg.Gravatar); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:          cfg,
		ginEngine:    gin.New(),
		engine:       e,
		authProvider: auth.NewProvider(e.Tokens(), e.DB()),
		avatars:      gravatar.New(cfg.Gravatar),
	}
	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		s.metrics = middleware.NewMetrics()
	}
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		s.rateLimiter = middleware.NewRateLimiter(cfg.RateLimit)
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.ginEngine.Use(gin.Recovery(), middleware.Logger())
	if s.metrics != nil {
		s.ginEngine.Use(s.metrics.Instrument())
	}
	s.ginEngine.Use(cors.New(corsConfig(s.cfg.CORSOrigins)))
	s.ginEngine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

// aiRoute guards routes that call the chat completion API.
func (s *Server) aiRoute() []gin.HandlerFunc {
	if s.rateLimiter == nil {
		return nil
	}
	return []gin.HandlerFunc{s.rateLimiter.Handler()}
}

func (s *Server) setupRoutes() {
	h := handler.New(s.engine, s.avatars)
	r := s.ginEngine

	r.GET("/", h.Root)
	r.GET("/healthz", h.Healthz)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	r.POST("/register", h.Register)
	r.POST("/token", h.Token)

	// reference data
	r.GET("/philosophies/", h.ListPhilosophies)
	r.GET("/philosophies/:id", h.GetPhilosophy)
	r.GET("/religions/", h.ListReligions)
	r.GET("/religions/:id", h.GetReligion)
	r.GET("/astrological-systems/", h.ListAstrologicalSystems)
	r.GET("/astrological-systems/:id", h.GetAstrologicalSystem)
	r.GET("/search/", h.Search)
	r.GET("/knowledge", h.Knowledge)

	r.POST("/api/quick-advice", append(s.aiRoute(), h.QuickAdvice)...)
	r.POST("/guru-chat/:type/:id", append(s.aiRoute(), h.GuruChat)...)

	protected := r.Group("/")
	protected.Use(s.authProvider.RequireAuth())

	protected.GET("/users/me", h.Me)
	protected.PUT("/users/me", h.UpdateMe)
	protected.DELETE("/users/me", h.DeleteMe)
	protected.GET("/users/me/readings", h.MyReadings)

	protected.POST("/get-advice", append(s.aiRoute(), h.GetAdvice)...)

	protected.GET("/readings/", h.ListReadings)
	protected.POST("/readings/", h.CreateReading)
	protected.GET("/readings/:id", h.GetReading)
	protected.DELETE("/readings/:id", h.DeleteReading)

	protected.POST("/users/:id/preferences/", h.CreatePreferences)
	protected.GET("/users/:id/preferences/", h.GetPreferences)
	protected.PUT("/users/:id/preferences/", h.UpdatePreferences)
	protected.POST("/users/:id/history/", h.CreateHistory)
	protected.GET("/users/:id/history/", h.ListHistory)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.ginEngine
}

// Run serves HTTP until ctx is canceled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.ginEngine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", "listen", s.cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return <-errCh
}
