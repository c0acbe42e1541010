// Package api serves classification and quoting over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/hyperifyio/cotizador/internal/app"
	"github.com/hyperifyio/cotizador/internal/telemetry"
)

// Default timeout values.
const (
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// Options configure the HTTP server.
type Options struct {
	Addr string
	// RPS and Burst size the shared token bucket; RPS 0 disables limiting.
	RPS   float64
	Burst int
	Debug bool
}

// Server is the HTTP API with lifecycle management.
type Server struct {
	router *gin.Engine
	server *http.Server
}

// NewServer builds the router over a. m may be nil, in which case a private
// registry is created so /metrics still answers.
func NewServer(a *app.App, m *telemetry.Metrics, opts Options) *Server {
	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if m == nil {
		m = telemetry.New(nil)
	}
	a.SetMetrics(m)

	var limiter *rate.Limiter
	if opts.RPS > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = int(opts.RPS) + 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RPS), burst)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggerMiddleware())
	router.Use(metricsMiddleware(m))
	setupRoutes(router, &handler{app: a}, m, limiter)

	return &Server{
		router: router,
		server: &http.Server{
			Addr:         opts.Addr,
			Handler:      router,
			ReadTimeout:  defaultReadTimeout,
			WriteTimeout: defaultWriteTimeout,
			IdleTimeout:  defaultIdleTimeout,
		},
	}
}

// Router returns the underlying gin engine.
func (s *Server) Router() *gin.Engine { return s.router }

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", s.server.Addr).Msg("starting HTTP server")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	log.Info().Msg("HTTP server stopped")
	return nil
}
