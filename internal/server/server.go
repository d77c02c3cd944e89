// Package server exposes classification and call tree reconstruction over
// HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/danmuck/soltrace/internal/auth"
	"github.com/danmuck/soltrace/internal/config"
	"github.com/danmuck/soltrace/internal/observability"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const version = "0.1.0"

type Server struct {
	Name     string
	Addr     string
	MaxBody  int64
	Appeared time.Time
	Auth     auth.Validator

	router     *gin.Engine
	routesOnce sync.Once
}

func New(cfg config.ServerConfig) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(cfg.Name))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CorsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = config.Default().Server.MaxBodyBytes
	}

	s := &Server{
		Name:     cfg.Name,
		Addr:     cfg.Addr,
		MaxBody:  maxBody,
		Appeared: time.Now(),
		router:   r,
	}
	if cfg.APIToken != "" {
		s.Auth = auth.StaticToken{Token: cfg.APIToken}
	}
	return s
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

// Serve registers routes (once per Server) and blocks until ctx is done or the listener
// fails. Cancelling ctx drains in-flight requests for up to five seconds.
func (s *Server) Serve(ctx context.Context) error {
	s.RegisterRoutes()
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("server", s.Name).Str("addr", s.Addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info().Str("server", s.Name).Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
