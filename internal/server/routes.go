package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/danmuck/soltrace/internal/auth"
	"github.com/danmuck/soltrace/internal/observability"
	"github.com/danmuck/soltrace/internal/pipeline"
	"github.com/danmuck/soltrace/typed"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type classifyRequest struct {
	Logs []string `json:"logs"`
}

type treeRequest struct {
	Logs  []string `json:"logs"`
	Typed bool     `json:"typed"`
}

// RegisterRoutes installs the API on the router. Repeat calls are no-ops.
func (s *Server) RegisterRoutes() {
	s.routesOnce.Do(s.registerRoutes)
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.Appeared).String(),
			"service": s.Name,
			"version": version,
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1")
	if s.Auth != nil {
		v1.Use(auth.Middleware(s.Auth))
	}
	v1.POST("/classify", s.handleClassify)
	v1.POST("/tree", s.handleTree)
}

func (s *Server) handleClassify(c *gin.Context) {
	var req classifyRequest
	if !s.bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"lines": pipeline.Classify(req.Logs)})
}

func (s *Server) handleTree(c *gin.Context) {
	var req treeRequest
	if !s.bind(c, &req) {
		return
	}
	res, err := pipeline.Tree(req.Logs, req.Typed)
	if err != nil {
		reason := typed.Reason(err)
		c.Set(observability.ReasonKey, reason)
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  err.Error(),
			"reason": reason,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"frames": res.Value()})
}

// bind decodes a size-limited JSON body, answering 400 or 413 itself on
// failure.
func (s *Server) bind(c *gin.Context, dst any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.MaxBody)
	if err := c.ShouldBindJSON(dst); err != nil {
		status, reason := http.StatusBadRequest, "bad_request"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status, reason = http.StatusRequestEntityTooLarge, "body_too_large"
		}
		c.Set(observability.ReasonKey, reason)
		c.JSON(status, gin.H{"error": err.Error(), "reason": reason})
		return false
	}
	return true
}
