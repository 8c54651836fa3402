// Package server exposes the multipole tools over HTTP for agent frameworks.
//
//	POST /tool     execute a tool call
//	GET  /schema   tool schema for agent registration
//	GET  /health   liveness check
//	GET  /metrics  Prometheus metrics
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	multipole "github.com/njchilds90/gomultipole"
)

const (
	maxBodyBytes    = 1 << 20 // 1 MiB
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	shutdownTimeout = 10 * time.Second
)

// Config holds the server settings.
type Config struct {
	ListenAddr string
}

// Server serves tool calls against one multipole.Service.
type Server struct {
	config  Config
	service atomic.Pointer[multipole.Service]
	logger  *slog.Logger
	engine  *gin.Engine
	metrics *metrics
	tools   []string
}

// New builds a Server with its own metrics registry.
func New(config Config, service *multipole.Service, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	reg := prometheus.NewRegistry()
	s := &Server{
		config:  config,
		logger:  logger,
		metrics: newMetrics(reg),
		tools:   multipole.ToolNames(),
	}
	s.service.Store(service)

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(s.requestID(), s.accessLog(), s.recovery())

	r.POST("/tool", s.handleTool)
	r.GET("/schema", s.handleSchema)
	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	s.engine = r
	return s
}

// SetService swaps the service used by later tool calls. Calls already in
// flight finish on the previous one.
func (s *Server) SetService(service *multipole.Service) {
	s.service.Store(service)
	s.logger.Info("tool service replaced",
		"max_order", service.Config().Engine.MaxOrder,
		"workers", service.Config().Engine.Workers,
	)
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.ListenAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("multipole tool server listening", "listen", s.config.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down tool server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// ============================================================
// Middleware
// ============================================================

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, rec any) {
		s.logger.Error("panic in handler",
			"path", c.FullPath(),
			requestIDKey, c.GetString(requestIDKey),
			"panic", fmt.Sprint(rec),
			"stack", string(debug.Stack()),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		status := c.Writer.Status()
		s.metrics.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		s.metrics.latency.WithLabelValues(route).Observe(elapsed.Seconds())

		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", elapsed,
			requestIDKey, c.GetString(requestIDKey),
		)
	}
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleTool(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	defer c.Request.Body.Close()

	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()

	var req multipole.ToolRequest
	if err := dec.Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Ensure there's no trailing junk.
	if dec.More() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: trailing data"})
		return
	}

	start := time.Now()
	resp := s.service.Load().HandleToolCall(req)

	tool := req.Tool
	if !slices.Contains(s.tools, tool) {
		tool = "unknown"
	}
	outcome := "ok"
	if resp.Error != "" {
		outcome = "error"
		s.logger.Debug("tool call failed", "tool", req.Tool, "error", resp.Error, requestIDKey, c.GetString(requestIDKey))
	}
	s.metrics.toolCalls.WithLabelValues(tool, outcome).Inc()
	s.metrics.toolLatency.WithLabelValues(tool).Observe(time.Since(start).Seconds())

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSchema(c *gin.Context) {
	c.Data(http.StatusOK, "application/json", []byte(multipole.ToolSpec()))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": multipole.Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
