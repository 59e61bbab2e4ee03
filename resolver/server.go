// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server exposes a Resolver over HTTP.
type Server struct {
	resolver *Resolver
	gatherer prometheus.Gatherer
	logger   *zap.Logger
}

// ResolveResponse is the body of POST /resolve-place.
type ResolveResponse struct {
	ResolvedPlace

	Debug *DebugInfo `json:"debug,omitempty"`
}

// DebugInfo carries the trace when the caller asked for it.
type DebugInfo struct {
	Steps []TraceStep `json:"steps"`
}

type geocodeRequest struct {
	Address string `json:"address"`
}

// NewServer creates a server. gatherer may be nil to disable /metrics.
func NewServer(resolver *Resolver, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Server{
		resolver: resolver,
		gatherer: gatherer,
		logger:   logger,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())

	r.POST("/resolve-place", s.resolvePlace)
	r.POST("/geocode", s.geocode)
	r.GET("/place-details/:placeId", s.placeDetails)
	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if s.gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	return r
}

// Run serves on addr until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("listening", zap.String("addr", addr))

	return s.Router().Run(addr)
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		s.logger.Info("request",
			zap.String("method", ctx.Request.Method),
			zap.String("route", ctx.FullPath()),
			zap.Int("status", ctx.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

// resolvePlace answers 200 even when nothing was found; callers check for
// lat and lng.
func (s *Server) resolvePlace(ctx *gin.Context) {
	var req Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})

		return
	}

	res, err := s.resolver.Resolve(ctx.Request.Context(), req)
	if errors.Is(err, ErrInvalidRequest) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if err != nil {
		s.logger.Error("resolve failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})

		return
	}

	resp := ResolveResponse{ResolvedPlace: res.Place}
	if req.Debug {
		resp.Debug = &DebugInfo{Steps: res.Steps}
	}

	ctx.JSON(http.StatusOK, resp)
}

func (s *Server) geocode(ctx *gin.Context) {
	var req geocodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})

		return
	}

	anchor, err := s.resolver.Geocode(ctx.Request.Context(), req.Address)

	switch {
	case errors.Is(err, ErrInvalidRequest):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
	case errors.Is(err, ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "address not found"})
	case err != nil:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		ctx.JSON(http.StatusOK, anchor)
	}
}

func (s *Server) placeDetails(ctx *gin.Context) {
	summary, err := s.resolver.Details(ctx.Request.Context(), ctx.Param("placeId"))

	switch {
	case errors.Is(err, ErrInvalidRequest):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "placeId is required"})
	case errors.Is(err, ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "place not found"})
	case err != nil:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		ctx.JSON(http.StatusOK, summary)
	}
}
