// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package matcherapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/bennekrouf/matcher/internal/publish"
	"github.com/bennekrouf/matcher/internal/vectorstore"
)

// Handlers wires Gin routes to a Service, an ActionPublisher, and a
// vectorstore.Store health check, mirroring the teacher's
// trace.RegisterRoutes(group, handlers) shape.
type Handlers struct {
	svc        *Service
	publisher  publish.ActionPublisher
	store      vectorstore.Store
	streamName string
	topicName  string
	logger     *slog.Logger
}

// NewHandlers builds a Handlers. streamName/topicName are passed through
// to every interactive session's completed-match publish call.
func NewHandlers(svc *Service, publisher publish.ActionPublisher, store vectorstore.Store, streamName, topicName string, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		svc:        svc,
		publisher:  publisher,
		store:      store,
		streamName: streamName,
		topicName:  topicName,
		logger:     logger,
	}
}

// RegisterRoutes registers the Matcher Service's RPC surface (spec §6):
//
//	POST /v1/match        - one-shot MatchQuery
//	GET  /v1/match/stream - InteractiveMatch (WebSocket upgrade)
//	GET  /v1/healthz      - supplemented health check
func RegisterRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.POST("/match", h.handleMatchQuery)
	rg.GET("/match/stream", h.handleInteractiveMatch)
	rg.GET("/healthz", h.handleHealthz)
}

// NewRouter builds the Gin engine matcherd and catalogctl's "serve"
// subcommand both run: recovery middleware, OTel span extraction, and the
// full RPC surface mounted under /v1, matching the teacher's
// router.Use(...) + router.Group("/v1") shape in cmd/trace/main.go.
func NewRouter(h *Handlers, debug bool) *gin.Engine {
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("matcher"))
	if debug {
		router.Use(gin.Logger())
	}
	RegisterRoutes(router.Group("/v1"), h)
	return router
}

// handleMatchQuery implements the one-shot MatchQuery operation (spec §6).
// Recoverable conditions (no match) are encoded as has_matches=false, not
// an HTTP error; only resource/internal failures map to 5xx.
func (h *Handlers) handleMatchQuery(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, best, isNegated, err := h.svc.Match(c.Request.Context(), req.Query, req.Language, req.ShowAllMatches)
	if err != nil {
		h.logger.Error("matcherapi: MatchQuery failed", slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	resp := MatchResponse{
		Matches:    toEndpointMatches(results, isNegated),
		Score:      best,
		HasMatches: len(results) > 0,
	}
	if len(results) == 0 {
		resp.Score = 0
	}
	c.JSON(http.StatusOK, resp)
}

// handleHealthz reports ok when the vector store is reachable and
// degraded otherwise, the Go analogue of the original's gRPC health
// service serving/not-serving states (spec SPEC_FULL §5).
func (h *Handlers) handleHealthz(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
