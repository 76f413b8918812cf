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
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bennekrouf/matcher/internal/dialogue"
	"github.com/bennekrouf/matcher/internal/telemetry"
)

// outboundQueueCapacity is the bounded single-producer/single-consumer
// queue size between the task servicing a stream and its outbound
// WebSocket writer, per spec §5's concurrency model.
const outboundQueueCapacity = 128

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The matcher is consumed by first-party clients over a private
	// deployment boundary; origin is not restricted here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleInteractiveMatch implements the InteractiveMatch RPC (spec §6,
// §4.8): one WebSocket connection, one Session, one servicing goroutine
// that owns the Session's InteractionState end to end.
func (h *Handlers) handleInteractiveMatch(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("matcherapi: websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	sessionID := uuid.NewString()
	logger := h.logger.With(slog.String("session_id", sessionID))

	outbound := make(chan OutboundMessage, outboundQueueCapacity)
	writerDone := make(chan struct{})
	go runOutboundWriter(conn, outbound, writerDone)

	telemetry.ActiveSessions.Add(c.Request.Context(), 1)
	defer telemetry.ActiveSessions.Add(context.Background(), -1)

	session := dialogue.NewSession(h.svc.Catalog(), h.svc, h.publisher, h.streamName, h.topicName, logger)
	h.serviceInteractiveStream(c.Request.Context(), conn, session, outbound, logger)

	close(outbound)
	<-writerDone
}

// serviceInteractiveStream is the one goroutine that owns session's
// InteractionState for the lifetime of the connection (spec §5: "no
// cross-stream sharing", "exactly one task"). It exits on read error
// (peer closed the inbound half) or once the dialogue reaches Completed.
func (h *Handlers) serviceInteractiveStream(ctx context.Context, conn *websocket.Conn, session *dialogue.Session, outbound chan<- OutboundMessage, logger *slog.Logger) {
	for {
		var msg InboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			logger.Debug("matcherapi: interactive stream closed", slog.Any("error", err))
			return
		}

		outboundMsg, terminal, err := dispatch(ctx, session, msg, logger)
		if err != nil {
			logger.Error("matcherapi: interactive dispatch failed", slog.Any("error", err))
			select {
			case outbound <- OutboundMessage{Type: outboundProtocolErrorMessage, Error: "internal failure"}:
			default:
			}
			return
		}
		if outboundMsg != nil {
			select {
			case outbound <- *outboundMsg:
			case <-ctx.Done():
				return
			}
		}
		if terminal {
			recordInteractionOutcome(outboundMsg)
			return
		}
	}
}

func recordInteractionOutcome(msg *OutboundMessage) {
	outcome := "abandoned"
	if msg != nil && msg.Type == outboundMatchResult {
		if msg.HasMatches {
			outcome = "completed"
		} else {
			outcome = "declined"
		}
	}
	telemetry.InteractionOutcomeTotal.WithLabelValues(outcome).Inc()
}

// dispatch routes one InboundMessage to the matching Session handler and
// translates its outbound variant (if any) to the wire OutboundMessage
// shape. terminal reports whether the dialogue just reached a terminal
// state and the stream should be torn down.
func dispatch(ctx context.Context, session *dialogue.Session, msg InboundMessage, logger *slog.Logger) (*OutboundMessage, bool, error) {
	switch msg.Type {
	case inboundInitialQuery:
		out, err := session.HandleInitialQuery(ctx, dialogue.InitialQuery{Query: msg.Query, Language: msg.Language})
		return translateOutbound(out), isTerminal(out), err
	case inboundConfirmationResponse:
		out, err := session.HandleConfirmationResponse(ctx, dialogue.ConfirmationResponse{Confirmed: msg.Confirmed})
		return translateOutbound(out), isTerminal(out), err
	case inboundParameterValue:
		out, err := session.HandleParameterValue(ctx, dialogue.ParameterValue{Name: msg.Name, Value: msg.Value})
		return translateOutbound(out), isTerminal(out), err
	default:
		logger.Error("matcherapi: unknown inbound message type", slog.String("type", msg.Type))
		return nil, false, nil
	}
}

// isTerminal reports whether out is a MatchResultMsg — the only outbound
// variant the state machine emits on reaching a terminal state (spec
// §4.8's transition table: every (terminal) row emits MatchResult).
func isTerminal(out any) bool {
	_, ok := out.(dialogue.MatchResultMsg)
	return ok
}

// translateOutbound converts one of dialogue's outbound variants into the
// wire OutboundMessage. A nil out (a protocol error the Session already
// logged and ignored) yields no frame, leaving the stream's state
// unchanged per spec §7.
func translateOutbound(out any) *OutboundMessage {
	switch v := out.(type) {
	case dialogue.ConfirmationPrompt:
		em := candidateToMatch(v)
		return &OutboundMessage{Type: outboundConfirmationPrompt, Candidate: &em}
	case dialogue.ParameterPrompt:
		return &OutboundMessage{
			Type:        outboundParameterPrompt,
			Name:        v.Name,
			Description: v.Description,
			Required:    v.Required,
			EndpointID:  v.EndpointID,
		}
	case dialogue.MatchResultMsg:
		return &OutboundMessage{
			Type:       outboundMatchResult,
			Matches:    toEndpointMatches(v.Matches, false),
			Score:      v.Score,
			HasMatches: v.HasMatches,
		}
	default:
		return nil
	}
}

func candidateToMatch(p dialogue.ConfirmationPrompt) EndpointMatch {
	r := p.Candidate
	return EndpointMatch{
		EndpointID:      r.EndpointID,
		Similarity:      r.Similarity,
		Parameters:      r.Parameters,
		MissingRequired: r.ParameterAnalysis.MissingRequired,
		MissingOptional: r.ParameterAnalysis.MissingOptional,
	}
}

// runOutboundWriter drains outbound and writes each message as one
// WebSocket text frame, closing done once outbound is closed and
// drained — the single consumer side of the bounded producer/consumer
// queue (spec §5).
func runOutboundWriter(conn *websocket.Conn, outbound <-chan OutboundMessage, done chan<- struct{}) {
	defer close(done)
	for msg := range outbound {
		body, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
			return
		}
	}
}
