// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dialogue drives one interactive matching stream: a small, total
// state machine (AwaitingConfirmation -> CollectingParameters -> Completed)
// represented as a tagged union, never as an interface with dynamic
// dispatch, so every transition is handled by one exhaustive switch.
package dialogue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bennekrouf/matcher/internal/catalog"
	"github.com/bennekrouf/matcher/internal/publish"
	"github.com/bennekrouf/matcher/internal/result"
)

// Kind tags which variant of InteractionState a Session currently holds.
type Kind int

const (
	KindAwaitingConfirmation Kind = iota
	KindCollectingParameters
	KindCompleted
)

func (k Kind) String() string {
	switch k {
	case KindAwaitingConfirmation:
		return "awaiting_confirmation"
	case KindCollectingParameters:
		return "collecting_parameters"
	case KindCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// InteractionState is the tagged-union state of one interactive stream.
// Candidate and MissingQueue are meaningful only in the
// AwaitingConfirmation/CollectingParameters variants; exhaustively switch
// on Kind before reading them.
type InteractionState struct {
	Kind         Kind
	Candidate    result.SearchResult
	MissingQueue []catalog.Parameter
}

// Inbound message variants.
type InitialQuery struct {
	Query    string
	Language string
}

type ConfirmationResponse struct {
	Confirmed bool
}

type ParameterValue struct {
	Name  string
	Value string
}

// Outbound message variants.
type ConfirmationPrompt struct {
	Candidate result.SearchResult
}

type ParameterPrompt struct {
	Name        string
	Description string
	Required    bool
	EndpointID  string
}

type MatchResultMsg struct {
	Matches    []result.SearchResult
	Score      float64
	HasMatches bool
}

// Matcher runs the one-shot match pipeline (normalize, search, process)
// for a single query and returns the best-only ranked result set.
type Matcher interface {
	MatchBest(ctx context.Context, query, language string) ([]result.SearchResult, float64, error)
}

// Session owns the InteractionState for exactly one interactive stream; it
// must be serviced by exactly one goroutine (spec §5's no-cross-stream-
// sharing rule).
type Session struct {
	state      *InteractionState
	catalog    *catalog.Catalog
	matcher    Matcher
	publisher  publish.ActionPublisher
	streamName string
	topicName  string
	logger     *slog.Logger
}

// NewSession constructs a Session with no InteractionState yet; the first
// inbound message must be an InitialQuery.
func NewSession(cat *catalog.Catalog, matcher Matcher, publisher publish.ActionPublisher, streamName, topicName string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		catalog:    cat,
		matcher:    matcher,
		publisher:  publisher,
		streamName: streamName,
		topicName:  topicName,
		logger:     logger,
	}
}

// State returns the current InteractionState, or nil before the first
// InitialQuery has been handled.
func (s *Session) State() *InteractionState { return s.state }

// HandleInitialQuery runs the match pipeline and transitions from (start)
// to AwaitingConfirmation (top result exists) or terminates immediately
// with has_matches=false.
func (s *Session) HandleInitialQuery(ctx context.Context, msg InitialQuery) (any, error) {
	if s.state != nil {
		s.logger.Error("dialogue: InitialQuery received outside (start)", slog.String("state", s.state.Kind.String()))
		return nil, nil
	}

	results, score, err := s.matcher.MatchBest(ctx, msg.Query, msg.Language)
	if err != nil {
		return nil, fmt.Errorf("match initial query: %w", err)
	}
	if len(results) == 0 {
		return MatchResultMsg{HasMatches: false, Score: score}, nil
	}

	candidate := results[0]
	endpoint, _ := s.catalog.Get(candidate.EndpointID)
	s.state = &InteractionState{
		Kind:         KindAwaitingConfirmation,
		Candidate:    candidate,
		MissingQueue: missingRequiredInOrder(endpoint, candidate),
	}
	return ConfirmationPrompt{Candidate: candidate}, nil
}

// HandleConfirmationResponse is valid only from AwaitingConfirmation.
// Declining terminates with has_matches=false; confirming moves to
// CollectingParameters (missing required slots remain) or straight to
// Completed (nothing missing), publishing the action either way the
// Completed state is reached.
func (s *Session) HandleConfirmationResponse(ctx context.Context, msg ConfirmationResponse) (any, error) {
	if s.state == nil || s.state.Kind != KindAwaitingConfirmation {
		s.logger.Error("dialogue: ConfirmationResponse received outside AwaitingConfirmation",
			slog.String("state", s.stateKindOrNone()))
		return nil, nil
	}

	if !msg.Confirmed {
		s.state.Kind = KindCompleted
		return MatchResultMsg{HasMatches: false}, nil
	}

	if len(s.state.MissingQueue) > 0 {
		s.state.Kind = KindCollectingParameters
		return s.nextParameterPrompt(), nil
	}

	return s.complete(ctx)
}

// HandleParameterValue is valid only from CollectingParameters. A value
// for a slot that is not currently missing is a protocol error: logged and
// ignored, state unchanged.
func (s *Session) HandleParameterValue(ctx context.Context, msg ParameterValue) (any, error) {
	if s.state == nil || s.state.Kind != KindCollectingParameters {
		s.logger.Error("dialogue: ParameterValue received outside CollectingParameters",
			slog.String("state", s.stateKindOrNone()))
		return nil, nil
	}

	idx := -1
	for i, p := range s.state.MissingQueue {
		if p.Name == msg.Name {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.logger.Error("dialogue: ParameterValue for a slot that is not missing", slog.String("name", msg.Name))
		return nil, nil
	}

	if s.state.Candidate.Parameters == nil {
		s.state.Candidate.Parameters = map[string]string{}
	}
	s.state.Candidate.Parameters[msg.Name] = msg.Value
	s.state.MissingQueue = append(s.state.MissingQueue[:idx], s.state.MissingQueue[idx+1:]...)
	s.refreshAnalysis()

	if len(s.state.MissingQueue) > 0 {
		return s.nextParameterPrompt(), nil
	}
	return s.complete(ctx)
}

func (s *Session) nextParameterPrompt() ParameterPrompt {
	next := s.state.MissingQueue[0]
	return ParameterPrompt{
		Name:        next.Name,
		Description: next.Description,
		Required:    next.Required,
		EndpointID:  s.state.Candidate.EndpointID,
	}
}

// complete transitions to Completed, hands the match to the Action
// Publisher, and reports the terminal MatchResult. The stream closes after
// this call returns, per the state machine's design.
func (s *Session) complete(ctx context.Context) (any, error) {
	s.state.Kind = KindCompleted

	action := publish.Action{
		EndpointID:  s.state.Candidate.EndpointID,
		Text:        s.state.Candidate.Text,
		Description: s.state.Candidate.Description,
		Parameters:  s.state.Candidate.Parameters,
	}
	if err := s.publisher.Publish(ctx, s.streamName, s.topicName, action); err != nil {
		return nil, fmt.Errorf("publish completed match: %w", err)
	}

	return MatchResultMsg{
		Matches:    []result.SearchResult{s.state.Candidate},
		Score:      s.state.Candidate.Similarity,
		HasMatches: true,
	}, nil
}

func (s *Session) refreshAnalysis() {
	endpoint, ok := s.catalog.Get(s.state.Candidate.EndpointID)
	if !ok {
		return
	}
	s.state.Candidate.ParameterAnalysis = catalog.AnalyzeParameters(endpoint, s.state.Candidate.Parameters)
}

func (s *Session) stateKindOrNone() string {
	if s.state == nil {
		return "(start)"
	}
	return s.state.Kind.String()
}

// missingRequiredInOrder returns candidate's currently-missing required
// parameters in the endpoint's declared order — the slot-filling order
// mandated by the state machine design.
func missingRequiredInOrder(endpoint catalog.Endpoint, candidate result.SearchResult) []catalog.Parameter {
	missing := make(map[string]bool, len(candidate.ParameterAnalysis.MissingRequired))
	for _, name := range candidate.ParameterAnalysis.MissingRequired {
		missing[name] = true
	}
	var out []catalog.Parameter
	for _, p := range endpoint.Parameters {
		if p.Required && missing[p.Name] {
			out = append(out, p)
		}
	}
	return out
}
