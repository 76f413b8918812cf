// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package dialogue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bennekrouf/matcher/internal/catalog"
	"github.com/bennekrouf/matcher/internal/publish"
	"github.com/bennekrouf/matcher/internal/result"
)

func sendEmailCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Endpoint{
		{
			ID:       "send_email",
			Text:     "Send an email",
			Patterns: []string{"send an email to {email}"},
			Parameters: []catalog.Parameter{
				{Name: "email", Description: "recipient address", Required: true},
				{Name: "subject", Description: "subject line", Required: false},
			},
		},
	})
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return cat
}

// fakeMatcher returns its configured results and score for every query;
// most tests configure it with one candidate missing its required "email"
// parameter, driving the session into CollectingParameters.
type fakeMatcher struct {
	results []result.SearchResult
	score   float64
}

func (f fakeMatcher) MatchBest(context.Context, string, string) ([]result.SearchResult, float64, error) {
	return f.results, f.score, nil
}

func candidateMissingEmail() result.SearchResult {
	return result.SearchResult{
		EndpointID: "send_email",
		Text:       "Send an email",
		Similarity: 0.91,
		Parameters: map[string]string{},
		ParameterAnalysis: catalog.ParameterAnalysis{
			MissingRequired: []string{"email"},
		},
	}
}

type recordingPublisher struct {
	actions []publish.Action
}

func (p *recordingPublisher) Publish(_ context.Context, streamName, topicName string, action publish.Action) error {
	p.actions = append(p.actions, action)
	return nil
}

func newTestSession(t *testing.T, matcher Matcher, pub publish.ActionPublisher) *Session {
	t.Helper()
	return NewSession(sendEmailCatalog(t), matcher, pub, "actions", "matched", nil)
}

// TestSession_InteractiveHappyPath encodes scenario S6: an initial query
// confirmed by the user, followed by the one missing required parameter,
// reaching Completed and publishing exactly one action.
func TestSession_InteractiveHappyPath(t *testing.T) {
	matcher := fakeMatcher{results: []result.SearchResult{candidateMissingEmail()}, score: 0.91}
	pub := &recordingPublisher{}
	s := newTestSession(t, matcher, pub)

	out, err := s.HandleInitialQuery(context.Background(), InitialQuery{Query: "send an email", Language: "en"})
	require.NoError(t, err)
	prompt, ok := out.(ConfirmationPrompt)
	require.True(t, ok, "expected ConfirmationPrompt, got %T", out)
	require.Equal(t, "send_email", prompt.Candidate.EndpointID)
	require.Equal(t, KindAwaitingConfirmation, s.State().Kind)

	out, err = s.HandleConfirmationResponse(context.Background(), ConfirmationResponse{Confirmed: true})
	require.NoError(t, err)
	paramPrompt, ok := out.(ParameterPrompt)
	require.True(t, ok, "expected ParameterPrompt, got %T", out)
	require.Equal(t, "email", paramPrompt.Name)
	require.True(t, paramPrompt.Required)
	require.Equal(t, KindCollectingParameters, s.State().Kind)

	out, err = s.HandleParameterValue(context.Background(), ParameterValue{Name: "email", Value: "user@example.com"})
	require.NoError(t, err)
	matchResult, ok := out.(MatchResultMsg)
	require.True(t, ok, "expected MatchResultMsg, got %T", out)
	require.True(t, matchResult.HasMatches)
	require.Equal(t, KindCompleted, s.State().Kind)
	require.Len(t, pub.actions, 1)
	require.Equal(t, "user@example.com", pub.actions[0].Parameters["email"])
}

// TestSession_DeclineConfirmation covers the (AwaitingConfirmation, decline)
// transition: terminates immediately, no parameter prompts, nothing
// published.
func TestSession_DeclineConfirmation(t *testing.T) {
	matcher := fakeMatcher{results: []result.SearchResult{candidateMissingEmail()}, score: 0.91}
	pub := &recordingPublisher{}
	s := newTestSession(t, matcher, pub)

	if _, err := s.HandleInitialQuery(context.Background(), InitialQuery{Query: "send an email", Language: "en"}); err != nil {
		t.Fatalf("HandleInitialQuery: %v", err)
	}

	out, err := s.HandleConfirmationResponse(context.Background(), ConfirmationResponse{Confirmed: false})
	if err != nil {
		t.Fatalf("HandleConfirmationResponse: %v", err)
	}
	matchResult, ok := out.(MatchResultMsg)
	if !ok {
		t.Fatalf("expected MatchResultMsg, got %T", out)
	}
	if matchResult.HasMatches {
		t.Fatal("expected has_matches=false after decline")
	}
	if s.State().Kind != KindCompleted {
		t.Fatalf("expected Completed, got %s", s.State().Kind)
	}
	if len(pub.actions) != 0 {
		t.Fatalf("expected no published action on decline, got %d", len(pub.actions))
	}
}

// TestSession_NoMatch covers the InitialQuery -> (start) transition when the
// matcher finds nothing: terminates without ever entering AwaitingConfirmation.
func TestSession_NoMatch(t *testing.T) {
	matcher := fakeMatcher{results: nil, score: 0}
	s := newTestSession(t, matcher, &recordingPublisher{})

	out, err := s.HandleInitialQuery(context.Background(), InitialQuery{Query: "do something unrelated", Language: "en"})
	if err != nil {
		t.Fatalf("HandleInitialQuery: %v", err)
	}
	matchResult, ok := out.(MatchResultMsg)
	if !ok {
		t.Fatalf("expected MatchResultMsg, got %T", out)
	}
	if matchResult.HasMatches {
		t.Fatal("expected has_matches=false")
	}
	if s.State() != nil {
		t.Fatalf("expected no InteractionState to be created, got %+v", s.State())
	}
}

// TestSession_ParameterValueForSlotNotMissing is a protocol error: logged
// and ignored, state unchanged.
func TestSession_ParameterValueForSlotNotMissing(t *testing.T) {
	matcher := fakeMatcher{results: []result.SearchResult{candidateMissingEmail()}, score: 0.91}
	s := newTestSession(t, matcher, &recordingPublisher{})

	if _, err := s.HandleInitialQuery(context.Background(), InitialQuery{Query: "send an email", Language: "en"}); err != nil {
		t.Fatalf("HandleInitialQuery: %v", err)
	}
	if _, err := s.HandleConfirmationResponse(context.Background(), ConfirmationResponse{Confirmed: true}); err != nil {
		t.Fatalf("HandleConfirmationResponse: %v", err)
	}

	out, err := s.HandleParameterValue(context.Background(), ParameterValue{Name: "subject", Value: "hello"})
	if err != nil {
		t.Fatalf("HandleParameterValue: %v", err)
	}
	if out != nil {
		t.Fatalf("expected no outbound message for an unmissing slot, got %+v", out)
	}
	if s.State().Kind != KindCollectingParameters {
		t.Fatalf("expected state unchanged at CollectingParameters, got %s", s.State().Kind)
	}
	if len(s.State().MissingQueue) != 1 || s.State().MissingQueue[0].Name != "email" {
		t.Fatalf("expected email still queued, got %+v", s.State().MissingQueue)
	}
}

// TestSession_MissingRequiredInOrder confirms the slot-filling order follows
// the endpoint's declared parameter order, not MissingRequired's order.
func TestSession_MissingRequiredInOrder(t *testing.T) {
	endpoint := catalog.Endpoint{
		ID: "multi_param",
		Parameters: []catalog.Parameter{
			{Name: "a", Required: true},
			{Name: "b", Required: false},
			{Name: "c", Required: true},
		},
	}
	candidate := result.SearchResult{
		ParameterAnalysis: catalog.ParameterAnalysis{MissingRequired: []string{"c", "a"}},
	}
	got := missingRequiredInOrder(endpoint, candidate)
	if len(got) != 2 || got[0].Name != "a" || got[1].Name != "c" {
		t.Fatalf("expected declared order [a c], got %+v", got)
	}
}
