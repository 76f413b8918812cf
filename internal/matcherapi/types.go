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

import "github.com/bennekrouf/matcher/internal/result"

// MatchRequest is the wire shape of the one-shot MatchQuery RPC (spec §6).
type MatchRequest struct {
	Query          string `json:"query" binding:"required"`
	Language       string `json:"language"`
	ShowAllMatches bool   `json:"show_all_matches"`
}

// EndpointMatch is one entry of a MatchResponse.
type EndpointMatch struct {
	EndpointID      string            `json:"endpoint_id"`
	Similarity      float64           `json:"similarity"`
	Parameters      map[string]string `json:"parameters"`
	IsNegated       bool              `json:"is_negated"`
	MissingRequired []string          `json:"missing_required"`
	MissingOptional []string          `json:"missing_optional"`
}

// MatchResponse is the wire shape of the one-shot MatchQuery RPC response.
type MatchResponse struct {
	Matches    []EndpointMatch `json:"matches"`
	Score      float64         `json:"score"`
	HasMatches bool            `json:"has_matches"`
}

// toEndpointMatches projects internal SearchResults onto the RPC's wire
// shape, threading the shared is_negated flag onto every match (spec §9:
// the flag is exposed but not acted on as a veto).
func toEndpointMatches(results []result.SearchResult, isNegated bool) []EndpointMatch {
	out := make([]EndpointMatch, 0, len(results))
	for _, r := range results {
		out = append(out, EndpointMatch{
			EndpointID:      r.EndpointID,
			Similarity:      r.Similarity,
			Parameters:      r.Parameters,
			IsNegated:       isNegated,
			MissingRequired: r.ParameterAnalysis.MissingRequired,
			MissingOptional: r.ParameterAnalysis.MissingOptional,
		})
	}
	return out
}

// Interactive wire message envelopes (spec §4.8, §6). One JSON object per
// WebSocket frame, tagged by "type".

// InboundMessage is the envelope every client->server WebSocket frame is
// decoded into; exactly one of the typed fields is populated, selected by
// Type.
type InboundMessage struct {
	Type string `json:"type"`

	// InitialQuery fields.
	Query    string `json:"query,omitempty"`
	Language string `json:"language,omitempty"`

	// ConfirmationResponse fields.
	Confirmed bool `json:"confirmed,omitempty"`

	// ParameterValue fields.
	Name  string `json:"name,omitempty"`
	Value string `json:"value,omitempty"`
}

const (
	inboundInitialQuery          = "initial_query"
	inboundConfirmationResponse  = "confirmation_response"
	inboundParameterValue        = "parameter_value"
	outboundConfirmationPrompt   = "confirmation_prompt"
	outboundParameterPrompt      = "parameter_prompt"
	outboundMatchResult          = "match_result"
	outboundProtocolErrorMessage = "protocol_error"
)

// OutboundMessage is the envelope every server->client WebSocket frame is
// encoded from.
type OutboundMessage struct {
	Type string `json:"type"`

	// ConfirmationPrompt fields.
	Candidate *EndpointMatch `json:"candidate,omitempty"`

	// ParameterPrompt fields.
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
	EndpointID  string `json:"endpoint_id,omitempty"`

	// MatchResult fields.
	Matches    []EndpointMatch `json:"matches,omitempty"`
	Score      float64         `json:"score,omitempty"`
	HasMatches bool            `json:"has_matches,omitempty"`

	// protocol_error fields.
	Error string `json:"error,omitempty"`
}
