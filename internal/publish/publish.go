// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package publish defines the Action Publisher contract the Dialogue State
// Machine hands a completed match to, plus a NATS-backed implementation.
// Publication is at-least-once from the core's perspective: the core
// retries nothing itself and surfaces publisher errors as internal
// failures to the caller.
package publish

import (
	"context"
	"sort"
	"time"
)

// NameValue is one (name, value) parameter pair in an Action payload.
// Encoded as a list rather than a map so the wire payload preserves a
// deterministic field order (sorted by name).
type NameValue struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Action is the structured message emitted onto the message bus once a
// dialogue reaches Completed.
type Action struct {
	EndpointID  string
	Text        string
	Description string
	Parameters  map[string]string
}

// actionPayload is the wire shape of an Action: a JSON object with
// timestamp (RFC-3339 UTC), action (= endpoint_id), text, description, and
// parameters as a name/value list.
type actionPayload struct {
	Timestamp   string      `json:"timestamp"`
	Action      string      `json:"action"`
	Text        string      `json:"text"`
	Description string      `json:"description"`
	Parameters  []NameValue `json:"parameters"`
}

func (a Action) toPayload(now time.Time) actionPayload {
	params := make([]NameValue, 0, len(a.Parameters))
	for name, value := range a.Parameters {
		params = append(params, NameValue{Name: name, Value: value})
	}
	sort.Slice(params, func(i, j int) bool { return params[i].Name < params[j].Name })
	return actionPayload{
		Timestamp:   now.UTC().Format(time.RFC3339),
		Action:      a.EndpointID,
		Text:        a.Text,
		Description: a.Description,
		Parameters:  params,
	}
}

// ActionPublisher publishes a completed match onto an external message
// bus. Implementations must be safe for concurrent use — the message-bus
// client is a shared handle reused across interactive streams.
type ActionPublisher interface {
	Publish(ctx context.Context, streamName, topicName string, action Action) error
}
