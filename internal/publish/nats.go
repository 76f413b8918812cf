// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NatsPublisher publishes completed-match Actions onto a NATS JetStream
// stream. The stream is expected to already exist (provisioned out of
// band); this publisher only appends messages to it.
//
// # Thread Safety
//
// Safe for concurrent use: the underlying *nats.Conn and JetStreamContext
// are safe to share across goroutines, matching the shared-handle
// requirement for the message-bus client.
type NatsPublisher struct {
	js nats.JetStreamContext
}

// NewNatsPublisher wraps an already-connected *nats.Conn with a JetStream
// context. The caller owns the connection's lifecycle.
func NewNatsPublisher(nc *nats.Conn) (*NatsPublisher, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("acquire jetstream context: %w", err)
	}
	return &NatsPublisher{js: js}, nil
}

// Publish subject-routes the action to "{streamName}.{topicName}" and
// publishes its JSON-encoded payload. Returns an error on JetStream ack
// failure or timeout; the core does not retry.
func (p *NatsPublisher) Publish(ctx context.Context, streamName, topicName string, action Action) error {
	subject := streamName + "." + topicName
	body, err := json.Marshal(action.toPayload(time.Now()))
	if err != nil {
		return fmt.Errorf("marshal action payload: %w", err)
	}

	if _, err := p.js.Publish(subject, body, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish action to %q: %w", subject, err)
	}
	return nil
}
