// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package vectorstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// weaviateClassName is the single class every pattern row lives in. The
// matching engine owns one class; multi-tenant deployments would shard by
// class name, which is out of scope here.
const weaviateClassName = "MatcherPattern"

// WeaviateStore is a Store backed by a Weaviate cluster, for deployments
// that already run Weaviate for other collections and would rather not
// operate a second storage engine for pattern rows.
//
// # Thread Safety
//
// Safe for concurrent use; the underlying client is stateless per-call.
type WeaviateStore struct {
	client *weaviate.Client
	logger *slog.Logger
}

// NewWeaviateStore wraps an already-configured Weaviate client.
func NewWeaviateStore(client *weaviate.Client, logger *slog.Logger) *WeaviateStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &WeaviateStore{client: client, logger: logger}
}

func (s *WeaviateStore) CreateTable(ctx context.Context, rows []PatternRow) error {
	if err := s.DropTable(ctx); err != nil {
		return fmt.Errorf("create table: drop existing class: %w", err)
	}
	class := &models.Class{
		Class:      weaviateClassName,
		Vectorizer: "none",
		Properties: []*models.Property{
			{Name: "endpointId", DataType: []string{"text"}},
			{Name: "pattern", DataType: []string{"text"}},
			{Name: "text", DataType: []string{"text"}},
			{Name: "description", DataType: []string{"text"}},
		},
	}
	if err := s.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("create weaviate class: %w", err)
	}
	return s.AddBatch(ctx, rows)
}

func (s *WeaviateStore) AddBatch(ctx context.Context, rows []PatternRow) error {
	if len(rows) == 0 {
		return nil
	}
	objects := make([]*models.Object, 0, len(rows))
	for _, row := range rows {
		vec := make([]float32, len(row.Vector))
		copy(vec, row.Vector)
		objects = append(objects, &models.Object{
			Class:  weaviateClassName,
			Vector: vec,
			Properties: map[string]interface{}{
				"endpointId":  row.EndpointID,
				"pattern":     row.Pattern,
				"text":        row.Text,
				"description": row.Description,
			},
		})
	}
	resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return fmt.Errorf("batch insert pattern rows: %w", err)
	}
	for _, r := range resp {
		if r.Result != nil && r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
			s.logger.Error("vectorstore: weaviate object insert failed",
				slog.Any("errors", r.Result.Errors.Error))
		}
	}
	return nil
}

func (s *WeaviateStore) DropTable(ctx context.Context) error {
	err := s.client.Schema().ClassDeleter().WithClassName(weaviateClassName).Do(ctx)
	if err != nil {
		s.logger.Debug("vectorstore: drop class (may not have existed)", slog.Any("error", err))
	}
	return nil
}

func (s *WeaviateStore) Query(ctx context.Context, vector []float32, k int) (<-chan RowBatch, error) {
	out := make(chan RowBatch, 1)

	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)
	fields := []graphql.Field{
		{Name: "endpointId"},
		{Name: "pattern"},
		{Name: "text"},
		{Name: "description"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	resp, err := s.client.GraphQL().Get().
		WithClassName(weaviateClassName).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		close(out)
		return nil, fmt.Errorf("query weaviate: %w", err)
	}
	if len(resp.Errors) > 0 {
		close(out)
		return nil, fmt.Errorf("weaviate query errors: %v", resp.Errors)
	}

	rows, dists := parseWeaviateResult(resp, s.logger)

	go func() {
		defer close(out)
		select {
		case out <- RowBatch{Rows: rows, Distances: dists}:
		case <-ctx.Done():
		}
	}()
	return out, nil
}

func (s *WeaviateStore) Ping(ctx context.Context) error {
	live, err := s.client.Misc().LiveChecker().Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate liveness check: %w", err)
	}
	if !live {
		return fmt.Errorf("weaviate reports not live")
	}
	return nil
}

// parseWeaviateResult walks the GraphQL Get response's generic Data map
// into typed PatternRow/distance pairs, dropping (and logging) any object
// whose shape does not match expectations rather than failing the whole
// query over one malformed row.
func parseWeaviateResult(resp *models.GraphQLResponse, logger *slog.Logger) ([]PatternRow, []float32) {
	var rows []PatternRow
	var dists []float32

	get, ok := resp.Data["Get"].(map[string]interface{})
	if !ok {
		return rows, dists
	}
	items, ok := get[weaviateClassName].([]interface{})
	if !ok {
		return rows, dists
	}
	for _, raw := range items {
		obj, ok := raw.(map[string]interface{})
		if !ok {
			logger.Error("vectorstore: dropping malformed weaviate result row")
			continue
		}
		row := PatternRow{
			EndpointID:  stringField(obj, "endpointId"),
			Pattern:     stringField(obj, "pattern"),
			Text:        stringField(obj, "text"),
			Description: stringField(obj, "description"),
		}
		var dist float32
		if additional, ok := obj["_additional"].(map[string]interface{}); ok {
			if d, ok := additional["distance"].(float64); ok {
				dist = float32(d)
			}
		}
		rows = append(rows, row)
		dists = append(dists, dist)
	}
	return rows, dists
}

func stringField(obj map[string]interface{}, key string) string {
	if v, ok := obj[key].(string); ok {
		return v
	}
	return ""
}
