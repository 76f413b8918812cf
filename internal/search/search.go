// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package search embeds a cleaned query and issues the cosine top-k lookup
// against the Pattern Index. No re-ranking happens at this stage; that is
// the Result Processor's job.
package search

import (
	"context"
	"fmt"

	"github.com/bennekrouf/matcher/internal/embedding"
	"github.com/bennekrouf/matcher/internal/vectorstore"
)

// BestOnly and ShowAll are the two k values the caller may request;
// requested k is bounded to one of these, per the Vector Search contract.
const (
	BestOnly = 1
	ShowAll  = 5
)

// Searcher embeds text and queries a vectorstore.Store for the nearest
// pattern rows.
type Searcher struct {
	embedder embedding.Embedder
	store    vectorstore.Store
}

func NewSearcher(embedder embedding.Embedder, store vectorstore.Store) *Searcher {
	return &Searcher{embedder: embedder, store: store}
}

// Query embeds cleanedText, issues a top-k cosine search, and returns the
// store's batch stream. Similarity is 1-distance and must lie in [0,1].
func (s *Searcher) Query(ctx context.Context, cleanedText string, k int) (<-chan vectorstore.RowBatch, error) {
	if k != BestOnly && k != ShowAll {
		return nil, fmt.Errorf("search: k must be %d or %d, got %d", BestOnly, ShowAll, k)
	}
	vec, err := s.embedder.Embed(ctx, cleanedText)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	batches, err := s.store.Query(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("query pattern index: %w", err)
	}
	return batches, nil
}
