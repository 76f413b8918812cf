// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package result turns raw vector-search batches into ranked, deduplicated
// Search Results: similarity scoring, endpoint-existence filtering,
// threshold filtering, per-row parameter completion, and completeness
// classification.
package result

import (
	"log/slog"
	"regexp"
	"sort"

	"github.com/bennekrouf/matcher/internal/catalog"
	"github.com/bennekrouf/matcher/internal/extract"
	"github.com/bennekrouf/matcher/internal/lang"
	"github.com/bennekrouf/matcher/internal/normalize"
	"github.com/bennekrouf/matcher/internal/vectorstore"
)

// DefaultThreshold is the minimum similarity a row must clear to survive
// into the result set. Applied after retrieval, never as a store-side
// filter, per the Result Processor design.
const DefaultThreshold = 0.5

var placeholderPattern = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// SearchResult is one ranked, endpoint-deduplicated match for a query.
type SearchResult struct {
	EndpointID        string
	Pattern           string
	Text              string
	Description       string
	Similarity        float64
	Parameters        map[string]string
	ParameterAnalysis catalog.ParameterAnalysis
}

// Complete reports whether every required parameter of the matched
// endpoint was found.
func (r SearchResult) Complete() bool {
	return len(r.ParameterAnalysis.MissingRequired) == 0
}

// Processor turns vector-search batches into a ranked SearchResult list.
type Processor struct {
	catalog    *catalog.Catalog
	extractors *extract.Registry
	threshold  float64
	logger     *slog.Logger
}

// NewProcessor builds a Processor against cat and registry, applying
// threshold (use DefaultThreshold unless a deployment has tuned it).
func NewProcessor(cat *catalog.Catalog, registry *extract.Registry, threshold float64, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{catalog: cat, extractors: registry, threshold: threshold, logger: logger}
}

// Process implements the Result Processor algorithm (spec §4.7): score,
// drop unknown endpoints, threshold-filter, complete parameters, analyze
// completeness, dedupe by endpoint, sort by similarity descending.
//
// Returns the ranked results and the best similarity seen across all rows
// before any filtering — callers use best_similarity even when it did not
// survive the threshold, e.g. to report "no match" confidence.
func (p *Processor) Process(batches []vectorstore.RowBatch, query normalize.ProcessedQuery, profile *lang.Profile) ([]SearchResult, float64) {
	bestSimilarity := 0.0
	var candidates []SearchResult

	for _, batch := range batches {
		if batch.Err != nil {
			p.logger.Error("result: dropping batch with error", slog.Any("error", batch.Err))
			continue
		}
		for i, row := range batch.Rows {
			dist := float32(0)
			if i < len(batch.Distances) {
				dist = batch.Distances[i]
			}
			similarity := 1 - float64(dist)
			if similarity > bestSimilarity {
				bestSimilarity = similarity
			}

			endpoint, ok := p.catalog.Get(row.EndpointID)
			if !ok {
				p.logger.Error("result: dropping row for unknown endpoint",
					slog.String("endpoint_id", row.EndpointID))
				continue
			}
			if similarity < p.threshold {
				continue
			}

			params := p.completeParameters(row.Pattern, query, profile)
			analysis := catalog.AnalyzeParameters(endpoint, params)

			candidates = append(candidates, SearchResult{
				EndpointID:        row.EndpointID,
				Pattern:           row.Pattern,
				Text:              row.Text,
				Description:       row.Description,
				Similarity:        similarity,
				Parameters:        params,
				ParameterAnalysis: analysis,
			})
		}
	}

	deduped := dedupeByEndpoint(candidates)
	sortBySimilarityDesc(deduped)
	return deduped, bestSimilarity
}

// completeParameters starts from the Processed Query's already-extracted
// values (which always win — normalization-discovered values are never
// overwritten) and fills any placeholder the matched pattern mentions that
// is still absent, by running that placeholder's extractor.
func (p *Processor) completeParameters(pattern string, query normalize.ProcessedQuery, profile *lang.Profile) map[string]string {
	params := make(map[string]string, len(query.Parameters))
	for k, v := range query.Parameters {
		params[k] = v
	}

	for _, match := range placeholderPattern.FindAllStringSubmatch(pattern, -1) {
		name := match[1]
		if _, already := params[name]; already {
			continue
		}
		extractor, ok := p.extractors.Get(name)
		if !ok {
			continue
		}
		if val, found := extractor.Extract(query.CleanedText, profile); found {
			params[name] = val
		}
	}
	return params
}

func dedupeByEndpoint(candidates []SearchResult) []SearchResult {
	best := make(map[string]SearchResult, len(candidates))
	order := make([]string, 0, len(candidates))
	for _, c := range candidates {
		existing, seen := best[c.EndpointID]
		if !seen {
			order = append(order, c.EndpointID)
			best[c.EndpointID] = c
			continue
		}
		if c.Similarity > existing.Similarity {
			best[c.EndpointID] = c
		}
	}
	out := make([]SearchResult, 0, len(order))
	for _, id := range order {
		out = append(out, best[id])
	}
	return out
}

// sortBySimilarityDesc sorts survivors by similarity, descending, stably —
// ties keep the first-seen order from the store.
func sortBySimilarityDesc(results []SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
}
