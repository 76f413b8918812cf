// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package matcherapi is the Matcher Service RPC facade (spec §4.10): it
// wires the Query Normalizer, Parameter Extractors, Vector Search, and
// Result Processor into the one-shot MatchQuery operation and exposes
// that pipeline to the Dialogue State Machine for the interactive path.
package matcherapi

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bennekrouf/matcher/internal/catalog"
	"github.com/bennekrouf/matcher/internal/lang"
	"github.com/bennekrouf/matcher/internal/normalize"
	"github.com/bennekrouf/matcher/internal/result"
	"github.com/bennekrouf/matcher/internal/search"
	"github.com/bennekrouf/matcher/internal/telemetry"
	"github.com/bennekrouf/matcher/internal/vectorstore"
)

// Service runs the one-shot match pipeline: normalize -> search -> process.
// It is shared read-only across concurrent callers once constructed, per
// spec §5's reentrant-read-path requirement.
type Service struct {
	catalog   *catalog.Catalog
	searcher  *search.Searcher
	processor *result.Processor
	logger    *slog.Logger
}

// NewService builds a Service. logger may be nil, in which case
// slog.Default() is used.
func NewService(cat *catalog.Catalog, searcher *search.Searcher, processor *result.Processor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{catalog: cat, searcher: searcher, processor: processor, logger: logger}
}

// Match runs the full one-shot pipeline for query/language, bounding k to
// search.ShowAll when showAll is requested and search.BestOnly otherwise.
// It returns the ranked results, the best similarity seen before
// filtering, and the query's negation polarity.
func (s *Service) Match(ctx context.Context, query, language string, showAll bool) ([]result.SearchResult, float64, bool, error) {
	ctx, span := telemetry.Tracer.Start(ctx, "matcher.Match",
		trace.WithAttributes(
			attribute.String("language", language),
			attribute.Bool("show_all", showAll),
		),
	)
	defer span.End()
	start := time.Now()
	defer func() { telemetry.MatchLatency.Observe(time.Since(start).Seconds()) }()

	k := search.BestOnly
	if showAll {
		k = search.ShowAll
	}

	processed := normalize.Normalize(query, language)
	profile := lang.ForLanguage(language)

	batchCh, err := s.searcher.Query(ctx, processed.CleanedText, k)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, false, fmt.Errorf("match query: %w", err)
	}
	batches := drainBatches(ctx, batchCh)
	rowCount := 0
	for _, b := range batches {
		rowCount += len(b.Rows)
	}

	results, best := s.processor.Process(batches, processed, profile)

	outcome := "unmatched"
	if len(results) > 0 {
		outcome = "matched"
	}
	telemetry.MatchResultTotal.WithLabelValues(outcome).Inc()
	telemetry.MatchDedupCount.Observe(float64(rowCount))
	span.SetAttributes(attribute.String("outcome", outcome), attribute.Int("result_count", len(results)))

	s.logger.Debug("matcherapi: match complete",
		slog.String("language", language),
		slog.Int("results", len(results)),
		slog.Float64("best_similarity", best),
		slog.Bool("is_negated", processed.IsNegated))

	return results, best, processed.IsNegated, nil
}

// MatchBest satisfies dialogue.Matcher: best-only results for the
// interactive path's initial query handling.
func (s *Service) MatchBest(ctx context.Context, query, language string) ([]result.SearchResult, float64, error) {
	results, best, _, err := s.Match(ctx, query, language, false)
	return results, best, err
}

// Catalog exposes the Service's Endpoint Catalog, used by dialogue.Session
// construction and the admin CLI.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// drainBatches collects every RowBatch off the channel until it closes or
// ctx is cancelled, so the Result Processor can run its fusion pass over a
// plain slice rather than a stream.
func drainBatches(ctx context.Context, ch <-chan vectorstore.RowBatch) []vectorstore.RowBatch {
	var out []vectorstore.RowBatch
	for {
		select {
		case batch, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, batch)
		case <-ctx.Done():
			return out
		}
	}
}
