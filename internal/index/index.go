// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package index builds the Pattern Index: one vectorstore.PatternRow per
// (endpoint, pattern) pair in a Catalog snapshot, embedded in parallel and
// written as a single all-or-nothing table rebuild.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bennekrouf/matcher/internal/catalog"
	"github.com/bennekrouf/matcher/internal/embedding"
	"github.com/bennekrouf/matcher/internal/telemetry"
	"github.com/bennekrouf/matcher/internal/vectorstore"
)

// warmConcurrency bounds how many embedding calls run in parallel during a
// build; 10 concurrent requests saturates a local Ollama instance without
// overwhelming it.
const warmConcurrency = 10

// Builder computes Pattern Rows from a Catalog and writes them through a
// vectorstore.Store.
type Builder struct {
	embedder embedding.Embedder
	store    vectorstore.Store
	logger   *slog.Logger
}

// NewBuilder constructs a Builder. logger may be nil, in which case
// slog.Default() is used.
func NewBuilder(embedder embedding.Embedder, store vectorstore.Store, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{embedder: embedder, store: store, logger: logger}
}

// Build embeds every pattern of every endpoint in cat, in parallel up to
// warmConcurrency, and writes the resulting rows as a single table rebuild.
// A rebuild always drops the existing table first; a failure partway
// through leaves the store in whatever state DropTable+partial AddBatch
// produced, since partial rebuilds are not a supported recovery path — the
// caller must retry Build from a consistent catalog snapshot.
func (b *Builder) Build(ctx context.Context, cat *catalog.Catalog) error {
	start := time.Now()
	defer func() { telemetry.IndexBuildLatency.Observe(time.Since(start).Seconds()) }()

	endpoints := cat.Iter()

	type job struct {
		endpointID  string
		pattern     string
		text        string
		description string
	}
	var jobs []job
	for _, ep := range endpoints {
		for _, pattern := range ep.Patterns {
			jobs = append(jobs, job{
				endpointID:  ep.ID,
				pattern:     pattern,
				text:        ep.Text,
				description: ep.Description,
			})
		}
	}

	rows := make([]vectorstore.PatternRow, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(warmConcurrency)

	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			vec, err := b.embedder.Embed(gctx, j.pattern)
			if err != nil {
				return fmt.Errorf("embed pattern %q for endpoint %q: %w", j.pattern, j.endpointID, err)
			}
			rows[i] = vectorstore.PatternRow{
				EndpointID:  j.endpointID,
				Pattern:     j.pattern,
				Text:        j.text,
				Description: j.description,
				Vector:      vec,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("build pattern index: %w", err)
	}

	b.logger.Info("rebuilding pattern index",
		slog.Int("endpoints", len(endpoints)), slog.Int("rows", len(rows)))
	telemetry.IndexBuildRows.Observe(float64(len(rows)))

	if err := b.store.CreateTable(ctx, rows); err != nil {
		return fmt.Errorf("write pattern index: %w", err)
	}
	return nil
}
