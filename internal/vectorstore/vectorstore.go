// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package vectorstore defines the Store contract the Pattern Index Builder
// writes through and Vector Search reads through, plus the PatternRow it
// persists. Two implementations are provided: an embedded BadgerDB store
// for single-node deployments, and a Weaviate-backed store for deployments
// that already run a Weaviate cluster for other collections.
package vectorstore

import "context"

// Dimension is the fixed vector length every PatternRow's Vector must have;
// D=384 matches the all-minilm embedding model the matching engine is
// tuned for.
const Dimension = 384

// PatternRow is one persisted (endpoint, pattern) pair plus its embedding.
// Every PatternRow's EndpointID must refer to an Endpoint present in the
// Catalog at query time.
type PatternRow struct {
	EndpointID  string
	Pattern     string
	Text        string
	Description string
	Vector      []float32
}

// RowBatch is one chunk of PatternRow results yielded by a Query, paired
// with the cosine distance the store computed against the query vector.
type RowBatch struct {
	Rows      []PatternRow
	Distances []float32
	Err       error
}

// Store is the vector store contract. The Pattern Index Builder is the
// only writer (CreateTable, AddBatch, DropTable); Vector Search is the
// only reader (Query).
type Store interface {
	// CreateTable drops any existing table then creates a fresh one ready
	// to receive AddBatch calls. Builds are all-or-nothing: a failure here
	// must leave no partially-created table behind.
	CreateTable(ctx context.Context, rows []PatternRow) error

	// AddBatch appends rows to the current table. Ordering of insertion is
	// not observable to queries.
	AddBatch(ctx context.Context, rows []PatternRow) error

	// DropTable removes the table entirely; a subsequent Query must behave
	// as if the store were empty.
	DropTable(ctx context.Context) error

	// Query issues a cosine-distance top-k search and streams the results
	// as one or more batches over the returned channel. The channel is
	// closed when the search is exhausted or ctx is done.
	Query(ctx context.Context, vector []float32, k int) (<-chan RowBatch, error)

	// Ping verifies the store is reachable and usable.
	Ping(ctx context.Context) error
}
