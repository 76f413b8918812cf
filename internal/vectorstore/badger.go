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
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"sort"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/bennekrouf/matcher/internal/embedding"
)

// badgerKeyPrefix namespaces pattern rows within a BadgerDB instance that
// may also be used for other concerns. Versioned (v1) so a future storage
// format change does not collide with existing keys.
const badgerKeyPrefix = "matcher/pattern/v1/"

// BadgerStore is an embedded, single-node Store backed by BadgerDB.
//
// # Description
//
// Pattern rows rarely number more than a few thousand (one per endpoint
// pattern), so Query does a brute-force scan of the keyspace computing
// cosine similarity via dot product against already-unit-normalized
// vectors — there is no benefit to an HNSW index at this scale, mirroring
// the teacher's reasoning for keeping small, infrastructure-scale vector
// sets out of a dedicated ANN store.
//
// # Thread Safety
//
// Safe for concurrent use; BadgerDB transactions are per-goroutine.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// NewBadgerStore wraps an already-opened BadgerDB handle. The caller owns
// the DB's lifecycle (open at startup, close at shutdown).
func NewBadgerStore(db *badger.DB, logger *slog.Logger) *BadgerStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &BadgerStore{db: db, logger: logger}
}

func (s *BadgerStore) CreateTable(ctx context.Context, rows []PatternRow) error {
	if err := s.DropTable(ctx); err != nil {
		return fmt.Errorf("create table: drop existing: %w", err)
	}
	return s.AddBatch(ctx, rows)
}

func (s *BadgerStore) AddBatch(ctx context.Context, rows []PatternRow) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for i, row := range rows {
		key := rowKey(i, row)
		val, err := gobEncodeRow(row)
		if err != nil {
			return fmt.Errorf("encode pattern row %d: %w", i, err)
		}
		if err := wb.Set(key, val); err != nil {
			return fmt.Errorf("stage pattern row %d: %w", i, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush pattern rows: %w", err)
	}
	return nil
}

func (s *BadgerStore) DropTable(ctx context.Context) error {
	return s.db.DropPrefix([]byte(badgerKeyPrefix))
}

func (s *BadgerStore) Query(ctx context.Context, vector []float32, k int) (<-chan RowBatch, error) {
	out := make(chan RowBatch, 1)

	type scored struct {
		row  PatternRow
		dist float32
	}
	var all []scored

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			item := it.Item()
			var row PatternRow
			err := item.Value(func(val []byte) error {
				decoded, decErr := gobDecodeRow(val)
				if decErr != nil {
					return decErr
				}
				row = decoded
				return nil
			})
			if err != nil {
				s.logger.Error("vectorstore: dropping malformed pattern row",
					slog.String("key", string(item.Key())), slog.Any("error", err))
				continue
			}
			sim := embedding.DotProduct(vector, row.Vector)
			all = append(all, scored{row: row, dist: 1 - sim})
		}
		return nil
	})
	if err != nil {
		close(out)
		return nil, fmt.Errorf("query pattern rows: %w", err)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].dist < all[j].dist })
	if k > 0 && k < len(all) {
		all = all[:k]
	}

	go func() {
		defer close(out)
		rows := make([]PatternRow, 0, len(all))
		dists := make([]float32, 0, len(all))
		for _, s := range all {
			rows = append(rows, s.row)
			dists = append(dists, s.dist)
		}
		select {
		case out <- RowBatch{Rows: rows, Distances: dists}:
		case <-ctx.Done():
		}
	}()
	return out, nil
}

func (s *BadgerStore) Ping(ctx context.Context) error {
	return s.db.View(func(txn *badger.Txn) error { return nil })
}

func rowKey(index int, row PatternRow) []byte {
	return []byte(fmt.Sprintf("%s%s/%08d", badgerKeyPrefix, row.EndpointID, index))
}

func gobEncodeRow(row PatternRow) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(row); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gobDecodeRow(data []byte) (PatternRow, error) {
	var row PatternRow
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&row); err != nil {
		return PatternRow{}, err
	}
	return row, nil
}
