// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package vectorstore

import (
	"context"
	"testing"

	badger "github.com/dgraph-io/badger/v4"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	opts := badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("open in-memory badger db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBadgerStore_CreateAndQueryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewBadgerStore(openTestDB(t), nil)

	rows := []PatternRow{
		{EndpointID: "send_email", Pattern: "envoie un mail à {email}", Vector: []float32{1, 0, 0}},
		{EndpointID: "analyze_app", Pattern: "analyse de {app}", Vector: []float32{0, 1, 0}},
	}
	if err := store.CreateTable(ctx, rows); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	ch, err := store.Query(ctx, []float32{1, 0, 0}, 1)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	batch := <-ch
	if batch.Err != nil {
		t.Fatalf("batch error: %v", batch.Err)
	}
	if len(batch.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(batch.Rows))
	}
	if batch.Rows[0].EndpointID != "send_email" {
		t.Fatalf("expected closest match send_email, got %q", batch.Rows[0].EndpointID)
	}
}

func TestBadgerStore_DropTableEmptiesStore(t *testing.T) {
	ctx := context.Background()
	store := NewBadgerStore(openTestDB(t), nil)

	rows := []PatternRow{{EndpointID: "send_email", Vector: []float32{1, 0, 0}}}
	if err := store.CreateTable(ctx, rows); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if err := store.DropTable(ctx); err != nil {
		t.Fatalf("DropTable: %v", err)
	}

	ch, err := store.Query(ctx, []float32{1, 0, 0}, 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	batch := <-ch
	if len(batch.Rows) != 0 {
		t.Fatalf("expected empty store after drop, got %d rows", len(batch.Rows))
	}
}

func TestBadgerStore_Ping(t *testing.T) {
	store := NewBadgerStore(openTestDB(t), nil)
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
