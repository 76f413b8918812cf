// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package search

import (
	"context"
	"testing"

	"github.com/bennekrouf/matcher/internal/vectorstore"
)

type fakeEmbedder struct{}

func (fakeEmbedder) Dimension() int { return 3 }
func (fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

type fakeStore struct {
	gotK int
}

func (f *fakeStore) CreateTable(context.Context, []vectorstore.PatternRow) error { return nil }
func (f *fakeStore) AddBatch(context.Context, []vectorstore.PatternRow) error    { return nil }
func (f *fakeStore) DropTable(context.Context) error                            { return nil }
func (f *fakeStore) Query(_ context.Context, _ []float32, k int) (<-chan vectorstore.RowBatch, error) {
	f.gotK = k
	ch := make(chan vectorstore.RowBatch, 1)
	ch <- vectorstore.RowBatch{Rows: []vectorstore.PatternRow{{EndpointID: "send_email"}}}
	close(ch)
	return ch, nil
}
func (f *fakeStore) Ping(context.Context) error { return nil }

func TestSearcher_Query_RejectsInvalidK(t *testing.T) {
	s := NewSearcher(fakeEmbedder{}, &fakeStore{})
	if _, err := s.Query(context.Background(), "query", 3); err == nil {
		t.Fatalf("expected error for unsupported k")
	}
}

func TestSearcher_Query_PassesKThrough(t *testing.T) {
	store := &fakeStore{}
	s := NewSearcher(fakeEmbedder{}, store)

	ch, err := s.Query(context.Background(), "envoie un mail", ShowAll)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	batch := <-ch
	if store.gotK != ShowAll {
		t.Fatalf("expected k=%d forwarded to store, got %d", ShowAll, store.gotK)
	}
	if len(batch.Rows) != 1 {
		t.Fatalf("expected 1 row from fake store")
	}
}
