// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package index

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bennekrouf/matcher/internal/catalog"
	"github.com/bennekrouf/matcher/internal/vectorstore"
)

type fakeEmbedder struct {
	dimension int
	failOn    string
}

func (f fakeEmbedder) Dimension() int { return f.dimension }

func (f fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.failOn != "" && text == f.failOn {
		return nil, errors.New("embedding failed")
	}
	return []float32{float32(len(text)), 0, 0}, nil
}

type fakeStore struct {
	mu      sync.Mutex
	created []vectorstore.PatternRow
}

func (f *fakeStore) CreateTable(_ context.Context, rows []vectorstore.PatternRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = rows
	return nil
}
func (f *fakeStore) AddBatch(context.Context, []vectorstore.PatternRow) error { return nil }
func (f *fakeStore) DropTable(context.Context) error                         { return nil }
func (f *fakeStore) Query(context.Context, []float32, int) (<-chan vectorstore.RowBatch, error) {
	return nil, nil
}
func (f *fakeStore) Ping(context.Context) error { return nil }

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]catalog.Endpoint{
		{
			ID:       "send_email",
			Text:     "Send an email",
			Patterns: []string{"envoie un mail à {email}", "send an email to {email}"},
			Parameters: []catalog.Parameter{
				{Name: "email", Required: true},
			},
		},
	})
	if err != nil {
		t.Fatalf("build test catalog: %v", err)
	}
	return c
}

func TestBuilder_BuildWritesOneRowPerPattern(t *testing.T) {
	store := &fakeStore{}
	b := NewBuilder(fakeEmbedder{dimension: 3}, store, nil)

	if err := b.Build(context.Background(), testCatalog(t)); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(store.created) != 2 {
		t.Fatalf("expected 2 pattern rows (one per pattern), got %d", len(store.created))
	}
	for _, row := range store.created {
		if row.EndpointID != "send_email" {
			t.Errorf("expected endpoint id send_email, got %q", row.EndpointID)
		}
	}
}

func TestBuilder_BuildFailsFastOnEmbedError(t *testing.T) {
	store := &fakeStore{}
	b := NewBuilder(fakeEmbedder{dimension: 3, failOn: "envoie un mail à {email}"}, store, nil)

	err := b.Build(context.Background(), testCatalog(t))
	if err == nil {
		t.Fatalf("expected error from failing embedder")
	}
	if len(store.created) != 0 {
		t.Fatalf("expected no table write on build failure, got %d rows", len(store.created))
	}
}
