// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package matcherapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/bennekrouf/matcher/internal/catalog"
	"github.com/bennekrouf/matcher/internal/extract"
	"github.com/bennekrouf/matcher/internal/publish"
	"github.com/bennekrouf/matcher/internal/result"
	"github.com/bennekrouf/matcher/internal/search"
	"github.com/bennekrouf/matcher/internal/vectorstore"
)

type fakeEmbedder struct{}

func (fakeEmbedder) Dimension() int { return 3 }
func (fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

// fakeStore returns one high-similarity row for send_email regardless of
// the query vector, enough to drive MatchQuery end to end.
type fakeStore struct {
	pingErr error
}

func (f *fakeStore) CreateTable(context.Context, []vectorstore.PatternRow) error { return nil }
func (f *fakeStore) AddBatch(context.Context, []vectorstore.PatternRow) error    { return nil }
func (f *fakeStore) DropTable(context.Context) error                            { return nil }
func (f *fakeStore) Query(_ context.Context, _ []float32, k int) (<-chan vectorstore.RowBatch, error) {
	ch := make(chan vectorstore.RowBatch, 1)
	ch <- vectorstore.RowBatch{
		Rows:      []vectorstore.PatternRow{{EndpointID: "send_email", Pattern: "envoyer un mail à {email}", Text: "Send an email"}},
		Distances: []float32{0.1},
	}
	close(ch)
	return ch, nil
}
func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Endpoint{
		{
			ID:       "send_email",
			Text:     "Send an email",
			Patterns: []string{"envoyer un mail à {email}"},
			Parameters: []catalog.Parameter{
				{Name: "email", Required: true},
			},
		},
	})
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	return cat
}

func testService(t *testing.T, store vectorstore.Store) *Service {
	t.Helper()
	cat := testCatalog(t)
	searcher := search.NewSearcher(fakeEmbedder{}, store)
	processor := result.NewProcessor(cat, extract.NewDefaultRegistry(), result.DefaultThreshold, nil)
	return NewService(cat, searcher, processor, nil)
}

func TestHandleMatchQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := testService(t, &fakeStore{})
	h := NewHandlers(svc, noopPublisher{}, &fakeStore{}, "actions", "matched", nil)

	router := gin.New()
	v1 := router.Group("/v1")
	RegisterRoutes(v1, h)

	body, _ := json.Marshal(MatchRequest{
		Query:    "Pourriez-vous envoyer un mail à user@example.com",
		Language: "fr",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/match", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	var resp MatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.HasMatches)
	require.Len(t, resp.Matches, 1)
	require.Equal(t, "send_email", resp.Matches[0].EndpointID)
	require.Equal(t, "user@example.com", resp.Matches[0].Parameters["email"])
}

func TestHandleHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := testService(t, &fakeStore{})

	t.Run("ok when store reachable", func(t *testing.T) {
		h := NewHandlers(svc, noopPublisher{}, &fakeStore{}, "actions", "matched", nil)
		router := gin.New()
		RegisterRoutes(router.Group("/v1"), h)

		req := httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("degraded when store unreachable", func(t *testing.T) {
		h := NewHandlers(svc, noopPublisher{}, &fakeStore{pingErr: errUnreachable}, "actions", "matched", nil)
		router := gin.New()
		RegisterRoutes(router.Group("/v1"), h)

		req := httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, string, publish.Action) error { return nil }

var errUnreachable = &storeErr{"store unreachable"}

type storeErr struct{ msg string }

func (e *storeErr) Error() string { return e.msg }
