// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package embedding defines the Embedder contract the Pattern Index
// Builder and Vector Search stages depend on, plus the two adapters that
// satisfy it: a direct Ollama HTTP client and a langchaingo-backed client
// for providers langchaingo already wraps.
package embedding

import (
	"context"
	"fmt"
	"math"
)

// Embedder turns text into a dense vector. Implementations must return an
// L2-normalized vector of a fixed Dimension so cosine similarity reduces to
// a plain dot product downstream.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// l2Norm computes the L2 (Euclidean) norm of a float32 vector.
func l2Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Normalize returns v scaled to unit L2 norm. A zero vector is returned
// unchanged rather than dividing by zero.
func Normalize(v []float32) []float32 {
	norm := l2Norm(v)
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// DotProduct computes the dot product of two float32 vectors; the dot of
// two unit vectors is their cosine similarity.
func DotProduct(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// New constructs the Embedder selected by kind: "ollama" (the default,
// direct HTTP client) or "langchain" (routed through langchaingo's Ollama
// LLM adapter, the seam deployments use to swap in any other provider
// langchaingo wraps without touching callers).
func New(kind, ollamaURL, model string, dimension int) (Embedder, error) {
	switch kind {
	case "", "ollama":
		return NewOllamaEmbedder(ollamaURL, model, dimension), nil
	case "langchain":
		embedder, err := NewLangchainOllamaEmbedder(model, dimension)
		if err != nil {
			return nil, fmt.Errorf("construct langchain embedder: %w", err)
		}
		return embedder, nil
	default:
		return nil, fmt.Errorf("unknown embedder kind %q (want \"ollama\" or \"langchain\")", kind)
	}
}
