// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package embedding

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
)

// LangchainEmbedder wraps a langchaingo embeddings.Embedder so any provider
// langchaingo already supports (Ollama here, swappable to OpenAI/Bedrock/etc
// without touching callers) can serve the Embedder contract.
type LangchainEmbedder struct {
	inner     embeddings.Embedder
	dimension int
}

// NewLangchainOllamaEmbedder builds a LangchainEmbedder backed by
// langchaingo's Ollama LLM client, used as the embeddings.EmbedderClient.
func NewLangchainOllamaEmbedder(model string, dimension int) (*LangchainEmbedder, error) {
	llm, err := ollama.New(ollama.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("construct ollama client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("construct langchaingo embedder: %w", err)
	}
	return &LangchainEmbedder{inner: embedder, dimension: dimension}, nil
}

func (e *LangchainEmbedder) Dimension() int { return e.dimension }

func (e *LangchainEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.inner.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("langchaingo embed query: %w", err)
	}
	return Normalize(vec), nil
}
