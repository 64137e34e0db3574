package service

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// The embedding endpoint caps the number of inputs per request.
const embeddingBatchSize = 100

// Embedder converts texts into vectors via the external embedding service.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// OpenAIEmbedder calls an OpenAI-compatible embeddings endpoint.
type OpenAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

func NewOpenAIEmbedder(baseURL, apiKey, model string) *OpenAIEmbedder {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(config),
		model:  openai.EmbeddingModel(model),
	}
}

// EmbedTexts embeds the inputs in order, batching requests. Failures carry
// the upstream error taxonomy after the retry bound is exhausted.
func (e *OpenAIEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += embeddingBatchSize {
		end := i + embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[i:end]

		var resp openai.EmbeddingResponse
		err := withRetry(ctx, "embedding", func(callCtx context.Context) error {
			var callErr error
			resp, callErr = e.client.CreateEmbeddings(callCtx, openai.EmbeddingRequest{
				Input: batch,
				Model: e.model,
			})
			return callErr
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Data) != len(batch) {
			return nil, fmt.Errorf("embedding service returned %d vectors for %d inputs", len(resp.Data), len(batch))
		}
		for _, item := range resp.Data {
			vectors = append(vectors, item.Embedding)
		}
	}
	return vectors, nil
}
