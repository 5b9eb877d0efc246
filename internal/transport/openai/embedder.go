package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/voicenote/internal/domain"
	"github.com/kailas-cloud/voicenote/internal/metrics"
)

const opEmbedding = "embedding"

// Embedder vectorizes text with the OpenAI embeddings endpoint.
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

// NewEmbedder creates an embedding client for cfg.APIKey.
func NewEmbedder(cfg *Config) *Embedder {
	return newEmbedder(newClient(cfg.APIKey, cfg.BaseURL), cfg)
}

func newEmbedder(client *openai.Client, cfg *Config) *Embedder {
	return &Embedder{
		client:     client,
		model:      openai.EmbeddingModel(cfg.EmbeddingModel),
		dimensions: cfg.Dimensions,
	}
}

// Embed implements domain.Embedder with a single-input request.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if strings.TrimSpace(text) == "" {
		return domain.EmbeddingResult{}, domain.ErrEmptyText
	}

	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	model := string(e.model)
	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(opEmbedding, model, "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(opEmbedding, model, "api_error").Inc()
		return domain.EmbeddingResult{}, parseAPIError(opEmbedding, err, domain.ErrEmbeddingProviderError)
	}

	if len(resp.Data) == 0 {
		metrics.ProviderRequestsTotal.WithLabelValues(opEmbedding, model, "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(opEmbedding, model, "empty_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	vec := resp.Data[0].Embedding
	if e.dimensions > 0 && len(vec) != e.dimensions {
		metrics.ProviderRequestsTotal.WithLabelValues(opEmbedding, model, "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(opEmbedding, model, "dimension_mismatch").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf(
			"embedding has %d dimensions, want %d: %w", len(vec), e.dimensions, domain.ErrVectorDimMismatch,
		)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(opEmbedding, model, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(opEmbedding, model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.EmbeddingTokensTotal.WithLabelValues(model, "total").Add(float64(resp.Usage.TotalTokens))
	}

	return domain.EmbeddingResult{
		Embedding:    vec,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
