// Package provider decorates the hosted speech and embedding clients with logging.
package provider

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/voicenote/internal/domain"
	"github.com/kailas-cloud/voicenote/internal/domain/audio"
)

// InstrumentedEmbedder wraps an Embedder with request logging.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai.
type InstrumentedEmbedder struct {
	inner  domain.Embedder
	model  string
	logger *zap.Logger
}

// NewInstrumentedEmbedder wraps an embedder with observability.
func NewInstrumentedEmbedder(inner domain.Embedder, model string, logger *zap.Logger) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{inner: inner, model: model, logger: logger}
}

// Embed delegates to the inner embedder and logs the outcome.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()
	result, err := p.inner.Embed(ctx, text)
	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Embedding request failed",
			zap.String("model", p.model),
			zap.Int("text_len", len(text)),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	p.logger.Debug("Embedding request completed",
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return result, nil
}

// InstrumentedTranscriber wraps a Transcriber with request logging.
type InstrumentedTranscriber struct {
	inner  domain.Transcriber
	model  string
	logger *zap.Logger
}

// NewInstrumentedTranscriber wraps a transcriber with observability.
func NewInstrumentedTranscriber(inner domain.Transcriber, model string, logger *zap.Logger) *InstrumentedTranscriber {
	return &InstrumentedTranscriber{inner: inner, model: model, logger: logger}
}

// Transcribe delegates to the inner transcriber and logs the outcome.
func (p *InstrumentedTranscriber) Transcribe(ctx context.Context, clip audio.Clip) (domain.Transcript, error) {
	start := time.Now()
	tr, err := p.inner.Transcribe(ctx, clip)
	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Transcription request failed",
			zap.String("model", p.model),
			zap.String("mime", clip.MIME()),
			zap.Int("audio_bytes", clip.Size()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.Transcript{}, fmt.Errorf("transcribe: %w", err)
	}

	p.logger.Debug("Transcription request completed",
		zap.String("model", p.model),
		zap.String("mime", clip.MIME()),
		zap.Int("audio_bytes", clip.Size()),
		zap.Duration("duration", duration),
		zap.String("language", tr.Language),
		zap.Float64("audio_seconds", tr.Duration),
		zap.Int("text_len", len(tr.Text)),
	)
	return tr, nil
}
