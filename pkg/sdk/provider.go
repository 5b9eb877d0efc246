package voicenote

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/voicenote/internal/domain"
	"github.com/kailas-cloud/voicenote/internal/domain/audio"
)

// Embedder converts text to vector embeddings.
// The vector length must match WithVectorDimensions.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// Transcriber turns encoded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, data []byte, filename string) (Transcript, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Transcript is the speech-to-text result. Only Text is required.
type Transcript struct {
	Text     string
	Language string
	Duration float64
}

// embedderAdapter wraps public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// transcriberAdapter wraps public Transcriber to satisfy internal domain.Transcriber.
type transcriberAdapter struct {
	inner Transcriber
}

func (a *transcriberAdapter) Transcribe(ctx context.Context, clip audio.Clip) (domain.Transcript, error) {
	t, err := a.inner.Transcribe(ctx, clip.Bytes(), clip.Filename())
	if err != nil {
		return domain.Transcript{}, fmt.Errorf("transcribe: %w", err)
	}
	return domain.Transcript{Text: t.Text, Language: t.Language, Duration: t.Duration}, nil
}

var errNoProvider = errors.New("voicenote: provider not configured (use WithOpenAI or WithEmbedder/WithTranscriber)")

// noopProvider fails every call; it stands in when no provider was configured.
type noopProvider struct{}

func (noopProvider) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errNoProvider
}

func (noopProvider) Transcribe(_ context.Context, _ audio.Clip) (domain.Transcript, error) {
	return domain.Transcript{}, errNoProvider
}
