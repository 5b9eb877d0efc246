package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/voicenote/internal/domain"
	"github.com/kailas-cloud/voicenote/internal/domain/audio"
	"github.com/kailas-cloud/voicenote/internal/metrics"
)

const opTranscription = "transcription"

// Transcriber turns speech into text with the OpenAI transcription endpoint.
type Transcriber struct {
	client   *openai.Client
	model    string
	filename string
}

// NewTranscriber creates a transcription client for cfg.APIKey.
func NewTranscriber(cfg *Config) *Transcriber {
	return newTranscriber(newClient(cfg.APIKey, cfg.BaseURL), cfg)
}

func newTranscriber(client *openai.Client, cfg *Config) *Transcriber {
	filename := cfg.AudioFilename
	if filename == "" {
		filename = audio.DefaultFilename
	}
	return &Transcriber{client: client, model: cfg.TranscriptionModel, filename: filename}
}

// Transcribe submits the whole clip from its first byte and returns the transcript.
func (t *Transcriber) Transcribe(ctx context.Context, clip audio.Clip) (domain.Transcript, error) {
	if clip.IsZero() {
		return domain.Transcript{}, domain.ErrEmptyAudio
	}

	name := clip.Filename()
	if name == "" {
		name = t.filename
	}

	req := openai.AudioRequest{
		Model:    t.model,
		FilePath: name,
		Reader:   clip.Reader(),
		Format:   openai.AudioResponseFormatVerboseJSON,
	}

	start := time.Now()
	resp, err := t.client.CreateTranscription(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues(opTranscription, t.model, "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues(opTranscription, t.model, "api_error").Inc()
		return domain.Transcript{}, parseAPIError(opTranscription, err, domain.ErrTranscriptionProviderError)
	}

	metrics.ProviderRequestsTotal.WithLabelValues(opTranscription, t.model, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(opTranscription, t.model).Observe(duration.Seconds())
	if resp.Duration > 0 {
		metrics.TranscribedAudioSeconds.WithLabelValues(t.model).Add(resp.Duration)
	}

	return domain.Transcript{
		Text:     resp.Text,
		Language: resp.Language,
		Duration: resp.Duration,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (t *Transcriber) HealthCheck(ctx context.Context) error {
	if _, err := t.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
