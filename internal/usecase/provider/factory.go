package provider

import (
	"go.uber.org/zap"

	"github.com/kailas-cloud/voicenote/internal/domain"
)

// clientFactory builds provider clients for a credential.
type clientFactory interface {
	Transcriber(credential string) domain.Transcriber
	Embedder(credential string) domain.Embedder
}

// InstrumentedFactory decorates every client a factory hands out with logging.
type InstrumentedFactory struct {
	inner              clientFactory
	transcriptionModel string
	embeddingModel     string
	logger             *zap.Logger
}

// NewInstrumentedFactory wraps inner.
func NewInstrumentedFactory(
	inner clientFactory, transcriptionModel, embeddingModel string, logger *zap.Logger,
) *InstrumentedFactory {
	return &InstrumentedFactory{
		inner:              inner,
		transcriptionModel: transcriptionModel,
		embeddingModel:     embeddingModel,
		logger:             logger,
	}
}

// Transcriber returns a logged transcription client.
func (f *InstrumentedFactory) Transcriber(credential string) domain.Transcriber {
	return NewInstrumentedTranscriber(f.inner.Transcriber(credential), f.transcriptionModel, f.logger)
}

// Embedder returns a logged embedding client.
func (f *InstrumentedFactory) Embedder(credential string) domain.Embedder {
	return NewInstrumentedEmbedder(f.inner.Embedder(credential), f.embeddingModel, f.logger)
}
