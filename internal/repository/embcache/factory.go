package embcache

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/voicenote/internal/domain"
)

// clientFactory builds provider clients for a credential.
type clientFactory interface {
	Transcriber(credential string) domain.Transcriber
	Embedder(credential string) domain.Embedder
}

// Factory hands out embedders that share one cache. Embeddings do not depend on the
// credential, so every session reads the same entries.
type Factory struct {
	inner      clientFactory
	store      store
	cfg        Config
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// NewFactory wraps inner so its embedders are cached in s.
func NewFactory(
	inner clientFactory, s store, cfg Config, cacheTotal *prometheus.CounterVec, logger *zap.Logger,
) *Factory {
	return &Factory{inner: inner, store: s, cfg: cfg, cacheTotal: cacheTotal, logger: logger}
}

// Transcriber passes through to the inner factory.
func (f *Factory) Transcriber(credential string) domain.Transcriber {
	return f.inner.Transcriber(credential)
}

// Embedder returns a cached embedder for credential.
func (f *Factory) Embedder(credential string) domain.Embedder {
	return New(f.inner.Embedder(credential), f.store, f.cfg, f.cacheTotal, f.logger)
}
