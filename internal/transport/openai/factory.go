package openai

import (
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/voicenote/internal/domain"
)

// maxCachedClients bounds the per-credential client cache.
const maxCachedClients = 64

// Factory hands out provider clients for a session credential. Clients are cached per
// credential so sessions sharing a key share one HTTP client.
type Factory struct {
	cfg Config

	mu      sync.Mutex
	clients map[string]*openai.Client
}

// NewFactory creates a factory. cfg.APIKey is ignored; every call supplies its own.
func NewFactory(cfg Config) *Factory {
	return &Factory{cfg: cfg, clients: make(map[string]*openai.Client)}
}

// Transcriber returns a transcription client using credential.
func (f *Factory) Transcriber(credential string) domain.Transcriber {
	return newTranscriber(f.client(credential), &f.cfg)
}

// Embedder returns an embedding client using credential.
func (f *Factory) Embedder(credential string) domain.Embedder {
	return newEmbedder(f.client(credential), &f.cfg)
}

func (f *Factory) client(credential string) *openai.Client {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.clients[credential]; ok {
		return c
	}
	if len(f.clients) >= maxCachedClients {
		clear(f.clients)
	}
	c := newClient(credential, f.cfg.BaseURL)
	f.clients[credential] = c
	return c
}
