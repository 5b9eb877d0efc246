package session

import (
	"context"

	"github.com/kailas-cloud/voicenote/internal/domain"
)

// CredentialResolver finds the provider credential for a session.
type CredentialResolver interface {
	Resolve(ctx context.Context, held string) (string, error)
}

// ProviderFactory builds provider clients bound to a credential.
type ProviderFactory interface {
	Transcriber(credential string) domain.Transcriber
	Embedder(credential string) domain.Embedder
}

// NoteStore persists notes and answers queries over them.
type NoteStore interface {
	Add(ctx context.Context, emb domain.Embedder, text string) (domain.Note, error)
	List(ctx context.Context, emb domain.Embedder, query string) ([]domain.SearchResult, error)
}
