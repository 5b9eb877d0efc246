package note

import (
	"context"

	"github.com/kailas-cloud/voicenote/internal/domain"
)

// Repository defines the storage contract for notes.
type Repository interface {
	EnsureCollection(ctx context.Context) error
	MaxID(ctx context.Context) (uint64, error)
	Exists(ctx context.Context, id uint64) (bool, error)
	Upsert(ctx context.Context, n domain.Note) error
	Scroll(ctx context.Context, limit int) ([]domain.Note, error)
	Search(ctx context.Context, vector []float32, limit int) ([]domain.ScoredNote, error)
}

// Sequencer assigns note ids.
type Sequencer interface {
	NextID(ctx context.Context) (uint64, error)
}
