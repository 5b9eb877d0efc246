package voicenote

import "github.com/kailas-cloud/voicenote/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrEmptyAudio                 = domain.ErrEmptyAudio
	ErrEmptyText                  = domain.ErrEmptyText
	ErrIDConflict                 = domain.ErrIDConflict
	ErrVectorDimMismatch          = domain.ErrVectorDimMismatch
	ErrTranscriptionProviderError = domain.ErrTranscriptionProviderError
	ErrEmbeddingProviderError     = domain.ErrEmbeddingProviderError
)
