package domain

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/voicenote/internal/domain/audio"
)

var (
	// ErrCredentialRequired signals that no provider credential is available for the session.
	ErrCredentialRequired = errors.New("credential required")
	// ErrEmptyAudio signals an empty audio buffer.
	ErrEmptyAudio = audio.ErrEmpty
	// ErrEmptyText signals empty note or query text.
	ErrEmptyText = errors.New("text is empty")
	// ErrNoAudio signals a transcription attempt without recorded audio.
	ErrNoAudio = errors.New("no audio recorded")
	// ErrNoDraft signals an edit attempt before a transcript exists.
	ErrNoDraft = errors.New("no draft to edit")
	// ErrSessionNotFound signals an unknown or expired session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrIDConflict signals that the assigned note ID is already taken.
	ErrIDConflict = errors.New("note id conflict")

	// ErrTranscriptionProviderError signals a speech-to-text provider failure.
	ErrTranscriptionProviderError = errors.New("transcription provider error")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

// IDConflictError wraps ErrIDConflict with the colliding note ID.
type IDConflictError struct {
	ID uint64
}

func (e *IDConflictError) Error() string {
	return fmt.Sprintf("%s: id %d is already taken", ErrIDConflict.Error(), e.ID)
}

func (e *IDConflictError) Unwrap() error { return ErrIDConflict }

// NewIDConflict creates an id conflict error.
func NewIDConflict(id uint64) error {
	return &IDConflictError{ID: id}
}
