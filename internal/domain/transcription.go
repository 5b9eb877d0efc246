package domain

import (
	"context"

	"github.com/kailas-cloud/voicenote/internal/domain/audio"
)

// Transcriber turns an encoded audio clip into plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, clip audio.Clip) (Transcript, error)
}

// Transcript is the speech-to-text result. Only Text is guaranteed.
type Transcript struct {
	Text     string
	Language string
	Duration float64
}
