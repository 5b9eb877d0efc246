// Package note persists notes in a vector store. Qdrant and Redis 8 are supported.
package note

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/voicenote/internal/domain"
)

const payloadText = "text"

// Options configures a note repository.
type Options struct {
	Collection string
	Dimensions int
}

func (o Options) validate() error {
	if o.Collection == "" {
		return errors.New("collection is required")
	}
	if o.Dimensions <= 0 {
		return errors.New("dimensions must be positive")
	}
	return nil
}

func dimMismatch(collection string, got, want int) error {
	return fmt.Errorf("%w: collection %s has vector size %d, expected %d",
		domain.ErrVectorDimMismatch, collection, got, want)
}
