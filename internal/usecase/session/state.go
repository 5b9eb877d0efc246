// Package session drives one user's capture, transcribe, edit, save and search cycle.
package session

import (
	"github.com/google/uuid"

	"github.com/kailas-cloud/voicenote/internal/domain"
	"github.com/kailas-cloud/voicenote/internal/domain/draft"
)

// State is everything a session carries between actions.
type State struct {
	ID         string
	Credential string
	Draft      draft.Draft
}

// NewState returns a fresh session with a random id and an idle draft.
func NewState() State {
	return State{ID: uuid.NewString(), Draft: draft.New()}
}

// Authorized reports whether the session holds a credential.
func (s State) Authorized() bool { return s.Credential != "" }

// Result is the outcome of one controller action.
type Result struct {
	State  State
	Status string

	// Saved is true when Save wrote a new note.
	Saved bool
	// NoteID is the id of the note the draft was saved as.
	NoteID uint64
	// Notes holds the search view rows.
	Notes []domain.SearchResult
}

