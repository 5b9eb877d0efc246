package session

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/voicenote/internal/domain"
	"github.com/kailas-cloud/voicenote/internal/domain/audio"
	"github.com/kailas-cloud/voicenote/internal/domain/draft"
)

// Status messages shown inline by both surfaces.
const (
	StatusAuthorized     = "Credential accepted"
	StatusRecorded       = "Audio recorded"
	StatusAudioUnchanged = "Audio unchanged, draft kept"
	StatusTranscribed    = "Transcription ready"
	StatusEdited         = "Draft updated"
	StatusSaved          = "Note saved"
	StatusAlreadySaved   = "Note already saved"
	StatusNothingToSave  = "Nothing to save"
	StatusNoNotes        = "No notes found"
)

// Controller implements the session actions. It holds no session data: every action
// takes the current State and returns the next one. A failed action returns the
// input state unchanged.
type Controller struct {
	creds     CredentialResolver
	providers ProviderFactory
	notes     NoteStore
	logger    *zap.Logger
}

// NewController creates a session controller.
func NewController(creds CredentialResolver, providers ProviderFactory, notes NoteStore, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{creds: creds, providers: providers, notes: notes, logger: logger}
}

// Authorize resolves a credential for the session.
func (c *Controller) Authorize(ctx context.Context, st State) (Result, error) {
	cred, err := c.creds.Resolve(ctx, st.Credential)
	if err != nil {
		return Result{State: st}, fmt.Errorf("authorize: %w", err)
	}
	st.Credential = cred
	return Result{State: st, Status: StatusAuthorized}, nil
}

// SetCredential stores a key the user typed in.
func (c *Controller) SetCredential(st State, key string) (Result, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Result{State: st}, domain.ErrCredentialRequired
	}
	st.Credential = key
	return Result{State: st, Status: StatusAuthorized}, nil
}

// Record attaches captured audio to the draft. New audio clears the draft text.
func (c *Controller) Record(st State, clip audio.Clip) (Result, error) {
	if !st.Authorized() {
		return Result{State: st}, domain.ErrCredentialRequired
	}
	if clip.IsZero() {
		return Result{State: st}, domain.ErrEmptyAudio
	}

	next, changed := st.Draft.Record(clip)
	st.Draft = next
	if !changed {
		return Result{State: st, Status: StatusAudioUnchanged}, nil
	}
	c.logger.Debug("audio recorded",
		zap.String("session", st.ID),
		zap.String("digest", clip.Digest()),
		zap.Int("bytes", clip.Size()),
	)
	return Result{State: st, Status: StatusRecorded}, nil
}

// Transcribe converts the draft audio into draft text.
func (c *Controller) Transcribe(ctx context.Context, st State) (Result, error) {
	if !st.Authorized() {
		return Result{State: st}, domain.ErrCredentialRequired
	}
	if !st.Draft.HasAudio() {
		return Result{State: st}, domain.ErrNoAudio
	}

	tr, err := c.providers.Transcriber(st.Credential).Transcribe(ctx, st.Draft.Clip())
	if err != nil {
		return Result{State: st}, fmt.Errorf("transcribe: %w", err)
	}

	st.Draft = st.Draft.Transcribed(tr.Text)
	return Result{State: st, Status: StatusTranscribed}, nil
}

// Edit replaces the draft text.
func (c *Controller) Edit(st State, text string) (Result, error) {
	if !st.Authorized() {
		return Result{State: st}, domain.ErrCredentialRequired
	}
	switch st.Draft.State() {
	case draft.Transcribed, draft.Saved:
	default:
		return Result{State: st}, domain.ErrNoDraft
	}

	st.Draft = st.Draft.Edit(text)
	return Result{State: st, Status: StatusEdited}, nil
}

// Save stores the draft text as a note. Empty text is a no-op, and so is saving a
// draft that was already saved without further edits.
func (c *Controller) Save(ctx context.Context, st State) (Result, error) {
	if !st.Authorized() {
		return Result{State: st}, domain.ErrCredentialRequired
	}
	if strings.TrimSpace(st.Draft.Text()) == "" {
		return Result{State: st, Status: StatusNothingToSave}, nil
	}
	if st.Draft.State() == draft.Saved {
		return Result{State: st, Status: StatusAlreadySaved, NoteID: st.Draft.NoteID()}, nil
	}

	n, err := c.notes.Add(ctx, c.providers.Embedder(st.Credential), st.Draft.Text())
	if err != nil {
		return Result{State: st}, fmt.Errorf("save note: %w", err)
	}

	st.Draft = st.Draft.Saved(n.ID)
	c.logger.Info("note saved", zap.String("session", st.ID), zap.Uint64("note_id", n.ID))
	return Result{State: st, Status: StatusSaved, Saved: true, NoteID: n.ID}, nil
}

// Search lists notes: one page in store order for a blank query, the best matches otherwise.
// The draft is not touched.
func (c *Controller) Search(ctx context.Context, st State, query string) (Result, error) {
	if !st.Authorized() {
		return Result{State: st}, domain.ErrCredentialRequired
	}

	notes, err := c.notes.List(ctx, c.providers.Embedder(st.Credential), query)
	if err != nil {
		return Result{State: st}, fmt.Errorf("search notes: %w", err)
	}

	status := StatusNoNotes
	if len(notes) > 0 {
		status = fmt.Sprintf("Found %d notes", len(notes))
	}
	return Result{State: st, Status: status, Notes: notes}, nil
}
