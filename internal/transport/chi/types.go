package chi

import "github.com/kailas-cloud/voicenote/internal/usecase/session"

// ErrorCode is a machine-readable error identifier returned to clients.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest                 ErrorCode = "bad_request"
	ErrorCodeCredentialRequired         ErrorCode = "credential_required"
	ErrorCodeEmptyAudio                 ErrorCode = "empty_audio"
	ErrorCodeEmptyText                  ErrorCode = "empty_text"
	ErrorCodeNoAudio                    ErrorCode = "no_audio"
	ErrorCodeNoDraft                    ErrorCode = "no_draft"
	ErrorCodeSessionNotFound            ErrorCode = "session_not_found"
	ErrorCodeIDConflict                 ErrorCode = "id_conflict"
	ErrorCodeVectorDimMismatch          ErrorCode = "vector_dim_mismatch"
	ErrorCodeTranscriptionProviderError ErrorCode = "transcription_provider_error"
	ErrorCodeEmbeddingProviderError     ErrorCode = "embedding_provider_error"
	ErrorCodeInternalError              ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// CredentialRequest is the body of POST /sessions/{id}/credential.
type CredentialRequest struct {
	APIKey string `json:"api_key"`
}

// DraftRequest is the body of PUT /sessions/{id}/draft.
type DraftRequest struct {
	Text string `json:"text"`
}

// AudioInfo describes the clip held by a session.
type AudioInfo struct {
	Filename string `json:"filename"`
	MIME     string `json:"mime"`
	Size     int    `json:"size"`
	Digest   string `json:"digest"`
}

// DraftResponse is the current draft of a session.
type DraftResponse struct {
	State  string     `json:"state"`
	Text   string     `json:"text"`
	Audio  *AudioInfo `json:"audio,omitempty"`
	NoteID *uint64    `json:"note_id,omitempty"`
}

// SessionResponse is returned by every action on the record/transcribe/save view.
type SessionResponse struct {
	ID         string        `json:"id"`
	Authorized bool          `json:"authorized"`
	Status     string        `json:"status,omitempty"`
	Saved      *bool         `json:"saved,omitempty"`
	Draft      DraftResponse `json:"draft"`
}

// NoteItem is one row of the search view.
type NoteItem struct {
	ID    uint64   `json:"id"`
	Text  string   `json:"text"`
	Score *float64 `json:"score"`
}

// NotesResponse is the search view.
type NotesResponse struct {
	Status string     `json:"status"`
	Items  []NoteItem `json:"items"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func sessionToResponse(st session.State, status string) SessionResponse {
	d := st.Draft
	resp := SessionResponse{
		ID:         st.ID,
		Authorized: st.Authorized(),
		Status:     status,
		Draft: DraftResponse{
			State: string(d.State()),
			Text:  d.Text(),
		},
	}
	if d.HasAudio() {
		c := d.Clip()
		resp.Draft.Audio = &AudioInfo{
			Filename: c.Filename(),
			MIME:     c.MIME(),
			Size:     c.Size(),
			Digest:   c.Digest(),
		}
	}
	if id := d.NoteID(); id != 0 {
		resp.Draft.NoteID = &id
	}
	return resp
}

func notesToResponse(res session.Result) NotesResponse {
	items := make([]NoteItem, len(res.Notes))
	for i, n := range res.Notes {
		items[i] = NoteItem{ID: n.ID, Text: n.Text, Score: n.Score}
	}
	return NotesResponse{Status: res.Status, Items: items}
}
