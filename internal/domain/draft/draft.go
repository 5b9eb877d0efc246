// Package draft models the transient audio/text pairing held during one capture-to-save cycle.
package draft

import "github.com/kailas-cloud/voicenote/internal/domain/audio"

// State is the lifecycle stage of a draft.
type State string

const (
	// Idle means no audio has been captured.
	Idle State = "idle"
	// Recorded means audio is present but not transcribed.
	Recorded State = "recorded"
	// Transcribed means draft text is present and editable.
	Transcribed State = "transcribed"
	// Saved means the current text was committed as a note.
	Saved State = "saved"
)

// Draft is a value type: every transition returns the next Draft.
type Draft struct {
	clip   audio.Clip
	digest string
	text   string
	state  State
	noteID uint64
}

// New returns an empty Idle draft.
func New() Draft {
	return Draft{state: Idle}
}

// Record attaches captured audio. When the digest differs from the current one the
// draft text is cleared and the draft returns to Recorded. Re-recording identical audio
// keeps the text. The second result reports whether the draft was invalidated.
func (d Draft) Record(clip audio.Clip) (Draft, bool) {
	if clip.IsZero() {
		return d, false
	}
	if clip.Digest() == d.digest {
		d.clip = clip
		return d, false
	}
	return Draft{
		clip:   clip,
		digest: clip.Digest(),
		state:  Recorded,
	}, true
}

// Transcribed stores a fresh transcript as draft text.
func (d Draft) Transcribed(text string) Draft {
	d.text = text
	d.state = Transcribed
	d.noteID = 0
	return d
}

// Edit replaces the draft text in place. It does not touch the audio digest.
// Editing a saved draft reopens it.
func (d Draft) Edit(text string) Draft {
	d.text = text
	if d.state == Saved {
		d.state = Transcribed
		d.noteID = 0
	}
	return d
}

// Saved marks the draft as committed under noteID. The text stays visible.
func (d Draft) Saved(noteID uint64) Draft {
	d.state = Saved
	d.noteID = noteID
	return d
}

// Clip returns the current audio.
func (d Draft) Clip() audio.Clip { return d.clip }

// Digest returns the hash of the current audio, empty when Idle.
func (d Draft) Digest() string { return d.digest }

// Text returns the draft text.
func (d Draft) Text() string { return d.text }

// State returns the lifecycle stage.
func (d Draft) State() State {
	if d.state == "" {
		return Idle
	}
	return d.state
}

// NoteID returns the id of the note the draft was saved as, 0 if unsaved.
func (d Draft) NoteID() uint64 { return d.noteID }

// HasAudio reports whether audio was captured.
func (d Draft) HasAudio() bool { return !d.clip.IsZero() }

// CanSave reports whether the draft holds non-empty text.
func (d Draft) CanSave() bool { return d.text != "" }
