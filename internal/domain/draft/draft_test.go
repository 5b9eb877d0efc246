package draft

import (
	"testing"

	"github.com/kailas-cloud/voicenote/internal/domain/audio"
)

func mustClip(t *testing.T, data string) audio.Clip {
	t.Helper()
	c, err := audio.New([]byte(data), "note.mp3")
	if err != nil {
		t.Fatalf("audio.New: %v", err)
	}
	return c
}

func TestNew_Idle(t *testing.T) {
	d := New()
	if d.State() != Idle {
		t.Errorf("state = %q, want idle", d.State())
	}
	if d.HasAudio() || d.CanSave() {
		t.Error("new draft must have no audio and nothing to save")
	}
}

func TestZeroValue_Idle(t *testing.T) {
	var d Draft
	if d.State() != Idle {
		t.Errorf("state = %q, want idle", d.State())
	}
}

func TestRecord_FromIdle(t *testing.T) {
	d, changed := New().Record(mustClip(t, "take-1"))
	if !changed {
		t.Error("first recording must report a change")
	}
	if d.State() != Recorded {
		t.Errorf("state = %q, want recorded", d.State())
	}
	if d.Digest() == "" {
		t.Error("digest must be set after recording")
	}
}

func TestRecord_NewAudioClearsText(t *testing.T) {
	d, _ := New().Record(mustClip(t, "take-1"))
	d = d.Transcribed("hello world")
	d = d.Edit("hello edited world")

	d, changed := d.Record(mustClip(t, "take-2"))
	if !changed {
		t.Error("different audio must report a change")
	}
	if d.Text() != "" {
		t.Errorf("text = %q, want empty after new recording", d.Text())
	}
	if d.State() != Recorded {
		t.Errorf("state = %q, want recorded", d.State())
	}
}

func TestRecord_SameAudioKeepsText(t *testing.T) {
	d, _ := New().Record(mustClip(t, "take-1"))
	d = d.Transcribed("hello")

	d, changed := d.Record(mustClip(t, "take-1"))
	if changed {
		t.Error("identical audio must not report a change")
	}
	if d.Text() != "hello" {
		t.Errorf("text = %q, want hello", d.Text())
	}
	if d.State() != Transcribed {
		t.Errorf("state = %q, want transcribed", d.State())
	}
}

func TestRecord_AfterSaveReturnsToRecorded(t *testing.T) {
	d, _ := New().Record(mustClip(t, "take-1"))
	d = d.Transcribed("hello").Saved(7)

	d, _ = d.Record(mustClip(t, "take-2"))
	if d.State() != Recorded {
		t.Errorf("state = %q, want recorded", d.State())
	}
	if d.NoteID() != 0 {
		t.Errorf("note id = %d, want 0", d.NoteID())
	}
}

func TestRecord_ZeroClipIgnored(t *testing.T) {
	d, _ := New().Record(mustClip(t, "take-1"))
	d = d.Transcribed("hello")

	d, changed := d.Record(audio.Clip{})
	if changed || d.Text() != "hello" {
		t.Error("zero clip must not alter the draft")
	}
}

func TestEdit_ReopensSaved(t *testing.T) {
	d, _ := New().Record(mustClip(t, "take-1"))
	d = d.Transcribed("hello").Saved(3)

	d = d.Edit("hello again")
	if d.State() != Transcribed {
		t.Errorf("state = %q, want transcribed", d.State())
	}
	if d.Text() != "hello again" {
		t.Errorf("text = %q", d.Text())
	}
}

func TestEdit_KeepsDigest(t *testing.T) {
	d, _ := New().Record(mustClip(t, "take-1"))
	before := d.Digest()
	d = d.Transcribed("a").Edit("b")
	if d.Digest() != before {
		t.Error("edit must not change the audio digest")
	}
}

func TestSaved_KeepsText(t *testing.T) {
	d, _ := New().Record(mustClip(t, "take-1"))
	d = d.Transcribed("keep me").Saved(1)
	if d.Text() != "keep me" {
		t.Errorf("text = %q, want keep me", d.Text())
	}
	if d.State() != Saved || d.NoteID() != 1 {
		t.Errorf("state = %q id = %d", d.State(), d.NoteID())
	}
}

func TestCanSave(t *testing.T) {
	d, _ := New().Record(mustClip(t, "take-1"))
	if d.CanSave() {
		t.Error("recorded draft without text must not be saveable")
	}
	d = d.Transcribed("")
	if d.CanSave() {
		t.Error("empty transcript must not be saveable")
	}
	d = d.Edit("now there is text")
	if !d.CanSave() {
		t.Error("draft with text must be saveable")
	}
}
