package voicenote

// Note is a stored voice note.
type Note struct {
	ID   uint64
	Text string
}

// Result is a note returned by Browse or Search.
// Score is nil for Browse and set to the similarity for Search.
type Result struct {
	ID    uint64
	Text  string
	Score *float64
}
