package domain

// Note is a stored voice note.
type Note struct {
	ID     uint64
	Text   string
	Vector []float32 // not exposed to clients
}

// SearchResult is a read-only projection of a note.
// Score is nil for browse listings and set for similarity search.
type SearchResult struct {
	ID    uint64
	Text  string
	Score *float64
}

// ScoredNote is a similarity search hit returned by a note repository.
type ScoredNote struct {
	Note  Note
	Score float64
}
