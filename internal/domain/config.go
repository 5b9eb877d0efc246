package domain

// KeyPrefix namespaces every key written to a key-value backend.
const KeyPrefix = "voicenote:"

// VectorConfig holds vectorization and storage settings, not exposed to clients.
type VectorConfig struct {
	TranscriptionModel string
	EmbeddingModel     string
	Dimensions         int
	DistanceMetric     string
	Collection         string
	AudioFilename      string
	BrowseLimit        int
	SearchLimit        int
}

// DefaultVectorConfig returns the defaults tuned for OpenAI whisper-1 and text-embedding-3-large.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		TranscriptionModel: "whisper-1",
		EmbeddingModel:     "text-embedding-3-large",
		Dimensions:         3072,
		DistanceMetric:     "cosine",
		Collection:         "notes",
		AudioFilename:      "audio.mp3",
		BrowseLimit:        10,
		SearchLimit:        5,
	}
}
