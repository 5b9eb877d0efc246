package voicenote

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver string // "qdrant" or "redis"

	qdrantHost   string
	qdrantPort   int
	qdrantAPIKey string
	qdrantTLS    bool

	redisAddrs    []string
	redisPassword string
	redisIDKey    string

	collection       string
	vectorDimensions int
	browseLimit      int
	searchLimit      int

	apiKey             string
	baseURL            string
	transcriptionModel string
	embeddingModel     string

	embedder    Embedder
	transcriber Transcriber

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithQdrant stores notes in a Qdrant instance reached over gRPC.
func WithQdrant(host string, port int, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "qdrant"
		c.qdrantHost = host
		c.qdrantPort = port
		c.qdrantAPIKey = apiKey
	})
}

// WithQdrantTLS enables TLS for the Qdrant connection.
func WithQdrantTLS() Option {
	return optionFunc(func(c *clientConfig) {
		c.qdrantTLS = true
	})
}

// WithRedis stores notes in a Redis instance with the search module.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.redisAddrs = []string{addr}
		c.redisPassword = password
	})
}

// WithRedisIDs allocates note ids with an atomic Redis counter stored at key.
// Requires WithRedis. Without it ids are derived from the note count.
func WithRedisIDs(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisIDKey = key
	})
}

// WithCollection sets the collection (or index) name. Default: "notes".
func WithCollection(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.collection = name
	})
}

// WithVectorDimensions sets the embedding size.
// Defaults to 3072 (text-embedding-3-large).
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorDimensions = dim
	})
}

// WithLimits sets how many notes Browse and Search return.
// Defaults: 10 and 5.
func WithLimits(browse, search int) Option {
	return optionFunc(func(c *clientConfig) {
		c.browseLimit = browse
		c.searchLimit = search
	})
}

// WithOpenAI uses the OpenAI API for transcription and embeddings.
func WithOpenAI(apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = apiKey
	})
}

// WithBaseURL points the OpenAI client at a compatible endpoint.
func WithBaseURL(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = url
	})
}

// WithModels overrides the OpenAI transcription and embedding models.
// Empty values keep the defaults.
func WithModels(transcription, embedding string) Option {
	return optionFunc(func(c *clientConfig) {
		c.transcriptionModel = transcription
		c.embeddingModel = embedding
	})
}

// WithEmbedder sets a custom text embedding provider. Takes precedence over WithOpenAI.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithTranscriber sets a custom speech-to-text provider. Takes precedence over WithOpenAI.
func WithTranscriber(t Transcriber) Option {
	return optionFunc(func(c *clientConfig) {
		c.transcriber = t
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
