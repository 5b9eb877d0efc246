package voicenote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	dbqdrant "github.com/kailas-cloud/voicenote/internal/db/qdrant"
	dbredis "github.com/kailas-cloud/voicenote/internal/db/redis"
	"github.com/kailas-cloud/voicenote/internal/domain"
	"github.com/kailas-cloud/voicenote/internal/domain/audio"
	noterepo "github.com/kailas-cloud/voicenote/internal/repository/note"
	"github.com/kailas-cloud/voicenote/internal/repository/sequence"
	openaiTransport "github.com/kailas-cloud/voicenote/internal/transport/openai"
	healthuc "github.com/kailas-cloud/voicenote/internal/usecase/health"
	noteuc "github.com/kailas-cloud/voicenote/internal/usecase/note"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interface so tests can swap the note service.
type noteUseCase interface {
	Add(ctx context.Context, emb domain.Embedder, text string) (domain.Note, error)
	List(ctx context.Context, emb domain.Embedder, query string) ([]domain.SearchResult, error)
}

// pingFunc adapts a function to healthuc.StorePinger.
type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Client is the voicenote SDK entry point.
type Client struct {
	closers     []func() error
	store       healthuc.StorePinger
	notes       noteUseCase
	embedder    domain.Embedder
	transcriber domain.Transcriber
	healthSvc   healthUseCase
	obs         *observer
}

func defaultConfig() *clientConfig {
	vec := domain.DefaultVectorConfig()
	return &clientConfig{
		qdrantPort:         dbqdrant.DefaultPort,
		collection:         vec.Collection,
		vectorDimensions:   vec.Dimensions,
		browseLimit:        vec.BrowseLimit,
		searchLimit:        vec.SearchLimit,
		transcriptionModel: vec.TranscriptionModel,
		embeddingModel:     vec.EmbeddingModel,
	}
}

// New creates a voicenote Client and connects to the vector store.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	c := &Client{obs: obs}
	repo, seq, err := c.openStore(ctx, cfg)
	if err != nil {
		return nil, errors.Join(err, c.Close())
	}
	c.wire(repo, seq, cfg)
	return c, nil
}

func (cfg *clientConfig) validate() error {
	switch cfg.driver {
	case "":
		return errors.New("voicenote: vector store required (use WithQdrant or WithRedis)")
	case "qdrant":
		if cfg.qdrantHost == "" {
			return errors.New("voicenote: qdrant host required")
		}
	case "redis":
		if len(cfg.redisAddrs) == 0 || cfg.redisAddrs[0] == "" {
			return errors.New("voicenote: redis address required")
		}
	default:
		return fmt.Errorf("voicenote: unknown driver %q", cfg.driver)
	}
	if cfg.redisIDKey != "" && cfg.driver != "redis" {
		return errors.New("voicenote: WithRedisIDs requires WithRedis")
	}
	if cfg.vectorDimensions <= 0 {
		return errors.New("voicenote: vector dimensions must be positive")
	}
	return nil
}

// openStore connects the configured backend and returns its note repository and id
// sequencer. Opened connections are registered on c.closers even on failure.
func (c *Client) openStore(ctx context.Context, cfg *clientConfig) (noteuc.Repository, noteuc.Sequencer, error) {
	opts := noterepo.Options{Collection: cfg.collection, Dimensions: cfg.vectorDimensions}

	switch cfg.driver {
	case "qdrant":
		client, err := dbqdrant.NewClient(dbqdrant.Config{
			Host:   cfg.qdrantHost,
			Port:   cfg.qdrantPort,
			APIKey: cfg.qdrantAPIKey,
			UseTLS: cfg.qdrantTLS,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("voicenote: create qdrant client: %w", err)
		}
		c.closers = append(c.closers, client.Close)
		if err := dbqdrant.WaitForReady(ctx, client, defaultReadinessTimeout); err != nil {
			return nil, nil, fmt.Errorf("voicenote: qdrant not ready: %w", err)
		}
		repo, err := noterepo.NewQdrant(client, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("voicenote: %w", err)
		}
		c.store = pingFunc(func(ctx context.Context) error { return dbqdrant.Ping(ctx, client) })
		return repo, sequence.NewMax(repo), nil

	default:
		store, err := dbredis.NewStore(dbredis.Config{
			Addrs:    cfg.redisAddrs,
			Password: cfg.redisPassword,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("voicenote: create redis store: %w", err)
		}
		c.closers = append(c.closers, func() error { store.Close(); return nil })
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			return nil, nil, fmt.Errorf("voicenote: redis not ready: %w", err)
		}
		repo, err := noterepo.NewRedis(store, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("voicenote: %w", err)
		}
		c.store = store
		if cfg.redisIDKey != "" {
			return repo, sequence.NewRedis(store, repo, cfg.redisIDKey), nil
		}
		return repo, sequence.NewMax(repo), nil
	}
}

// wire builds the providers and services on top of an opened store.
func (c *Client) wire(repo noteuc.Repository, seq noteuc.Sequencer, cfg *clientConfig) {
	c.notes = noteuc.New(repo, seq, cfg.vectorDimensions).WithLimits(cfg.browseLimit, cfg.searchLimit)

	var providerCheck healthuc.ProviderChecker
	c.embedder, c.transcriber = noopProvider{}, noopProvider{}
	if cfg.apiKey != "" {
		providerCfg := &openaiTransport.Config{
			APIKey:             cfg.apiKey,
			BaseURL:            cfg.baseURL,
			TranscriptionModel: cfg.transcriptionModel,
			EmbeddingModel:     cfg.embeddingModel,
			Dimensions:         cfg.vectorDimensions,
			AudioFilename:      audio.DefaultFilename,
		}
		emb := openaiTransport.NewEmbedder(providerCfg)
		c.embedder = emb
		c.transcriber = openaiTransport.NewTranscriber(providerCfg)
		providerCheck = emb
	}
	if cfg.embedder != nil {
		c.embedder = &embedderAdapter{inner: cfg.embedder}
		providerCheck = nil
		if hc, ok := cfg.embedder.(domain.HealthChecker); ok {
			providerCheck = hc
		}
	}
	if cfg.transcriber != nil {
		c.transcriber = &transcriberAdapter{inner: cfg.transcriber}
	}

	c.healthSvc = healthuc.New(c.store, providerCheck)
}

// Close releases all connections.
func (c *Client) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// Ping checks vector store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, 0, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Transcribe converts a recording into text without storing anything.
// filename hints the audio format, e.g. "memo.m4a".
func (c *Client) Transcribe(ctx context.Context, r io.Reader, filename string) (_ Transcript, err error) {
	start := time.Now()
	defer func() { c.obs.observe("audio.transcribe", start, 0, err) }()

	clip, err := audio.Read(r, filename)
	if err != nil {
		return Transcript{}, fmt.Errorf("read audio: %w", err)
	}
	t, err := c.transcriber.Transcribe(ctx, clip)
	if err != nil {
		return Transcript{}, err
	}
	return Transcript{Text: t.Text, Language: t.Language, Duration: t.Duration}, nil
}

// AddNote embeds text and stores it under the next free id.
func (c *Client) AddNote(ctx context.Context, text string) (_ Note, err error) {
	start := time.Now()
	ctx, usage := domain.NewContextWithUsage(ctx)
	defer func() { c.obs.observe("note.add", start, usage.TotalTokens, err) }()

	n, err := c.notes.Add(ctx, c.embedder, text)
	if err != nil {
		return Note{}, err
	}
	return Note{ID: n.ID, Text: n.Text}, nil
}

// AddRecording transcribes a recording and stores the transcript as a note.
// A recording with no speech yields ErrEmptyText.
func (c *Client) AddRecording(ctx context.Context, r io.Reader, filename string) (Note, error) {
	t, err := c.Transcribe(ctx, r, filename)
	if err != nil {
		return Note{}, err
	}
	return c.AddNote(ctx, t.Text)
}

// Browse lists stored notes without ranking. Scores are nil.
func (c *Client) Browse(ctx context.Context) (_ []Result, err error) {
	start := time.Now()
	ctx, usage := domain.NewContextWithUsage(ctx)
	defer func() { c.obs.observe("note.browse", start, usage.TotalTokens, err) }()

	res, err := c.notes.List(ctx, c.embedder, "")
	if err != nil {
		return nil, err
	}
	return toResults(res), nil
}

// Search ranks stored notes by similarity to query, best first.
// A blank query behaves like Browse.
func (c *Client) Search(ctx context.Context, query string) (_ []Result, err error) {
	start := time.Now()
	ctx, usage := domain.NewContextWithUsage(ctx)
	defer func() { c.obs.observe("note.search", start, usage.TotalTokens, err) }()

	res, err := c.notes.List(ctx, c.embedder, query)
	if err != nil {
		return nil, err
	}
	return toResults(res), nil
}

func toResults(in []domain.SearchResult) []Result {
	out := make([]Result, len(in))
	for i, r := range in {
		out[i] = Result{ID: r.ID, Text: r.Text, Score: r.Score}
	}
	return out
}
