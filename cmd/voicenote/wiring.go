package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/voicenote/internal/config"
	dbqdrant "github.com/kailas-cloud/voicenote/internal/db/qdrant"
	dbredis "github.com/kailas-cloud/voicenote/internal/db/redis"
	"github.com/kailas-cloud/voicenote/internal/metrics"
	"github.com/kailas-cloud/voicenote/internal/repository/embcache"
	noterepo "github.com/kailas-cloud/voicenote/internal/repository/note"
	"github.com/kailas-cloud/voicenote/internal/repository/sequence"
	openaiTransport "github.com/kailas-cloud/voicenote/internal/transport/openai"
	"github.com/kailas-cloud/voicenote/internal/usecase/credential"
	healthuc "github.com/kailas-cloud/voicenote/internal/usecase/health"
	noteuc "github.com/kailas-cloud/voicenote/internal/usecase/note"
	provideruc "github.com/kailas-cloud/voicenote/internal/usecase/provider"
	"github.com/kailas-cloud/voicenote/internal/usecase/session"
)

// app is the composition root shared by the serve and note commands.
type app struct {
	controller *session.Controller
	health     *healthuc.Service
	closers    []func() error
}

// pingFunc adapts a function to healthuc.StorePinger.
type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

// buildApp opens the vector store, waits for it and wires every service. prompter may
// be nil, in which case a missing credential is reported instead of asked for.
func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger, prompter credential.Prompter) (*app, error) {
	metrics.Register()

	a := &app{}
	readiness := time.Duration(cfg.Store.ReadinessTimeout) * time.Second
	opts := noterepo.Options{Collection: cfg.Store.Collection, Dimensions: cfg.Provider.Dimensions}

	var redisStore *dbredis.Store
	if cfg.NeedsRedis() {
		s, err := dbredis.NewStore(dbredis.Config{
			Addrs:    cfg.Redis.Addrs,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis store: %w", err)
		}
		a.closers = append(a.closers, func() error { s.Close(); return nil })
		if err := s.WaitForReady(ctx, readiness); err != nil {
			return nil, errors.Join(fmt.Errorf("redis not ready: %w", err), a.Close())
		}
		redisStore = s
		logger.Info("Connected to redis", zap.Strings("addrs", cfg.Redis.Addrs))
	}

	var (
		repo  noteuc.Repository
		store healthuc.StorePinger
	)
	switch cfg.Store.Driver {
	case config.DriverQdrant:
		client, err := dbqdrant.NewClient(dbqdrant.Config{
			Host:   cfg.Qdrant.Host,
			Port:   cfg.Qdrant.Port,
			APIKey: cfg.Qdrant.APIKey,
			UseTLS: cfg.Qdrant.UseTLS,
		})
		if err != nil {
			return nil, errors.Join(err, a.Close())
		}
		a.closers = append(a.closers, client.Close)
		if err := dbqdrant.WaitForReady(ctx, client, readiness); err != nil {
			return nil, errors.Join(fmt.Errorf("qdrant not ready: %w", err), a.Close())
		}
		logger.Info("Connected to qdrant", zap.String("host", cfg.Qdrant.Host), zap.Int("port", cfg.Qdrant.Port))

		r, err := noterepo.NewQdrant(client, opts)
		if err != nil {
			return nil, errors.Join(err, a.Close())
		}
		repo = r
		store = pingFunc(func(ctx context.Context) error { return dbqdrant.Ping(ctx, client) })
	case config.DriverRedis:
		r, err := noterepo.NewRedis(redisStore, opts)
		if err != nil {
			return nil, errors.Join(err, a.Close())
		}
		repo = r
		store = redisStore
	}

	var seq noteuc.Sequencer = sequence.NewMax(repo)
	if cfg.Notes.IDStrategy == config.IDStrategyRedis {
		seq = sequence.NewRedis(redisStore, repo, cfg.Notes.IDKey)
	}

	notes := noteuc.New(repo, seq, cfg.Provider.Dimensions).
		WithLimits(cfg.Notes.BrowseLimit, cfg.Notes.SearchLimit)

	providerCfg := openaiTransport.Config{
		BaseURL:            cfg.Provider.BaseURL,
		TranscriptionModel: cfg.Provider.TranscriptionModel,
		EmbeddingModel:     cfg.Provider.EmbeddingModel,
		Dimensions:         cfg.Provider.Dimensions,
		AudioFilename:      cfg.Provider.AudioFilename,
	}
	var factory session.ProviderFactory = provideruc.NewInstrumentedFactory(
		openaiTransport.NewFactory(providerCfg),
		cfg.Provider.TranscriptionModel, cfg.Provider.EmbeddingModel, logger,
	)
	if cfg.Cache.Enabled {
		factory = embcache.NewFactory(factory, redisStore, embcache.Config{
			Model:      cfg.Provider.EmbeddingModel,
			Dimensions: cfg.Provider.Dimensions,
			TTL:        time.Duration(cfg.Cache.TTLHours) * time.Hour,
		}, metrics.EmbeddingCacheTotal, logger)
		logger.Info("Embedding cache enabled", zap.Int("ttl_hours", cfg.Cache.TTLHours))
	}

	source := credential.NewEnvSource(cfg.Provider.EnvFile)
	resolver := credential.New(source, cfg.Provider.EnvVar, prompter)
	a.controller = session.NewController(resolver, factory, notes, logger)

	// The provider check needs a process-wide key; per-session keys are not probed.
	var providerCheck healthuc.ProviderChecker
	if key, ok, err := source.Lookup(cfg.Provider.EnvVar); err == nil && ok {
		providerCfg.APIKey = key
		providerCheck = openaiTransport.NewEmbedder(&providerCfg)
	}
	a.health = healthuc.New(store, providerCheck)

	logger.Info("Note store ready",
		zap.String("driver", cfg.Store.Driver),
		zap.String("collection", cfg.Store.Collection),
		zap.String("id_strategy", cfg.Notes.IDStrategy),
		zap.Int("dimensions", cfg.Provider.Dimensions),
	)
	return a, nil
}

// Close releases the store connections in reverse order of opening.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
