package note

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/voicenote/internal/db"
	"github.com/kailas-cloud/voicenote/internal/db/redis"
	"github.com/kailas-cloud/voicenote/internal/domain"
)

const (
	fieldID     = "id"
	fieldVector = "__vector"
	vectorAlias = "vector"
)

// redisStore is the consumer interface for the Redis backend (ISP).
type redisStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Exists(ctx context.Context, key string) (bool, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchSorted(
		ctx context.Context, index, query, sortBy string, desc bool, limit int, fields []string,
	) (*db.SearchResult, error)
}

// RedisRepo stores notes as hashes indexed by an HNSW cosine FT index.
type RedisRepo struct {
	store redisStore
	opts  Options
}

// NewRedis creates a Redis-backed note repository.
func NewRedis(s redisStore, opts Options) (*RedisRepo, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("redis note repo: %w", err)
	}
	if !db.IsValidIdentifier(opts.Collection) {
		return nil, fmt.Errorf("redis note repo: invalid collection name %q", opts.Collection)
	}
	return &RedisRepo{store: s, opts: opts}, nil
}

// EnsureCollection creates the FT index when absent. A concurrent create counts as success.
func (r *RedisRepo) EnsureCollection(ctx context.Context) error {
	name := r.indexName()
	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check index %s: %w", name, err)
	}
	if exists {
		return nil
	}

	def, err := db.NewIndex(name).
		Prefix(r.keyPrefix()).
		Text(payloadText).
		Numeric(fieldID).
		Vector(fieldVector, vectorAlias, r.opts.Dimensions, db.DistanceCosine).
		Build()
	if err != nil {
		return fmt.Errorf("build index %s: %w", name, err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	return nil
}

// MaxID returns the highest indexed note id, or 0 when the index is empty.
func (r *RedisRepo) MaxID(ctx context.Context) (uint64, error) {
	res, err := r.store.SearchSorted(ctx, r.indexName(), "*", fieldID, true, 1, []string{fieldID})
	if err != nil {
		return 0, fmt.Errorf("max id %s: %w", r.indexName(), err)
	}
	if len(res.Entries) == 0 {
		return 0, nil
	}
	return r.parseEntry(res.Entries[0]).ID, nil
}

// Exists reports whether a note hash with the given id is stored.
func (r *RedisRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	ok, err := r.store.Exists(ctx, r.key(id))
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", r.key(id), err)
	}
	return ok, nil
}

// Upsert writes the note hash.
func (r *RedisRepo) Upsert(ctx context.Context, n domain.Note) error {
	fields := map[string]string{
		payloadText: n.Text,
		fieldID:     strconv.FormatUint(n.ID, 10),
		fieldVector: redis.VectorToBytes(n.Vector),
	}
	if err := r.store.HSet(ctx, r.key(n.ID), fields); err != nil {
		return fmt.Errorf("hset %s: %w", r.key(n.ID), err)
	}
	return nil
}

// Scroll returns up to limit notes in index order, without vectors.
func (r *RedisRepo) Scroll(ctx context.Context, limit int) ([]domain.Note, error) {
	res, err := r.store.SearchList(ctx, r.indexName(), "*", 0, limit, []string{payloadText, fieldID})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.indexName(), err)
	}

	notes := make([]domain.Note, 0, len(res.Entries))
	for _, e := range res.Entries {
		notes = append(notes, r.parseEntry(e))
	}
	return notes, nil
}

// Search returns up to limit notes nearest to vector, best first.
func (r *RedisRepo) Search(ctx context.Context, vector []float32, limit int) ([]domain.ScoredNote, error) {
	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.indexName(),
		VectorField:  vectorAlias,
		Vector:       vector,
		K:            limit,
		ReturnFields: []string{payloadText, fieldID},
	})
	if err != nil {
		return nil, fmt.Errorf("knn %s: %w", r.indexName(), err)
	}

	out := make([]domain.ScoredNote, 0, len(res.Entries))
	for _, e := range res.Entries {
		out = append(out, domain.ScoredNote{Note: r.parseEntry(e), Score: e.Score})
	}
	return out, nil
}

func (r *RedisRepo) parseEntry(e db.SearchEntry) domain.Note {
	raw, ok := e.Fields[fieldID]
	if !ok {
		raw = strings.TrimPrefix(e.Key, r.keyPrefix())
	}
	id, _ := strconv.ParseUint(raw, 10, 64)
	return domain.Note{ID: id, Text: e.Fields[payloadText]}
}

func (r *RedisRepo) keyPrefix() string {
	return domain.KeyPrefix + r.opts.Collection + ":"
}

func (r *RedisRepo) key(id uint64) string {
	return r.keyPrefix() + strconv.FormatUint(id, 10)
}

func (r *RedisRepo) indexName() string {
	return domain.KeyPrefix + r.opts.Collection + ":idx"
}
