package note

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/kailas-cloud/voicenote/internal/domain"
	"github.com/kailas-cloud/voicenote/internal/metrics"
)

// Service stores notes with their embeddings and answers browse and similarity queries.
type Service struct {
	repo        Repository
	seq         Sequencer
	dims        int
	browseLimit int
	searchLimit int

	ensureMu sync.Mutex
	ensured  bool

	// writeMu serialises id assignment and the write that consumes it.
	writeMu sync.Mutex
	// lastID is the highest id this service has written.
	lastID uint64
}

// maxIDProbes bounds the Exists checks spent looking for a free id.
const maxIDProbes = 64

// New creates a note service for vectors of the given dimensionality.
func New(repo Repository, seq Sequencer, dims int) *Service {
	return &Service{
		repo:        repo,
		seq:         seq,
		dims:        dims,
		browseLimit: 10,
		searchLimit: 5,
	}
}

// WithLimits configures the browse and search page sizes.
func (s *Service) WithLimits(browse, search int) *Service {
	if browse > 0 {
		s.browseLimit = browse
	}
	if search > 0 {
		s.searchLimit = search
	}
	return s
}

// EnsureCollection creates the backing collection if absent. After the first success
// it returns immediately for the lifetime of the service.
func (s *Service) EnsureCollection(ctx context.Context) error {
	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()
	if s.ensured {
		return nil
	}

	err := s.repo.EnsureCollection(ctx)
	metrics.StoreOperationsTotal.WithLabelValues("ensure_collection", metrics.StoreStatus(err)).Inc()
	if err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}
	s.ensured = true
	return nil
}

// NextID returns the id the next saved note would receive.
func (s *Service) NextID(ctx context.Context) (uint64, error) {
	if err := s.EnsureCollection(ctx); err != nil {
		return 0, err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.freeID(ctx)
}

// freeID asks the sequencer for a candidate, never below lastID+1, and steps past ids
// that are already taken, doubling the stride on each hit. A candidate is taken when
// another process writes to the same store. Callers hold writeMu.
func (s *Service) freeID(ctx context.Context) (uint64, error) {
	id, err := s.seq.NextID(ctx)
	if err != nil {
		return 0, fmt.Errorf("next id: %w", err)
	}
	id = max(id, s.lastID+1)

	step := uint64(1)
	for probe := range maxIDProbes {
		taken, err := s.repo.Exists(ctx, id)
		metrics.StoreOperationsTotal.WithLabelValues("exists", metrics.StoreStatus(err)).Inc()
		if err != nil {
			return 0, fmt.Errorf("check id %d: %w", id, err)
		}
		if !taken {
			return id, nil
		}
		metrics.IDConflictsTotal.Inc()
		if probe == maxIDProbes-1 {
			break
		}
		id += step
		step *= 2
	}
	return 0, domain.NewIDConflict(id)
}

// Add embeds text with emb and stores it as a new note under the first free id at or
// after the sequencer's candidate. Nothing is overwritten: when no free id turns up
// within maxIDProbes checks, Add returns domain.ErrIDConflict.
func (s *Service) Add(ctx context.Context, emb domain.Embedder, text string) (domain.Note, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Note{}, domain.ErrEmptyText
	}
	if err := s.EnsureCollection(ctx); err != nil {
		return domain.Note{}, err
	}

	vector, err := s.embed(ctx, emb, text)
	if err != nil {
		return domain.Note{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	id, err := s.freeID(ctx)
	if err != nil {
		return domain.Note{}, err
	}

	n := domain.Note{ID: id, Text: text, Vector: vector}
	err = s.repo.Upsert(ctx, n)
	metrics.StoreOperationsTotal.WithLabelValues("upsert", metrics.StoreStatus(err)).Inc()
	if err != nil {
		return domain.Note{}, fmt.Errorf("upsert note: %w", err)
	}
	s.lastID = id
	metrics.NotesSavedTotal.Inc()
	return n, nil
}

// List browses stored notes when query is blank, otherwise ranks them by similarity to
// the embedded query. Browse results carry nil scores.
func (s *Service) List(ctx context.Context, emb domain.Embedder, query string) ([]domain.SearchResult, error) {
	if err := s.EnsureCollection(ctx); err != nil {
		return nil, err
	}

	if strings.TrimSpace(query) == "" {
		notes, err := s.repo.Scroll(ctx, s.browseLimit)
		metrics.StoreOperationsTotal.WithLabelValues("scroll", metrics.StoreStatus(err)).Inc()
		if err != nil {
			return nil, fmt.Errorf("browse notes: %w", err)
		}
		out := make([]domain.SearchResult, 0, min(len(notes), s.browseLimit))
		for _, n := range notes[:min(len(notes), s.browseLimit)] {
			out = append(out, domain.SearchResult{ID: n.ID, Text: n.Text})
		}
		return out, nil
	}

	vector, err := s.embed(ctx, emb, query)
	if err != nil {
		return nil, err
	}

	hits, err := s.repo.Search(ctx, vector, s.searchLimit)
	metrics.StoreOperationsTotal.WithLabelValues("search", metrics.StoreStatus(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}

	slices.SortStableFunc(hits, func(a, b domain.ScoredNote) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	out := make([]domain.SearchResult, 0, min(len(hits), s.searchLimit))
	for _, h := range hits[:min(len(hits), s.searchLimit)] {
		score := h.Score
		out = append(out, domain.SearchResult{ID: h.Note.ID, Text: h.Note.Text, Score: &score})
	}
	return out, nil
}

func (s *Service) embed(ctx context.Context, emb domain.Embedder, text string) ([]float32, error) {
	res, err := emb.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)

	if len(res.Embedding) != s.dims {
		return nil, fmt.Errorf(
			"vector dimension mismatch: got %d, want %d: %w",
			len(res.Embedding), s.dims, domain.ErrVectorDimMismatch,
		)
	}
	return res.Embedding, nil
}
