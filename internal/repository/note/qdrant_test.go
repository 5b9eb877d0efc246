package note

import (
	"context"
	"errors"
	"testing"

	"github.com/qdrant/go-client/qdrant"

	"github.com/kailas-cloud/voicenote/internal/domain"
)

func newQdrantRepo(t *testing.T) (*QdrantRepo, *mockQdrant) {
	t.Helper()
	mq := &mockQdrant{}
	repo, err := NewQdrant(mq, testOptions())
	if err != nil {
		t.Fatalf("NewQdrant: %v", err)
	}
	return repo, mq
}

func TestNewQdrant_InvalidOptions(t *testing.T) {
	if _, err := NewQdrant(&mockQdrant{}, Options{Dimensions: 3}); err == nil {
		t.Error("expected error for empty collection")
	}
	if _, err := NewQdrant(&mockQdrant{}, Options{Collection: "notes"}); err == nil {
		t.Error("expected error for zero dimensions")
	}
}

// --- EnsureCollection ---

func TestQdrantEnsure_CreatesWhenAbsent(t *testing.T) {
	repo, mq := newQdrantRepo(t)
	var created *qdrant.CreateCollection
	mq.createCollectionFn = func(_ context.Context, req *qdrant.CreateCollection) error {
		created = req
		return nil
	}

	if err := repo.EnsureCollection(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected CreateCollection call")
	}
	if created.GetCollectionName() != "notes" {
		t.Errorf("collection = %q, want notes", created.GetCollectionName())
	}
	params := created.GetVectorsConfig().GetParams()
	if params.GetSize() != testDim || params.GetDistance() != qdrant.Distance_Cosine {
		t.Errorf("vector params = %v", params)
	}
}

func TestQdrantEnsure_ExistingMatchingSize(t *testing.T) {
	repo, mq := newQdrantRepo(t)
	mq.collectionExistsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
	mq.createCollectionFn = func(_ context.Context, _ *qdrant.CreateCollection) error {
		t.Error("CreateCollection must not be called for an existing collection")
		return nil
	}

	if err := repo.EnsureCollection(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQdrantEnsure_ExistingWrongSize(t *testing.T) {
	repo, mq := newQdrantRepo(t)
	mq.collectionExistsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
	mq.collectionInfoFn = func(_ context.Context, _ string) (*qdrant.CollectionInfo, error) {
		return collectionInfo(1536), nil
	}

	err := repo.EnsureCollection(context.Background())
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
}

func TestQdrantEnsure_LostCreateRace(t *testing.T) {
	repo, mq := newQdrantRepo(t)
	checks := 0
	mq.collectionExistsFn = func(_ context.Context, _ string) (bool, error) {
		checks++
		return checks > 1, nil
	}
	mq.createCollectionFn = func(_ context.Context, _ *qdrant.CreateCollection) error {
		return errors.New("collection `notes` already exists")
	}

	if err := repo.EnsureCollection(context.Background()); err != nil {
		t.Fatalf("expected race loss to count as success, got %v", err)
	}
	if checks != 2 {
		t.Errorf("existence checks = %d, want 2", checks)
	}
}

func TestQdrantEnsure_CreateFails(t *testing.T) {
	repo, mq := newQdrantRepo(t)
	mq.createCollectionFn = func(_ context.Context, _ *qdrant.CreateCollection) error {
		return errors.New("unavailable")
	}

	if err := repo.EnsureCollection(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

// --- MaxID / Exists ---

func TestQdrantMaxID_Pages(t *testing.T) {
	repo, mq := newQdrantRepo(t)
	var offsets []uint64
	mq.scrollFn = func(_ context.Context, req *qdrant.ScrollPoints) ([]*qdrant.RetrievedPoint, error) {
		if req.GetWithPayload().GetEnable() {
			t.Error("id scan must not load payloads")
		}
		start := uint64(1)
		if req.GetOffset() != nil {
			start = req.GetOffset().GetNum()
		}
		offsets = append(offsets, start)

		// ids 1..idPage+3 with id 2 missing
		var out []*qdrant.RetrievedPoint
		for id := start; id <= idPage+3 && len(out) < int(req.GetLimit()); id++ {
			if id == 2 {
				continue
			}
			out = append(out, &qdrant.RetrievedPoint{Id: qdrant.NewIDNum(id)})
		}
		return out, nil
	}

	n, err := repo.MaxID(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != idPage+3 {
		t.Errorf("max id = %d, want %d", n, idPage+3)
	}
	if len(offsets) != 2 || offsets[1] != idPage+2 {
		t.Errorf("scroll offsets = %v", offsets)
	}
}

func TestQdrantMaxID_Empty(t *testing.T) {
	repo, _ := newQdrantRepo(t)

	n, err := repo.MaxID(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("max id = %d, want 0", n)
	}
}

func TestQdrantMaxID_Error(t *testing.T) {
	repo, mq := newQdrantRepo(t)
	mq.scrollFn = func(context.Context, *qdrant.ScrollPoints) ([]*qdrant.RetrievedPoint, error) {
		return nil, errors.New("unavailable")
	}

	if _, err := repo.MaxID(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestQdrantExists(t *testing.T) {
	repo, mq := newQdrantRepo(t)
	mq.getFn = func(_ context.Context, req *qdrant.GetPoints) ([]*qdrant.RetrievedPoint, error) {
		if req.GetIds()[0].GetNum() == 3 {
			return []*qdrant.RetrievedPoint{{Id: qdrant.NewIDNum(3)}}, nil
		}
		return nil, nil
	}

	ok, err := repo.Exists(context.Background(), 3)
	if err != nil || !ok {
		t.Errorf("Exists(3) = %v, %v; want true", ok, err)
	}
	ok, err = repo.Exists(context.Background(), 4)
	if err != nil || ok {
		t.Errorf("Exists(4) = %v, %v; want false", ok, err)
	}
}

// --- Upsert ---

func TestQdrantUpsert(t *testing.T) {
	repo, mq := newQdrantRepo(t)
	var got *qdrant.UpsertPoints
	mq.upsertFn = func(_ context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
		got = req
		return &qdrant.UpdateResult{}, nil
	}

	err := repo.Upsert(context.Background(), domain.Note{ID: 7, Text: "buy milk", Vector: testVector(testDim)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.GetWait() {
		t.Error("expected wait=true")
	}
	if len(got.GetPoints()) != 1 {
		t.Fatalf("points = %d, want 1", len(got.GetPoints()))
	}
	p := got.GetPoints()[0]
	if p.GetId().GetNum() != 7 {
		t.Errorf("id = %d, want 7", p.GetId().GetNum())
	}
	if p.GetPayload()["text"].GetStringValue() != "buy milk" {
		t.Errorf("payload = %v", p.GetPayload())
	}
}

func TestQdrantUpsert_Error(t *testing.T) {
	repo, mq := newQdrantRepo(t)
	mq.upsertFn = func(_ context.Context, _ *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
		return nil, errors.New("timeout")
	}

	if err := repo.Upsert(context.Background(), domain.Note{ID: 1, Text: "x"}); err == nil {
		t.Fatal("expected error")
	}
}

// --- Scroll / Search ---

func TestQdrantScroll(t *testing.T) {
	repo, mq := newQdrantRepo(t)
	mq.scrollFn = func(_ context.Context, req *qdrant.ScrollPoints) ([]*qdrant.RetrievedPoint, error) {
		if req.GetLimit() != 10 {
			t.Errorf("limit = %d, want 10", req.GetLimit())
		}
		return []*qdrant.RetrievedPoint{
			{Id: qdrant.NewIDNum(1), Payload: qdrant.NewValueMap(map[string]any{"text": "first"})},
			{Id: qdrant.NewIDNum(2), Payload: qdrant.NewValueMap(map[string]any{"text": "second"})},
		}, nil
	}

	notes, err := repo.Scroll(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notes) != 2 || notes[0].ID != 1 || notes[1].Text != "second" {
		t.Errorf("unexpected notes: %+v", notes)
	}
}

func TestQdrantSearch(t *testing.T) {
	repo, mq := newQdrantRepo(t)
	mq.queryFn = func(_ context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error) {
		if req.GetLimit() != 5 {
			t.Errorf("limit = %d, want 5", req.GetLimit())
		}
		return []*qdrant.ScoredPoint{
			{Id: qdrant.NewIDNum(2), Payload: qdrant.NewValueMap(map[string]any{"text": "milk"}), Score: 0.75},
			{Id: qdrant.NewIDNum(1), Payload: qdrant.NewValueMap(map[string]any{"text": "bread"}), Score: 0.5},
		}, nil
	}

	got, err := repo.Search(context.Background(), testVector(testDim), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("results = %d, want 2", len(got))
	}
	if got[0].Note.Text != "milk" || got[0].Score != 0.75 {
		t.Errorf("first = %+v", got[0])
	}
}
