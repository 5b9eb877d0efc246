package note

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/kailas-cloud/voicenote/internal/domain"
)

// qdrantClient is the consumer interface over *qdrant.Client (ISP).
type qdrantClient interface {
	CollectionExists(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, req *qdrant.CreateCollection) error
	GetCollectionInfo(ctx context.Context, name string) (*qdrant.CollectionInfo, error)
	Get(ctx context.Context, req *qdrant.GetPoints) ([]*qdrant.RetrievedPoint, error)
	Upsert(ctx context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Scroll(ctx context.Context, req *qdrant.ScrollPoints) ([]*qdrant.RetrievedPoint, error)
	Query(ctx context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
}

// QdrantRepo stores notes as points of a Qdrant collection with cosine distance.
type QdrantRepo struct {
	client qdrantClient
	opts   Options
}

// NewQdrant creates a Qdrant-backed note repository.
func NewQdrant(c qdrantClient, opts Options) (*QdrantRepo, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("qdrant note repo: %w", err)
	}
	return &QdrantRepo{client: c, opts: opts}, nil
}

// EnsureCollection creates the collection when absent and verifies its vector size otherwise.
func (r *QdrantRepo) EnsureCollection(ctx context.Context) error {
	exists, err := r.client.CollectionExists(ctx, r.opts.Collection)
	if err != nil {
		return fmt.Errorf("check collection %s: %w", r.opts.Collection, err)
	}
	if exists {
		return r.checkVectorSize(ctx)
	}

	createErr := r.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: r.opts.Collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(r.opts.Dimensions),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if createErr == nil {
		return nil
	}

	// Another writer may have created it between the check and the create.
	exists, err = r.client.CollectionExists(ctx, r.opts.Collection)
	if err != nil || !exists {
		return fmt.Errorf("create collection %s: %w", r.opts.Collection, createErr)
	}
	return r.checkVectorSize(ctx)
}

func (r *QdrantRepo) checkVectorSize(ctx context.Context) error {
	info, err := r.client.GetCollectionInfo(ctx, r.opts.Collection)
	if err != nil {
		return fmt.Errorf("collection info %s: %w", r.opts.Collection, err)
	}
	size := int(info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize())
	if size != r.opts.Dimensions {
		return dimMismatch(r.opts.Collection, size, r.opts.Dimensions)
	}
	return nil
}

// idPage is the page size used when scanning point ids.
const idPage = 256

// MaxID returns the highest stored note id, or 0 for an empty collection. Points scroll
// in ascending id order, so each page resumes one past the last id seen.
func (r *QdrantRepo) MaxID(ctx context.Context) (uint64, error) {
	var maxID uint64
	var offset *qdrant.PointId
	for {
		points, err := r.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: r.opts.Collection,
			Offset:         offset,
			Limit:          qdrant.PtrOf(uint32(idPage)),
			WithPayload:    qdrant.NewWithPayload(false),
			WithVectors:    qdrant.NewWithVectors(false),
		})
		if err != nil {
			return 0, fmt.Errorf("scroll %s ids: %w", r.opts.Collection, err)
		}
		for _, p := range points {
			maxID = max(maxID, p.GetId().GetNum())
		}
		if len(points) < idPage {
			return maxID, nil
		}
		offset = qdrant.NewIDNum(points[len(points)-1].GetId().GetNum() + 1)
	}
}

// Exists reports whether a note with the given id is stored.
func (r *QdrantRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	points, err := r.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: r.opts.Collection,
		Ids:            []*qdrant.PointId{qdrant.NewIDNum(id)},
		WithPayload:    qdrant.NewWithPayload(false),
		WithVectors:    qdrant.NewWithVectors(false),
	})
	if err != nil {
		return false, fmt.Errorf("get point %d: %w", id, err)
	}
	return len(points) > 0, nil
}

// Upsert writes one point {id, vector, payload{text}} and waits for it to be applied.
func (r *QdrantRepo) Upsert(ctx context.Context, n domain.Note) error {
	_, err := r.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: r.opts.Collection,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewIDNum(n.ID),
			Vectors: qdrant.NewVectors(n.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{payloadText: n.Text}),
		}},
	})
	if err != nil {
		return fmt.Errorf("upsert point %d: %w", n.ID, err)
	}
	return nil
}

// Scroll returns up to limit notes in store order, without vectors.
func (r *QdrantRepo) Scroll(ctx context.Context, limit int) ([]domain.Note, error) {
	points, err := r.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: r.opts.Collection,
		Limit:          qdrant.PtrOf(uint32(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("scroll %s: %w", r.opts.Collection, err)
	}

	notes := make([]domain.Note, 0, len(points))
	for _, p := range points {
		notes = append(notes, domain.Note{
			ID:   p.GetId().GetNum(),
			Text: p.GetPayload()[payloadText].GetStringValue(),
		})
	}
	return notes, nil
}

// Search returns up to limit notes nearest to vector, best first.
func (r *QdrantRepo) Search(ctx context.Context, vector []float32, limit int) ([]domain.ScoredNote, error) {
	points, err := r.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: r.opts.Collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r.opts.Collection, err)
	}

	out := make([]domain.ScoredNote, 0, len(points))
	for _, p := range points {
		out = append(out, domain.ScoredNote{
			Note: domain.Note{
				ID:   p.GetId().GetNum(),
				Text: p.GetPayload()[payloadText].GetStringValue(),
			},
			Score: float64(p.GetScore()),
		})
	}
	return out, nil
}
