package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/graphrag-compare/internal/core/domain"
	"github.com/kirillkom/graphrag-compare/internal/core/ports"
)

// GraphRetriever runs the similarity search and widens every seed chunk with
// the relationships found one or two entity hops away from it.
type GraphRetriever struct {
	expander ports.GraphExpander
}

func NewGraphRetriever(expander ports.GraphExpander) *GraphRetriever {
	return &GraphRetriever{expander: expander}
}

func (r *GraphRetriever) Retrieve(ctx context.Context, queryVector []float32, limit int) (domain.GraphContext, error) {
	if limit <= 0 {
		return domain.GraphContext{}, domain.WrapError(domain.ErrInvalidInput, "graph retrieve", fmt.Errorf("limit must be positive, got %d", limit))
	}

	neighborhoods, err := r.expander.ExpandChunks(ctx, queryVector, limit)
	if err != nil {
		if domain.IsKind(err, domain.ErrIndexUnavailable) || domain.IsKind(err, domain.ErrRetrieval) {
			return domain.GraphContext{}, err
		}
		return domain.GraphContext{}, domain.WrapError(domain.ErrRetrieval, "graph expand", err)
	}
	if len(neighborhoods) > limit {
		neighborhoods = neighborhoods[:limit]
	}
	return mergeNeighborhoods(neighborhoods), nil
}

// mergeNeighborhoods keeps the first occurrence of every chunk and
// relationship, preserving seed order.
func mergeNeighborhoods(neighborhoods []domain.ChunkNeighborhood) domain.GraphContext {
	out := domain.GraphContext{
		Chunks:        make([]domain.Chunk, 0, len(neighborhoods)),
		Relationships: []domain.Relationship{},
	}
	seenChunks := make(map[string]struct{}, len(neighborhoods))
	seenRels := make(map[string]struct{})

	for _, n := range neighborhoods {
		key := chunkKey(n.Chunk)
		if _, ok := seenChunks[key]; !ok {
			seenChunks[key] = struct{}{}
			out.Chunks = append(out.Chunks, n.Chunk)
		}
		for _, rel := range n.Relationships {
			key := relationshipKey(rel)
			if _, ok := seenRels[key]; ok {
				continue
			}
			seenRels[key] = struct{}{}
			out.Relationships = append(out.Relationships, rel)
		}
	}
	return out
}

func chunkKey(chunk domain.Chunk) string {
	if chunk.ID != "" {
		return chunk.ID
	}
	return "text|" + chunk.Text
}

func relationshipKey(rel domain.Relationship) string {
	if rel.ID != "" {
		return rel.ID
	}
	return "rel|" + rel.String()
}
