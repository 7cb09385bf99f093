package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/graphrag-compare/internal/core/domain"
	"github.com/kirillkom/graphrag-compare/internal/core/ports"
)

// VectorRetriever ranks chunks purely by embedding similarity.
type VectorRetriever struct {
	index ports.ChunkIndex
}

func NewVectorRetriever(index ports.ChunkIndex) *VectorRetriever {
	return &VectorRetriever{index: index}
}

func (r *VectorRetriever) Retrieve(ctx context.Context, queryVector []float32, limit int) ([]domain.Chunk, error) {
	if limit <= 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "vector retrieve", fmt.Errorf("limit must be positive, got %d", limit))
	}

	chunks, err := r.index.SearchChunks(ctx, queryVector, limit)
	if err != nil {
		if domain.IsKind(err, domain.ErrIndexUnavailable) {
			return nil, err
		}
		return nil, domain.WrapError(domain.ErrIndexUnavailable, "vector search", err)
	}
	if chunks == nil {
		chunks = []domain.Chunk{}
	}
	return trimChunks(chunks, limit), nil
}

func trimChunks(chunks []domain.Chunk, limit int) []domain.Chunk {
	if limit <= 0 || len(chunks) <= limit {
		return chunks
	}
	return chunks[:limit]
}
