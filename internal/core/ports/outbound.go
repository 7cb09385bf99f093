package ports

import (
	"context"
	"time"

	"github.com/kirillkom/graphrag-compare/internal/core/domain"
)

// Embedder builds the query vector used for similarity search.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// LanguageModel produces completions for a prompt.
type LanguageModel interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (string, error)
}

// ChunkIndex performs similarity search over chunk embeddings.
type ChunkIndex interface {
	SearchChunks(ctx context.Context, queryVector []float32, limit int) ([]domain.Chunk, error)
}

// GraphExpander runs the similarity search and expands every seed chunk into
// its entity neighborhood.
type GraphExpander interface {
	ExpandChunks(ctx context.Context, queryVector []float32, limit int) ([]domain.ChunkNeighborhood, error)
}

// ContextStore is the graph datastore holding chunks, entities and the vector index.
type ContextStore interface {
	ChunkIndex
	GraphExpander
	EnsureVectorIndex(ctx context.Context, spec domain.VectorIndexSpec) error
	Close(ctx context.Context) error
}

// PipelineObserver receives per-strategy pipeline outcomes.
type PipelineObserver interface {
	ObservePipeline(strategy domain.Strategy, contextSize int, grounding float64, duration time.Duration, err error)
}
