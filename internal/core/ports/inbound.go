package ports

import (
	"context"

	"github.com/kirillkom/graphrag-compare/internal/core/domain"
)

// RetrievalComparator is the inbound contract for answering one question with
// both retrieval strategies. It never fails wholesale: per-side failures are
// reported inside the comparison.
type RetrievalComparator interface {
	Compare(ctx context.Context, question string, topK int) *domain.Comparison
}
