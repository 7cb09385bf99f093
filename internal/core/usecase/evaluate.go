package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/graphrag-compare/internal/core/domain"
	"github.com/kirillkom/graphrag-compare/internal/core/ports"
)

// EvaluateUseCase runs a question set through the comparator one question at
// a time.
type EvaluateUseCase struct {
	comparator ports.RetrievalComparator
}

func NewEvaluateUseCase(comparator ports.RetrievalComparator) *EvaluateUseCase {
	return &EvaluateUseCase{comparator: comparator}
}

func (uc *EvaluateUseCase) Run(ctx context.Context, set domain.QuestionSet) ([]domain.Comparison, error) {
	if len(set.Questions) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "evaluate", fmt.Errorf("question set is empty"))
	}

	out := make([]domain.Comparison, 0, len(set.Questions))
	for idx, question := range set.Questions {
		if err := ctx.Err(); err != nil {
			return out, fmt.Errorf("evaluate question %d: %w", idx+1, err)
		}
		out = append(out, *uc.comparator.Compare(ctx, question, set.TopK))
	}
	return out, nil
}
