package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/graphrag-compare/internal/core/domain"
	"github.com/kirillkom/graphrag-compare/internal/core/ports"
)

const answerPromptTemplate = `Answer the Question using the following Context. Only respond with information mentioned in the Context. Do not inject any speculative information not mentioned.

# Question:
%s

# Context:
%s

# Answer:
`

// AnswerGenerator asks the language model to answer strictly from a context.
type AnswerGenerator struct {
	model ports.LanguageModel
}

func NewAnswerGenerator(model ports.LanguageModel) *AnswerGenerator {
	return &AnswerGenerator{model: model}
}

func (g *AnswerGenerator) Generate(ctx context.Context, question, contextText string) (string, error) {
	text, err := g.model.Complete(ctx, domain.CompletionRequest{
		Prompt:         buildAnswerPrompt(question, contextText),
		Temperature:    0,
		ResponseFormat: domain.ResponseFormatText,
	})
	if err != nil {
		return "", domain.WrapError(domain.ErrGeneration, "generate answer", err)
	}
	return strings.TrimSpace(text), nil
}

func buildAnswerPrompt(question, contextText string) string {
	return fmt.Sprintf(answerPromptTemplate, question, contextText)
}
