package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kirillkom/graphrag-compare/internal/core/domain"
	"github.com/kirillkom/graphrag-compare/internal/core/ports"
)

const defaultTopK = 5

type CompareOptions struct {
	DefaultTopK int
	// Sequential runs the vector pipeline before the graph pipeline instead
	// of fanning them out.
	Sequential bool
	Observer   ports.PipelineObserver
}

// CompareUseCase answers one question twice, once from plain vector context
// and once from vector+graph context.
type CompareUseCase struct {
	embedder  ports.Embedder
	vector    *VectorRetriever
	graph     *GraphRetriever
	generator *AnswerGenerator
	opts      CompareOptions
}

func NewCompareUseCase(
	embedder ports.Embedder,
	vector *VectorRetriever,
	graph *GraphRetriever,
	generator *AnswerGenerator,
	opts CompareOptions,
) *CompareUseCase {
	if opts.DefaultTopK <= 0 {
		opts.DefaultTopK = defaultTopK
	}
	if opts.Observer == nil {
		opts.Observer = noopObserver{}
	}
	return &CompareUseCase{
		embedder:  embedder,
		vector:    vector,
		graph:     graph,
		generator: generator,
		opts:      opts,
	}
}

func (uc *CompareUseCase) Compare(ctx context.Context, question string, topK int) *domain.Comparison {
	question = strings.TrimSpace(question)
	if topK <= 0 {
		topK = uc.opts.DefaultTopK
	}
	if question == "" {
		return emptyQuestionComparison(topK)
	}

	out := &domain.Comparison{Question: question, TopK: topK}

	queryVector, err := uc.embedder.EmbedQuery(ctx, question)
	if err != nil {
		err = domain.WrapError(domain.ErrRetrieval, "embed query", err)
		out.Vector = uc.finish(domain.StrategyVector, time.Now(), "", "", 0, err)
		out.VectorCypher = uc.finish(domain.StrategyVectorCypher, time.Now(), "", "", 0, err)
		return out
	}

	runVector := func() { out.Vector = uc.runVectorPipeline(ctx, question, queryVector, topK) }
	runGraph := func() { out.VectorCypher = uc.runGraphPipeline(ctx, question, queryVector, topK) }

	if uc.opts.Sequential {
		runVector()
		runGraph()
		return out
	}

	var g errgroup.Group
	g.Go(func() error {
		runVector()
		return nil
	})
	g.Go(func() error {
		runGraph()
		return nil
	})
	_ = g.Wait()
	return out
}

func (uc *CompareUseCase) runVectorPipeline(ctx context.Context, question string, queryVector []float32, topK int) domain.StrategyAnswer {
	start := time.Now()
	chunks, err := uc.vector.Retrieve(ctx, queryVector, topK)
	if err != nil {
		return uc.finish(domain.StrategyVector, start, "", "", 0, err)
	}
	contextText := domain.RenderChunks(chunks)
	answer, err := uc.generator.Generate(ctx, question, contextText)
	return uc.finish(domain.StrategyVector, start, answer, contextText, len(chunks), err)
}

func (uc *CompareUseCase) runGraphPipeline(ctx context.Context, question string, queryVector []float32, topK int) domain.StrategyAnswer {
	start := time.Now()
	graphCtx, err := uc.graph.Retrieve(ctx, queryVector, topK)
	if err != nil {
		return uc.finish(domain.StrategyVectorCypher, start, "", "", 0, err)
	}
	contextText := graphCtx.Render()
	size := len(graphCtx.Chunks) + len(graphCtx.Relationships)
	answer, err := uc.generator.Generate(ctx, question, contextText)
	return uc.finish(domain.StrategyVectorCypher, start, answer, contextText, size, err)
}

func (uc *CompareUseCase) finish(
	strategy domain.Strategy,
	start time.Time,
	answer, contextText string,
	contextSize int,
	err error,
) domain.StrategyAnswer {
	out := domain.StrategyAnswer{
		Strategy:    strategy,
		ContextSize: contextSize,
		Duration:    time.Since(start),
	}

	if err != nil {
		out.Error = err.Error()
		out.Markdown = formatFailure(strategy, err)
		slog.Warn("compare_pipeline",
			"strategy", string(strategy),
			"status", "error",
			"duration_ms", float64(out.Duration.Microseconds())/1000.0,
			"error", err,
		)
	} else {
		out.Answer = answer
		out.Grounding = groundingScore(answer, contextText)
		out.Markdown = formatAnswer(strategy, answer)
		slog.Info("compare_pipeline",
			"strategy", string(strategy),
			"status", "success",
			"context_size", contextSize,
			"grounding", out.Grounding,
			"duration_ms", float64(out.Duration.Microseconds())/1000.0,
		)
	}

	uc.opts.Observer.ObservePipeline(strategy, contextSize, out.Grounding, out.Duration, err)
	return out
}

func emptyQuestionComparison(topK int) *domain.Comparison {
	return &domain.Comparison{
		TopK: topK,
		Vector: domain.StrategyAnswer{
			Strategy: domain.StrategyVector,
			Markdown: domain.EmptyQuestionPrompt,
		},
		VectorCypher: domain.StrategyAnswer{
			Strategy: domain.StrategyVectorCypher,
			Markdown: domain.EmptyQuestionPrompt,
		},
	}
}

func formatAnswer(strategy domain.Strategy, answer string) string {
	return fmt.Sprintf("**%s:**\n\n%s", strategy.Label(), answer)
}

func formatFailure(strategy domain.Strategy, err error) string {
	return fmt.Sprintf("**%s:**\n\nError processing query: %v", strategy.Label(), err)
}

type noopObserver struct{}

func (noopObserver) ObservePipeline(domain.Strategy, int, float64, time.Duration, error) {}
