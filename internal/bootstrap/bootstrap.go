package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/graphrag-compare/internal/config"
	"github.com/kirillkom/graphrag-compare/internal/core/ports"
	"github.com/kirillkom/graphrag-compare/internal/core/usecase"
	"github.com/kirillkom/graphrag-compare/internal/infrastructure/graph/inmem"
	"github.com/kirillkom/graphrag-compare/internal/infrastructure/graph/neo4jstore"
	"github.com/kirillkom/graphrag-compare/internal/infrastructure/llm/openai"
	"github.com/kirillkom/graphrag-compare/internal/infrastructure/resilience"
)

const storeCloseTimeout = 5 * time.Second

type App struct {
	Config config.Config

	Store      ports.ContextStore
	Comparator ports.RetrievalComparator
	Evaluator  *usecase.EvaluateUseCase

	closeFn func()
}

// New validates cfg, opens the context store, makes sure the vector index
// exists and wires both retrieval pipelines. observer may be nil.
func New(ctx context.Context, cfg config.Config, observer ports.PipelineObserver) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	guard := resilience.NewGuard(resilience.Config{
		BreakerEnabled:      cfg.BreakerEnabled,
		BreakerMinRequests:  uint32(max(cfg.BreakerMinRequests, 0)),
		BreakerFailureRatio: cfg.BreakerFailureRatio,
		BreakerOpenTimeout:  time.Duration(cfg.BreakerOpenTimeoutSeconds) * time.Second,
	})

	store, err := openStore(ctx, cfg, guard)
	if err != nil {
		return nil, err
	}

	spec := cfg.VectorIndex()
	if err := store.EnsureVectorIndex(ctx, spec); err != nil {
		slog.Warn("vector_index_ensure", "status", "error", "index", spec.Name, "error", err)
	} else {
		slog.Info("vector_index_ensure", "status", "ok", "index", spec.Name, "dimensions", spec.Dimensions, "similarity", spec.Similarity)
	}

	llmClient := openai.New(openai.Options{
		APIKey:     cfg.OpenAIAPIKey,
		BaseURL:    cfg.OpenAIBaseURL,
		GenModel:   cfg.OpenAIGenModel,
		EmbedModel: cfg.OpenAIEmbedModel,
		Timeout:    cfg.OpenAITimeout(),
	}, guard)

	compareUC := usecase.NewCompareUseCase(
		openai.NewEmbedder(llmClient),
		usecase.NewVectorRetriever(store),
		usecase.NewGraphRetriever(store),
		usecase.NewAnswerGenerator(openai.NewGenerator(llmClient)),
		usecase.CompareOptions{
			DefaultTopK: cfg.RAGTopK,
			Sequential:  !cfg.CompareParallel,
			Observer:    observer,
		},
	)

	return &App{
		Config:     cfg,
		Store:      store,
		Comparator: compareUC,
		Evaluator:  usecase.NewEvaluateUseCase(compareUC),
		closeFn: func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), storeCloseTimeout)
			defer cancel()
			if err := store.Close(closeCtx); err != nil {
				slog.Warn("context_store_close", "error", err)
			}
		},
	}, nil
}

func openStore(ctx context.Context, cfg config.Config, guard *resilience.Guard) (ports.ContextStore, error) {
	switch cfg.GraphBackend {
	case config.GraphBackendMemory:
		store, err := inmem.LoadFile(cfg.GraphFixturePath)
		if err != nil {
			return nil, fmt.Errorf("init memory context store: %w", err)
		}
		return store, nil
	default:
		store, err := neo4jstore.New(ctx, neo4jstore.Options{
			URI:         cfg.Neo4jURI,
			Username:    cfg.Neo4jUsername,
			Password:    cfg.Neo4jPassword,
			Database:    cfg.Neo4jDatabase,
			MaxPoolSize: cfg.Neo4jMaxPoolSize,
			Index:       cfg.VectorIndex(),
		}, guard)
		if err != nil {
			return nil, fmt.Errorf("init neo4j context store: %w", err)
		}
		return store, nil
	}
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
