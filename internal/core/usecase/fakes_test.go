package usecase

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kirillkom/graphrag-compare/internal/core/domain"
)

type embedderFake struct {
	vector []float32
	err    error
	calls  int32
}

func (f *embedderFake) EmbedQuery(context.Context, string) ([]float32, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	if f.vector == nil {
		return []float32{1, 0, 0}, nil
	}
	return f.vector, nil
}

type storeFake struct {
	chunks        []domain.Chunk
	neighborhoods []domain.ChunkNeighborhood
	searchErr     error
	expandErr     error

	searchLimit int32
	expandLimit int32
	calls       int32
}

func (f *storeFake) SearchChunks(_ context.Context, _ []float32, limit int) ([]domain.Chunk, error) {
	atomic.AddInt32(&f.calls, 1)
	atomic.StoreInt32(&f.searchLimit, int32(limit))
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.chunks, nil
}

func (f *storeFake) ExpandChunks(_ context.Context, _ []float32, limit int) ([]domain.ChunkNeighborhood, error) {
	atomic.AddInt32(&f.calls, 1)
	atomic.StoreInt32(&f.expandLimit, int32(limit))
	if f.expandErr != nil {
		return nil, f.expandErr
	}
	return f.neighborhoods, nil
}

// modelFake answers with the first context line after "# Context:" so answers
// stay inside their context. failWhen decides per prompt whether to fail.
type modelFake struct {
	mu       sync.Mutex
	requests []domain.CompletionRequest
	failWhen func(prompt string) error
}

func (f *modelFake) Complete(_ context.Context, req domain.CompletionRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.failWhen != nil {
		if err := f.failWhen(req.Prompt); err != nil {
			return "", err
		}
	}
	return firstContextLine(req.Prompt), nil
}

func (f *modelFake) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func firstContextLine(prompt string) string {
	_, after, ok := strings.Cut(prompt, "# Context:\n")
	if !ok {
		return ""
	}
	for _, line := range strings.Split(after, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "===") || line == "---" {
			continue
		}
		return line
	}
	return ""
}

func isGraphPrompt(prompt string) bool {
	return strings.Contains(prompt, "=== kg_rels ===")
}

type observerFake struct {
	mu      sync.Mutex
	entries map[domain.Strategy]error
}

func (f *observerFake) ObservePipeline(strategy domain.Strategy, _ int, _ float64, _ time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.entries == nil {
		f.entries = make(map[domain.Strategy]error)
	}
	f.entries[strategy] = err
}
