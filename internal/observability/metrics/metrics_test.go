package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/graphrag-compare/internal/core/domain"
)

func scrape(t *testing.T, m *HTTPServerMetrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(body)
}

func TestMiddlewareCountsRequests(t *testing.T) {
	m := NewHTTPServerMetrics("graphrag-api")
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/compare", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/random/path/123", nil))

	body := scrape(t, m)
	if !strings.Contains(body, `graphrag_http_requests_total{method="POST",path="/v1/compare",service="graphrag-api",status="418"} 1`) {
		t.Fatalf("expected compare request counter, got:\n%s", body)
	}
	if !strings.Contains(body, `path="other"`) {
		t.Fatalf("expected unknown path to be normalized, got:\n%s", body)
	}
}

func TestObservePipelineRecordsStatus(t *testing.T) {
	m := NewHTTPServerMetrics("graphrag-api")
	m.ObservePipeline(domain.StrategyVector, 5, 0.8, 200*time.Millisecond, nil)
	m.ObservePipeline(domain.StrategyVectorCypher, 0, 0, time.Second, errors.New("boom"))

	body := scrape(t, m)
	for _, want := range []string{
		`graphrag_compare_pipelines_total{service="graphrag-api",status="success",strategy="vector"} 1`,
		`graphrag_compare_pipelines_total{service="graphrag-api",status="error",strategy="vector_cypher"} 1`,
		`graphrag_compare_grounding_ratio_count{service="graphrag-api",strategy="vector"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in:\n%s", want, body)
		}
	}
	if strings.Contains(body, `graphrag_compare_grounding_ratio_count{service="graphrag-api",strategy="vector_cypher"}`) {
		t.Fatalf("failed pipelines must not record grounding:\n%s", body)
	}
}
