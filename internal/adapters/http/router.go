package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/kirillkom/graphrag-compare/internal/config"
	"github.com/kirillkom/graphrag-compare/internal/core/domain"
	"github.com/kirillkom/graphrag-compare/internal/core/ports"
	"github.com/kirillkom/graphrag-compare/internal/observability/metrics"
)

const (
	maxCompareBodyBytes    = 64 << 10
	defaultMaxInFlight     = 8
	defaultBackpressureDur = 250 * time.Millisecond
)

type Router struct {
	cfg        config.Config
	comparator ports.RetrievalComparator
	metrics    *metrics.HTTPServerMetrics
	validator  *compareValidator
	page       *template.Template
}

// NewRouter wires the UI, the JSON API and the operational endpoints. m may
// be nil, in which case /metrics is not served.
func NewRouter(cfg config.Config, comparator ports.RetrievalComparator, m *metrics.HTTPServerMetrics) (*Router, error) {
	validator, err := newCompareValidator()
	if err != nil {
		return nil, err
	}
	page, err := parsePageTemplate()
	if err != nil {
		return nil, err
	}
	if cfg.RAGTopK <= 0 {
		cfg.RAGTopK = 5
	}
	if cfg.RAGTopKMax < cfg.RAGTopK {
		cfg.RAGTopKMax = cfg.RAGTopK
	}
	return &Router{
		cfg:        cfg,
		comparator: comparator,
		metrics:    m,
		validator:  validator,
		page:       page,
	}, nil
}

func (rt *Router) Handler() http.Handler {
	maxInFlight := int64(rt.cfg.APIMaxInFlight)
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}
	wait := time.Duration(rt.cfg.APIBackpressureWaitMS) * time.Millisecond
	if wait <= 0 {
		wait = defaultBackpressureDur
	}
	gate := func(h http.HandlerFunc) http.Handler {
		return backpressureMiddleware(h, maxInFlight, wait)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.HandleFunc("GET /openapi.yaml", rt.openAPIDocument)
	mux.Handle("POST /v1/compare", rt.validator.middleware(gate(rt.compare)))
	mux.HandleFunc("GET /{$}", rt.indexPage)
	mux.Handle("POST /{$}", gate(rt.submitForm))
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = rateLimitMiddleware(mux, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) openAPIDocument(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(compareOpenAPIDocument)
}

type compareRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
}

func (rt *Router) compare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxCompareBodyBytes))
	if err := decoder.Decode(&req); err != nil {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "decode compare request", err))
		return
	}
	if req.TopK > rt.cfg.RAGTopKMax {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "compare", fmt.Errorf("top_k must be at most %d", rt.cfg.RAGTopKMax)))
		return
	}
	if req.TopK < 0 {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "compare", errors.New("top_k must be positive")))
		return
	}

	result := rt.comparator.Compare(r.Context(), req.Question, req.TopK)
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
