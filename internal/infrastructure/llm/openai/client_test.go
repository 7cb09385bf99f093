package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/graphrag-compare/internal/core/domain"
	"github.com/kirillkom/graphrag-compare/internal/infrastructure/resilience"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(Options{
		APIKey:     "test-key",
		BaseURL:    server.URL + "/v1",
		GenModel:   "gpt-4.1-mini",
		EmbedModel: "text-embedding-ada-002",
	}, resilience.NewGuard(resilience.Config{BreakerEnabled: false}))
}

func TestEmbedQueryReturnsFirstVector(t *testing.T) {
	var payload map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"text-embedding-ada-002","data":[{"object":"embedding","index":0,"embedding":[0.25,0.5,0.75]}]}`))
	})

	vector, err := NewEmbedder(client).EmbedQuery(context.Background(), "lupus biomarker")
	if err != nil {
		t.Fatalf("EmbedQuery() error = %v", err)
	}
	if len(vector) != 3 || vector[2] != 0.75 {
		t.Fatalf("unexpected vector %v", vector)
	}
	if payload["model"] != "text-embedding-ada-002" {
		t.Fatalf("unexpected model %v", payload["model"])
	}
}

func TestCompleteSendsDeterministicUserPrompt(t *testing.T) {
	var payload struct {
		Model          string  `json:"model"`
		Temperature    float64 `json:"temperature"`
		ResponseFormat *struct {
			Type string `json:"type"`
		} `json:"response_format"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cmpl-1","object":"chat.completion","model":"gpt-4.1-mini","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  Anti-dsDNA antibodies.  "}}]}`))
	})

	answer, err := NewGenerator(client).Complete(context.Background(), domain.CompletionRequest{
		Prompt:         "# Question:\nWhat is a biomarker?",
		Temperature:    0,
		ResponseFormat: domain.ResponseFormatText,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if answer != "Anti-dsDNA antibodies." {
		t.Fatalf("unexpected answer %q", answer)
	}
	if payload.Model != "gpt-4.1-mini" {
		t.Fatalf("unexpected model %q", payload.Model)
	}
	if payload.Temperature <= 0 || payload.Temperature > 1e-30 {
		t.Fatalf("expected near-zero temperature on the wire, got %g", payload.Temperature)
	}
	if payload.ResponseFormat != nil {
		t.Fatalf("did not expect response_format for text, got %+v", payload.ResponseFormat)
	}
	if len(payload.Messages) != 1 || payload.Messages[0].Role != "user" || !strings.Contains(payload.Messages[0].Content, "What is a biomarker?") {
		t.Fatalf("unexpected messages %+v", payload.Messages)
	}
}

func TestCompleteRequestsJSONObjectFormat(t *testing.T) {
	var format string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			ResponseFormat struct {
				Type string `json:"type"`
			} `json:"response_format"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		format = payload.ResponseFormat.Type
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"{}"}}]}`))
	})

	_, err := NewGenerator(client).Complete(context.Background(), domain.CompletionRequest{
		Prompt:         "extract",
		ResponseFormat: domain.ResponseFormatJSON,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if format != "json_object" {
		t.Fatalf("expected json_object format, got %q", format)
	}
}

func TestRateLimitIsTemporary(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests"}}`))
	})

	_, err := NewGenerator(client).Complete(context.Background(), domain.CompletionRequest{Prompt: "q"})
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
	if !strings.Contains(err.Error(), "Rate limit reached") {
		t.Fatalf("expected service message in error, got %v", err)
	}
}

func TestBadRequestIsNotTemporary(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"model not found","type":"invalid_request_error"}}`))
	})

	_, err := NewEmbedder(client).EmbedQuery(context.Background(), "q")
	if err == nil {
		t.Fatal("expected error")
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("did not expect ErrTemporary, got %v", err)
	}
	if !strings.Contains(err.Error(), "status 400") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestEmptyChoicesIsAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := NewGenerator(client).Complete(context.Background(), domain.CompletionRequest{Prompt: "q"})
	if err == nil || !strings.Contains(err.Error(), "no choices") {
		t.Fatalf("expected no choices error, got %v", err)
	}
}
