package mcpadapter

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kirillkom/graphrag-compare/internal/core/domain"
)

type comparatorFake struct {
	question string
	topK     int
	calls    int
}

func (f *comparatorFake) Compare(_ context.Context, question string, topK int) *domain.Comparison {
	f.calls++
	f.question = question
	f.topK = topK
	return &domain.Comparison{
		Question:     question,
		TopK:         topK,
		Vector:       domain.StrategyAnswer{Strategy: domain.StrategyVector, Markdown: "**Vector Retriever Response:**\n\nA"},
		VectorCypher: domain.StrategyAnswer{Strategy: domain.StrategyVectorCypher, Markdown: "**Vector + Cypher Retriever Response:**\n\nB"},
	}
}

func callTool(t *testing.T, s *Server, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = compareToolName
	req.Params.Arguments = args
	result, err := s.handleCompare(context.Background(), req)
	if err != nil {
		t.Fatalf("handleCompare() error = %v", err)
	}
	return result
}

func textOf(t *testing.T, content mcp.Content) string {
	t.Helper()
	switch c := content.(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	default:
		t.Fatalf("unexpected content type %T", content)
		return ""
	}
}

func TestCompareToolReturnsBothPanes(t *testing.T) {
	comparator := &comparatorFake{}
	s := NewServer(comparator, "test", 10)

	result := callTool(t, s, map[string]any{"question": "What treats lupus?", "top_k": float64(4)})
	if result.IsError {
		t.Fatalf("unexpected tool error %+v", result.Content)
	}
	if comparator.question != "What treats lupus?" || comparator.topK != 4 {
		t.Fatalf("unexpected comparator call %q/%d", comparator.question, comparator.topK)
	}
	if len(result.Content) != 2 {
		t.Fatalf("expected 2 content items, got %d", len(result.Content))
	}
	if got := textOf(t, result.Content[0]); got != "**Vector Retriever Response:**\n\nA" {
		t.Fatalf("unexpected vector pane %q", got)
	}
	if got := textOf(t, result.Content[1]); got != "**Vector + Cypher Retriever Response:**\n\nB" {
		t.Fatalf("unexpected graph pane %q", got)
	}
}

func TestCompareToolRequiresQuestion(t *testing.T) {
	comparator := &comparatorFake{}
	s := NewServer(comparator, "test", 10)

	result := callTool(t, s, map[string]any{"top_k": float64(3)})
	if !result.IsError {
		t.Fatal("expected tool error for missing question")
	}
	if comparator.calls != 0 {
		t.Fatal("comparator must not be called")
	}
}

func TestCompareToolRejectsTopKOutOfRange(t *testing.T) {
	comparator := &comparatorFake{}
	s := NewServer(comparator, "test", 10)

	result := callTool(t, s, map[string]any{"question": "q", "top_k": float64(11)})
	if !result.IsError {
		t.Fatal("expected tool error for top_k above range")
	}
	if comparator.calls != 0 {
		t.Fatal("comparator must not be called")
	}
}

func TestCompareToolDefaultsTopK(t *testing.T) {
	comparator := &comparatorFake{}
	s := NewServer(comparator, "test", 10)

	callTool(t, s, map[string]any{"question": "q"})
	if comparator.topK != 0 {
		t.Fatalf("expected zero top_k so the comparator applies its default, got %d", comparator.topK)
	}
}
