package mcpadapter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/graphrag-compare/internal/core/ports"
)

const (
	serverName      = "graphrag-compare"
	compareToolName = "compare_retrievers"
)

type Server struct {
	comparator ports.RetrievalComparator
	maxTopK    int
	mcp        *server.MCPServer
}

func NewServer(comparator ports.RetrievalComparator, version string, maxTopK int) *Server {
	if maxTopK <= 0 {
		maxTopK = 10
	}
	s := &Server{
		comparator: comparator,
		maxTopK:    maxTopK,
		mcp:        server.NewMCPServer(serverName, version, server.WithToolCapabilities(false)),
	}
	s.mcp.AddTool(s.compareTool(), s.handleCompare)
	return s
}

func (s *Server) compareTool() mcp.Tool {
	return mcp.NewTool(compareToolName,
		mcp.WithDescription("Answer a question twice, from vector-only context and from vector plus knowledge-graph context, and return both labeled answers."),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Question to answer from the indexed corpus."),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Number of chunks to retrieve per strategy."),
			mcp.Min(1),
			mcp.Max(float64(s.maxTopK)),
		),
	)
}

func (s *Server) handleCompare(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := req.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	topK := req.GetInt("top_k", 0)
	if topK < 0 || topK > s.maxTopK {
		return mcp.NewToolResultError(fmt.Sprintf("top_k must be between 1 and %d", s.maxTopK)), nil
	}

	result := s.comparator.Compare(ctx, question, topK)
	slog.Info("mcp_tool_call",
		"tool", compareToolName,
		"top_k", result.TopK,
		"vector_failed", result.Vector.Failed(),
		"vector_cypher_failed", result.VectorCypher.Failed(),
	)

	vectorPane, graphPane := result.Pair()
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(vectorPane),
			mcp.NewTextContent(graphPane),
		},
	}, nil
}

// ServeStdio blocks serving the protocol on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}
