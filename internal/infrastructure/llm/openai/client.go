package openai

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/kirillkom/graphrag-compare/internal/core/domain"
	"github.com/kirillkom/graphrag-compare/internal/infrastructure/resilience"
)

const defaultTimeout = 60 * time.Second

type Options struct {
	APIKey     string
	BaseURL    string
	GenModel   string
	EmbedModel string
	Timeout    time.Duration
}

type Client struct {
	api        *goopenai.Client
	genModel   string
	embedModel string
	guard      *resilience.Guard
}

// New builds a client for the OpenAI API or any server speaking its
// protocol. A nil guard disables the circuit breaker.
func New(opts Options, guard *resilience.Guard) *Client {
	cfg := goopenai.DefaultConfig(opts.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"); base != "" {
		cfg.BaseURL = base
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		api:        goopenai.NewClientWithConfig(cfg),
		genModel:   opts.GenModel,
		embedModel: opts.EmbedModel,
		guard:      guard,
	}
}

type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := e.client.call(ctx, "openai.embed", func(ctx context.Context) error {
		resp, err := e.client.api.CreateEmbeddings(ctx, goopenai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: goopenai.EmbeddingModel(e.client.embedModel),
		})
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
			return fmt.Errorf("empty embedding result")
		}
		vector = resp.Data[0].Embedding
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vector, nil
}

type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	chatReq := goopenai.ChatCompletionRequest{
		Model: g.client.genModel,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: wireTemperature(req.Temperature),
	}
	if req.ResponseFormat == domain.ResponseFormatJSON {
		chatReq.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	var text string
	err := g.client.call(ctx, "openai.chat", func(ctx context.Context) error {
		resp, err := g.client.api.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("chat completion returned no choices")
		}
		text = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (c *Client) call(ctx context.Context, operation string, fn func(context.Context) error) error {
	err := c.guard.Execute(ctx, operation, fn, classifyOpenAIError)
	return wrapTemporaryIfNeeded(operation, err)
}

// wireTemperature keeps an explicit zero on the wire; the request field is
// omitempty and the service would otherwise fall back to its default of 1.
func wireTemperature(t float32) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}
