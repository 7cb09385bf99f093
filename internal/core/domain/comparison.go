package domain

import "time"

type Strategy string

const (
	StrategyVector       Strategy = "vector"
	StrategyVectorCypher Strategy = "vector_cypher"
)

// Label is the user-facing name of the retrieval strategy.
func (s Strategy) Label() string {
	switch s {
	case StrategyVector:
		return "Vector Retriever Response"
	case StrategyVectorCypher:
		return "Vector + Cypher Retriever Response"
	default:
		return string(s)
	}
}

// EmptyQuestionPrompt is returned on both sides for blank questions.
const EmptyQuestionPrompt = "Please enter a question."

type StrategyAnswer struct {
	Strategy    Strategy      `json:"strategy"`
	Markdown    string        `json:"markdown"`
	Answer      string        `json:"answer,omitempty"`
	Error       string        `json:"error,omitempty"`
	ContextSize int           `json:"context_size"`
	Grounding   float64       `json:"grounding"`
	Duration    time.Duration `json:"duration_ns"`
}

func (a StrategyAnswer) Failed() bool {
	return a.Error != ""
}

// Comparison pairs the answers of both retrieval strategies for one question.
type Comparison struct {
	Question     string         `json:"question"`
	TopK         int            `json:"top_k"`
	Vector       StrategyAnswer `json:"vector"`
	VectorCypher StrategyAnswer `json:"vector_cypher"`
}

// Pair returns the two user-facing markdown panes.
func (c *Comparison) Pair() (string, string) {
	return c.Vector.Markdown, c.VectorCypher.Markdown
}
