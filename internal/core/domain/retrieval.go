package domain

import "strings"

const (
	contextSeparator  = "\n---\n"
	textSectionHeader = "=== text ===\n"
	relsSectionHeader = "\n\n=== kg_rels ===\n"
)

// Chunk is a unit of source text stored next to its embedding.
type Chunk struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	DocumentID string  `json:"document_id,omitempty"`
	Score      float64 `json:"score"`
}

// RenderChunks joins chunk texts into the context handed to the generator.
func RenderChunks(chunks []Chunk) string {
	texts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		texts = append(texts, chunk.Text)
	}
	return strings.Join(texts, contextSeparator)
}

// GraphContext is the deduplicated result of a vector+graph retrieval.
type GraphContext struct {
	Chunks        []Chunk        `json:"chunks"`
	Relationships []Relationship `json:"relationships"`
}

// Render produces the two-section context block:
//
//	=== text ===
//	chunk text
//	---
//	chunk text
//
//	=== kg_rels ===
//	Source - TYPE(details) -> Target
func (c GraphContext) Render() string {
	lines := make([]string, 0, len(c.Relationships))
	for _, rel := range c.Relationships {
		lines = append(lines, rel.String())
	}

	var b strings.Builder
	b.WriteString(textSectionHeader)
	b.WriteString(RenderChunks(c.Chunks))
	b.WriteString(relsSectionHeader)
	b.WriteString(strings.Join(lines, contextSeparator))
	return b.String()
}

// CompletionRequest is a single call to the language model service.
type CompletionRequest struct {
	Prompt         string
	Temperature    float32
	ResponseFormat ResponseFormat
}

type ResponseFormat string

const (
	ResponseFormatText ResponseFormat = "text"
	ResponseFormatJSON ResponseFormat = "json_object"
)
