package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/graphrag-compare/internal/core/domain"
)

func TestLoadQuestionSet(t *testing.T) {
	set, err := LoadQuestionSet(strings.NewReader(`
name: lupus
top_k: 4
questions:
  - What are the common biomarkers for Lupus?
  - "   "
  - What treatments are available for Lupus patients?
`))
	if err != nil {
		t.Fatalf("LoadQuestionSet() error = %v", err)
	}
	if set.Name != "lupus" || set.TopK != 4 {
		t.Fatalf("unexpected header %+v", set)
	}
	if len(set.Questions) != 2 {
		t.Fatalf("expected blank question to be dropped, got %v", set.Questions)
	}
}

func TestLoadQuestionSetRejectsEmptyAndUnknownFields(t *testing.T) {
	for name, doc := range map[string]string{
		"empty":         "name: x\nquestions: []\n",
		"unknown field": "name: x\nlimit: 3\nquestions: [q]\n",
		"negative k":    "top_k: -1\nquestions: [q]\n",
	} {
		if _, err := LoadQuestionSet(strings.NewReader(doc)); !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestWriteXLSX(t *testing.T) {
	results := []domain.Comparison{
		{
			Question: "What is a biomarker for lupus?",
			TopK:     5,
			Vector: domain.StrategyAnswer{
				Strategy:    domain.StrategyVector,
				Answer:      "Anti-dsDNA antibodies.",
				ContextSize: 5,
				Grounding:   1,
				Duration:    1500 * time.Millisecond,
			},
			VectorCypher: domain.StrategyAnswer{
				Strategy: domain.StrategyVectorCypher,
				Error:    "graph expand: retrieval error: boom",
			},
		},
	}

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, "lupus", results); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	checks := map[string]string{
		"A1": "question",
		"L1": "vector_cypher_duration_ms",
		"A2": "What is a biomarker for lupus?",
		"B2": "5",
		"C2": "Anti-dsDNA antibodies.",
		"G2": "1500",
		"I2": "graph expand: retrieval error: boom",
	}
	for cell, want := range checks {
		got, err := f.GetCellValue(sheetName, cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s) error = %v", cell, err)
		}
		if got != want {
			t.Fatalf("cell %s = %q, want %q", cell, got, want)
		}
	}
}
