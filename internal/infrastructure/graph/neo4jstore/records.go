package neo4jstore

import (
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/kirillkom/graphrag-compare/internal/core/domain"
)

func decodeChunk(rec *neo4j.Record, idKey string) (domain.Chunk, error) {
	id, _, err := neo4j.GetRecordValue[string](rec, idKey)
	if err != nil {
		return domain.Chunk{}, fmt.Errorf("%s: %w", idKey, err)
	}
	text, _, err := neo4j.GetRecordValue[string](rec, "text")
	if err != nil {
		return domain.Chunk{}, fmt.Errorf("text: %w", err)
	}
	score, _, err := neo4j.GetRecordValue[float64](rec, "score")
	if err != nil {
		return domain.Chunk{}, fmt.Errorf("score: %w", err)
	}
	return domain.Chunk{ID: id, Text: text, Score: score}, nil
}

func decodeRelationships(rec *neo4j.Record) ([]domain.Relationship, error) {
	raw, isNil, err := neo4j.GetRecordValue[[]any](rec, "rels")
	if err != nil {
		return nil, fmt.Errorf("rels: %w", err)
	}
	if isNil {
		return []domain.Relationship{}, nil
	}

	out := make([]domain.Relationship, 0, len(raw))
	for idx, item := range raw {
		fields, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("rels[%d]: unexpected type %T", idx, item)
		}
		out = append(out, domain.Relationship{
			ID:      stringField(fields, "id"),
			Source:  stringField(fields, "source"),
			Type:    stringField(fields, "type"),
			Details: stringField(fields, "details"),
			Target:  stringField(fields, "target"),
		})
	}
	return out, nil
}

func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
