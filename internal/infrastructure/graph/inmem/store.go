package inmem

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/graphrag-compare/internal/core/domain"
)

// Fixture is the YAML layout of an in-memory knowledge graph.
type Fixture struct {
	Chunks        []FixtureChunk        `yaml:"chunks"`
	Entities      []FixtureEntity       `yaml:"entities"`
	Relationships []FixtureRelationship `yaml:"relationships"`
}

type FixtureChunk struct {
	ID         string    `yaml:"id"`
	DocumentID string    `yaml:"document_id"`
	Text       string    `yaml:"text"`
	Embedding  []float32 `yaml:"embedding"`
}

// FixtureEntity lists the chunks the entity was extracted from.
type FixtureEntity struct {
	Name   string   `yaml:"name"`
	Type   string   `yaml:"type"`
	Chunks []string `yaml:"chunks"`
}

type FixtureRelationship struct {
	ID      string `yaml:"id"`
	Source  string `yaml:"source"`
	Type    string `yaml:"type"`
	Details string `yaml:"details"`
	Target  string `yaml:"target"`
}

// Store keeps chunks, entities and relationships in memory and answers the
// same similarity and neighborhood queries as the graph database.
type Store struct {
	chunks        []FixtureChunk
	dimensions    int
	chunkEntities map[string][]string
	relationships []domain.Relationship
	incident      map[string][]int

	mu          sync.RWMutex
	ensuredSpec *domain.VectorIndexSpec
}

func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open graph fixture: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func Load(r io.Reader) (*Store, error) {
	var fixture Fixture
	if err := yaml.NewDecoder(r).Decode(&fixture); err != nil {
		return nil, fmt.Errorf("decode graph fixture: %w", err)
	}
	return New(fixture)
}

func New(fixture Fixture) (*Store, error) {
	s := &Store{
		chunks:        make([]FixtureChunk, 0, len(fixture.Chunks)),
		chunkEntities: make(map[string][]string),
		incident:      make(map[string][]int),
	}

	chunkIDs := make(map[string]struct{}, len(fixture.Chunks))
	for idx, chunk := range fixture.Chunks {
		if strings.TrimSpace(chunk.ID) == "" {
			return nil, fmt.Errorf("chunk %d: id is required", idx)
		}
		if _, dup := chunkIDs[chunk.ID]; dup {
			return nil, fmt.Errorf("chunk %s: duplicate id", chunk.ID)
		}
		if len(chunk.Embedding) == 0 {
			return nil, fmt.Errorf("chunk %s: embedding is required", chunk.ID)
		}
		if s.dimensions == 0 {
			s.dimensions = len(chunk.Embedding)
		}
		if len(chunk.Embedding) != s.dimensions {
			return nil, fmt.Errorf("chunk %s: embedding has %d dimensions, expected %d", chunk.ID, len(chunk.Embedding), s.dimensions)
		}
		chunkIDs[chunk.ID] = struct{}{}
		s.chunks = append(s.chunks, chunk)
	}

	entities := make(map[string]struct{}, len(fixture.Entities))
	for _, entity := range fixture.Entities {
		if strings.TrimSpace(entity.Name) == "" {
			return nil, fmt.Errorf("entity name is required")
		}
		entities[entity.Name] = struct{}{}
		for _, chunkID := range entity.Chunks {
			if _, ok := chunkIDs[chunkID]; !ok {
				return nil, fmt.Errorf("entity %s: unknown chunk %s", entity.Name, chunkID)
			}
			s.chunkEntities[chunkID] = append(s.chunkEntities[chunkID], entity.Name)
		}
	}

	relIDs := make(map[string]struct{}, len(fixture.Relationships))
	for idx, rel := range fixture.Relationships {
		if _, ok := entities[rel.Source]; !ok {
			return nil, fmt.Errorf("relationship %d: unknown source entity %q", idx, rel.Source)
		}
		if _, ok := entities[rel.Target]; !ok {
			return nil, fmt.Errorf("relationship %d: unknown target entity %q", idx, rel.Target)
		}
		if rel.Type == "" || rel.Type == domain.LinkRelationType {
			return nil, fmt.Errorf("relationship %d: invalid type %q", idx, rel.Type)
		}
		id := rel.ID
		if id == "" {
			id = fmt.Sprintf("rel-%d", idx)
		}
		if _, dup := relIDs[id]; dup {
			return nil, fmt.Errorf("relationship %s: duplicate id", id)
		}
		relIDs[id] = struct{}{}

		pos := len(s.relationships)
		s.relationships = append(s.relationships, domain.Relationship{
			ID:      id,
			Source:  rel.Source,
			Type:    rel.Type,
			Details: rel.Details,
			Target:  rel.Target,
		})
		s.incident[rel.Source] = append(s.incident[rel.Source], pos)
		if rel.Target != rel.Source {
			s.incident[rel.Target] = append(s.incident[rel.Target], pos)
		}
	}

	return s, nil
}

// EnsureVectorIndex checks that the fixture embeddings fit the index spec.
func (s *Store) EnsureVectorIndex(_ context.Context, spec domain.VectorIndexSpec) error {
	if s.dimensions != 0 && spec.Dimensions > 0 && spec.Dimensions != s.dimensions {
		return domain.WrapError(domain.ErrIndexUnavailable, "ensure vector index",
			fmt.Errorf("index %s expects %d dimensions, fixture has %d", spec.Name, spec.Dimensions, s.dimensions))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensuredSpec = &spec
	return nil
}

func (s *Store) SearchChunks(_ context.Context, queryVector []float32, limit int) ([]domain.Chunk, error) {
	s.mu.RLock()
	ensured := s.ensuredSpec != nil
	s.mu.RUnlock()
	if !ensured {
		return nil, domain.WrapError(domain.ErrIndexUnavailable, "search chunks", fmt.Errorf("vector index does not exist"))
	}
	if len(s.chunks) == 0 {
		return []domain.Chunk{}, nil
	}
	if len(queryVector) != s.dimensions {
		return nil, domain.WrapError(domain.ErrIndexUnavailable, "search chunks",
			fmt.Errorf("query vector has %d dimensions, index has %d", len(queryVector), s.dimensions))
	}

	out := make([]domain.Chunk, 0, len(s.chunks))
	for _, chunk := range s.chunks {
		out = append(out, domain.Chunk{
			ID:         chunk.ID,
			Text:       chunk.Text,
			DocumentID: chunk.DocumentID,
			Score:      cosineSimilarity(queryVector, chunk.Embedding),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ExpandChunks(ctx context.Context, queryVector []float32, limit int) ([]domain.ChunkNeighborhood, error) {
	seeds, err := s.SearchChunks(ctx, queryVector, limit)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ChunkNeighborhood, 0, len(seeds))
	for _, seed := range seeds {
		out = append(out, domain.ChunkNeighborhood{
			Chunk:         seed,
			Relationships: s.neighborhood(s.chunkEntities[seed.ID]),
		})
	}
	return out, nil
}

// neighborhood collects every relationship on an entity path of length one
// or two starting at one of the given entities. A second hop may use any edge
// of the first-hop neighbor, which is exactly its incident edge set.
func (s *Store) neighborhood(start []string) []domain.Relationship {
	seen := make(map[int]struct{})
	out := []domain.Relationship{}
	add := func(pos int) {
		if _, ok := seen[pos]; ok {
			return
		}
		seen[pos] = struct{}{}
		out = append(out, s.relationships[pos])
	}

	for _, entity := range start {
		for _, first := range s.incident[entity] {
			add(first)
			neighbor := s.relationships[first].Target
			if neighbor == entity {
				neighbor = s.relationships[first].Source
			}
			for _, second := range s.incident[neighbor] {
				add(second)
			}
		}
	}
	return out
}

func (s *Store) Close(context.Context) error {
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
