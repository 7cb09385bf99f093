package neo4jstore

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/config"

	"github.com/kirillkom/graphrag-compare/internal/core/domain"
	"github.com/kirillkom/graphrag-compare/internal/infrastructure/resilience"
)

const (
	searchCypher = `CALL db.index.vector.queryNodes($index_name, $top_k, $query_vector)
YIELD node, score
RETURN elementId(node) AS id, node.text AS text, score
ORDER BY score DESC`

	// Entities link to their source chunk through FROM_CHUNK. The quantified
	// pattern walks one or two entity-to-entity relationships starting at
	// each linked entity, which yields every relationship incident to the
	// entity or to one of its direct neighbors.
	expandCypher = `CALL db.index.vector.queryNodes($index_name, $top_k, $query_vector)
YIELD node, score
WITH node AS chunk, score
OPTIONAL MATCH (chunk)<-[:FROM_CHUNK]-()-[relList:!FROM_CHUNK]-{1,2}()
UNWIND CASE WHEN relList IS NULL THEN [null] ELSE relList END AS rel
WITH chunk, score, collect(DISTINCT rel) AS rels
RETURN elementId(chunk) AS chunk_id, chunk.text AS text, score,
       [r IN rels | {id: elementId(r), source: startNode(r).name, type: type(r), details: coalesce(r.details, ''), target: endNode(r).name}] AS rels
ORDER BY score DESC`

	createIndexCypherTemplate = "CREATE VECTOR INDEX `%s` IF NOT EXISTS FOR (n:`%s`) ON n.`%s` " +
		"OPTIONS { indexConfig: { `vector.dimensions`: toInteger($dimensions), `vector.similarity_function`: $similarity_fn } }"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Options struct {
	URI         string
	Username    string
	Password    string
	Database    string
	MaxPoolSize int
	Index       domain.VectorIndexSpec
}

type queryFunc func(ctx context.Context, cypher string, params map[string]any, write bool) ([]*neo4j.Record, error)

// Store serves chunk similarity search and graph expansion from Neo4j.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
	index    domain.VectorIndexSpec
	guard    *resilience.Guard
	query    queryFunc
}

func New(ctx context.Context, opts Options, guard *resilience.Guard) (*Store, error) {
	if strings.TrimSpace(opts.URI) == "" {
		return nil, domain.WrapError(domain.ErrConfiguration, "neo4j connect", fmt.Errorf("uri is required"))
	}

	driver, err := neo4j.NewDriverWithContext(
		opts.URI,
		neo4j.BasicAuth(opts.Username, opts.Password, ""),
		func(c *config.Config) {
			if opts.MaxPoolSize > 0 {
				c.MaxConnectionPoolSize = opts.MaxPoolSize
			}
		},
	)
	if err != nil {
		return nil, domain.WrapError(domain.ErrConfiguration, "neo4j connect", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, domain.WrapError(domain.ErrConfiguration, "neo4j connect", err)
	}

	s := &Store{
		driver:   driver,
		database: opts.Database,
		index:    opts.Index,
		guard:    guard,
	}
	s.query = s.executeQuery
	return s, nil
}

func (s *Store) executeQuery(ctx context.Context, cypher string, params map[string]any, write bool) ([]*neo4j.Record, error) {
	opts := make([]neo4j.ExecuteQueryConfigurationOption, 0, 2)
	if s.database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(s.database))
	}
	if write {
		opts = append(opts, neo4j.ExecuteQueryWithWritersRouting())
	} else {
		opts = append(opts, neo4j.ExecuteQueryWithReadersRouting())
	}

	result, err := neo4j.ExecuteQuery(ctx, s.driver, cypher, params, neo4j.EagerResultTransformer, opts...)
	if err != nil {
		return nil, err
	}
	return result.Records, nil
}

func (s *Store) run(ctx context.Context, operation, cypher string, params map[string]any, write bool) ([]*neo4j.Record, error) {
	var records []*neo4j.Record
	err := s.guard.Execute(ctx, operation, func(ctx context.Context) error {
		var err error
		records, err = s.query(ctx, cypher, params, write)
		return err
	}, classifyNeo4jError)
	return records, err
}

// EnsureVectorIndex creates the chunk embedding index when it does not exist.
func (s *Store) EnsureVectorIndex(ctx context.Context, spec domain.VectorIndexSpec) error {
	cypher, err := createIndexCypher(spec)
	if err != nil {
		return err
	}
	_, err = s.run(ctx, "neo4j.create_index", cypher, map[string]any{
		"dimensions":    spec.Dimensions,
		"similarity_fn": spec.Similarity,
	}, true)
	if err != nil && !isAlreadyExists(err) {
		return domain.WrapError(domain.ErrIndexUnavailable, "create vector index", err)
	}
	s.index = spec
	return nil
}

func (s *Store) SearchChunks(ctx context.Context, queryVector []float32, limit int) ([]domain.Chunk, error) {
	records, err := s.run(ctx, "neo4j.search", searchCypher, s.searchParams(queryVector, limit), false)
	if err != nil {
		return nil, mapQueryError("vector search", err, domain.ErrIndexUnavailable)
	}

	out := make([]domain.Chunk, 0, len(records))
	for _, rec := range records {
		chunk, err := decodeChunk(rec, "id")
		if err != nil {
			return nil, domain.WrapError(domain.ErrIndexUnavailable, "decode search record", err)
		}
		out = append(out, chunk)
	}
	return out, nil
}

func (s *Store) ExpandChunks(ctx context.Context, queryVector []float32, limit int) ([]domain.ChunkNeighborhood, error) {
	records, err := s.run(ctx, "neo4j.expand", expandCypher, s.searchParams(queryVector, limit), false)
	if err != nil {
		return nil, mapQueryError("graph expand", err, domain.ErrRetrieval)
	}

	out := make([]domain.ChunkNeighborhood, 0, len(records))
	for _, rec := range records {
		chunk, err := decodeChunk(rec, "chunk_id")
		if err != nil {
			return nil, domain.WrapError(domain.ErrRetrieval, "decode expand record", err)
		}
		rels, err := decodeRelationships(rec)
		if err != nil {
			return nil, domain.WrapError(domain.ErrRetrieval, "decode expand record", err)
		}
		out = append(out, domain.ChunkNeighborhood{Chunk: chunk, Relationships: rels})
	}
	return out, nil
}

func (s *Store) Close(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Close(ctx)
}

func (s *Store) searchParams(queryVector []float32, limit int) map[string]any {
	vector := make([]float64, len(queryVector))
	for i, v := range queryVector {
		vector[i] = float64(v)
	}
	return map[string]any{
		"index_name":   s.index.Name,
		"top_k":        limit,
		"query_vector": vector,
	}
}

func createIndexCypher(spec domain.VectorIndexSpec) (string, error) {
	for field, value := range map[string]string{"name": spec.Name, "label": spec.Label, "property": spec.Property} {
		if !identifierPattern.MatchString(value) {
			return "", domain.WrapError(domain.ErrConfiguration, "vector index", fmt.Errorf("invalid %s %q", field, value))
		}
	}
	if spec.Dimensions <= 0 {
		return "", domain.WrapError(domain.ErrConfiguration, "vector index", fmt.Errorf("dimensions must be positive, got %d", spec.Dimensions))
	}
	switch spec.Similarity {
	case "cosine", "euclidean":
	default:
		return "", domain.WrapError(domain.ErrConfiguration, "vector index", fmt.Errorf("unsupported similarity %q", spec.Similarity))
	}
	return fmt.Sprintf(createIndexCypherTemplate, spec.Name, spec.Label, spec.Property), nil
}
