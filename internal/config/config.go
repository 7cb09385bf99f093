package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kirillkom/graphrag-compare/internal/core/domain"
)

const (
	GraphBackendNeo4j  = "neo4j"
	GraphBackendMemory = "memory"
)

type Config struct {
	APIHost           string
	APIPort           string
	LogLevel          string
	APIRateLimitRPS   float64
	APIRateLimitBurst int
	APIMaxConnections int
	APIMaxInFlight    int

	// APIBackpressureWaitMS is how long a request waits for a free compare
	// slot before it is rejected with 503.
	APIBackpressureWaitMS int

	GraphBackend     string
	GraphFixturePath string

	Neo4jURI         string
	Neo4jUsername    string
	Neo4jPassword    string
	Neo4jDatabase    string
	Neo4jMaxPoolSize int

	VectorIndexName       string
	VectorIndexLabel      string
	VectorIndexProperty   string
	VectorIndexDimensions int
	VectorIndexSimilarity string

	OpenAIAPIKey         string
	OpenAIBaseURL        string
	OpenAIGenModel       string
	OpenAIEmbedModel     string
	OpenAITimeoutSeconds int

	RAGTopK         int
	RAGTopKMax      int
	CompareParallel bool

	BreakerEnabled            bool
	BreakerMinRequests        int
	BreakerFailureRatio       float64
	BreakerOpenTimeoutSeconds int
}

// LoadDotEnv reads DOTENV_PATH (default .env) into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv() error {
	path := mustEnv("DOTENV_PATH", ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func Load() Config {
	return Config{
		APIHost:           mustEnv("API_HOST", "127.0.0.1"),
		APIPort:           mustEnv("API_PORT", "7880"),
		LogLevel:          mustEnv("LOG_LEVEL", "info"),
		APIRateLimitRPS:   mustEnvFloat("API_RATE_LIMIT_RPS", 5),
		APIRateLimitBurst: mustEnvInt("API_RATE_LIMIT_BURST", 10),
		APIMaxConnections: mustEnvInt("API_MAX_CONNECTIONS", 64),
		APIMaxInFlight:    mustEnvInt("API_MAX_IN_FLIGHT", 8),

		APIBackpressureWaitMS: mustEnvInt("API_BACKPRESSURE_WAIT_MS", 250),

		GraphBackend:     strings.ToLower(mustEnv("GRAPH_BACKEND", GraphBackendNeo4j)),
		GraphFixturePath: mustEnv("GRAPH_FIXTURE_PATH", ""),

		Neo4jURI:         mustEnv("NEO4J_URI", ""),
		Neo4jUsername:    mustEnv("NEO4J_USERNAME", ""),
		Neo4jPassword:    mustEnv("NEO4J_PASSWORD", ""),
		Neo4jDatabase:    mustEnv("NEO4J_DATABASE", ""),
		Neo4jMaxPoolSize: mustEnvInt("NEO4J_MAX_POOL_SIZE", 0),

		VectorIndexName:       mustEnv("VECTOR_INDEX_NAME", "text_embeddings"),
		VectorIndexLabel:      mustEnv("VECTOR_INDEX_LABEL", "Chunk"),
		VectorIndexProperty:   mustEnv("VECTOR_INDEX_PROPERTY", "embedding"),
		VectorIndexDimensions: mustEnvInt("VECTOR_INDEX_DIMENSIONS", 1536),
		VectorIndexSimilarity: mustEnv("VECTOR_INDEX_SIMILARITY", "cosine"),

		OpenAIAPIKey:         mustEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:        mustEnv("OPENAI_BASE_URL", ""),
		OpenAIGenModel:       mustEnv("OPENAI_GEN_MODEL", "gpt-4.1-mini"),
		OpenAIEmbedModel:     mustEnv("OPENAI_EMBED_MODEL", "text-embedding-ada-002"),
		OpenAITimeoutSeconds: mustEnvInt("OPENAI_TIMEOUT_SECONDS", 60),

		RAGTopK:         mustEnvInt("RAG_TOP_K", 5),
		RAGTopKMax:      mustEnvInt("RAG_TOP_K_MAX", 10),
		CompareParallel: mustEnvBool("COMPARE_PARALLEL", true),

		BreakerEnabled:            mustEnvBool("BREAKER_ENABLED", true),
		BreakerMinRequests:        mustEnvInt("BREAKER_MIN_REQUESTS", 10),
		BreakerFailureRatio:       mustEnvFloat("BREAKER_FAILURE_RATIO", 0.5),
		BreakerOpenTimeoutSeconds: mustEnvInt("BREAKER_OPEN_TIMEOUT_SECONDS", 30),
	}
}

// Validate reports missing connection credentials. Callers treat the error
// as fatal.
func (c Config) Validate() error {
	var missing []string
	switch c.GraphBackend {
	case GraphBackendNeo4j:
		if c.Neo4jURI == "" {
			missing = append(missing, "NEO4J_URI")
		}
		if c.Neo4jUsername == "" {
			missing = append(missing, "NEO4J_USERNAME")
		}
		if c.Neo4jPassword == "" {
			missing = append(missing, "NEO4J_PASSWORD")
		}
	case GraphBackendMemory:
		if c.GraphFixturePath == "" {
			missing = append(missing, "GRAPH_FIXTURE_PATH")
		}
	default:
		return domain.WrapError(domain.ErrConfiguration, "config", fmt.Errorf("unknown GRAPH_BACKEND %q", c.GraphBackend))
	}
	if c.OpenAIAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if len(missing) > 0 {
		return domain.WrapError(domain.ErrConfiguration, "config", fmt.Errorf("missing required settings: %s", strings.Join(missing, ", ")))
	}

	if c.RAGTopK <= 0 || c.RAGTopKMax < c.RAGTopK {
		return domain.WrapError(domain.ErrConfiguration, "config", fmt.Errorf("RAG_TOP_K must be in 1..RAG_TOP_K_MAX, got %d (max %d)", c.RAGTopK, c.RAGTopKMax))
	}
	if c.VectorIndexDimensions <= 0 {
		return domain.WrapError(domain.ErrConfiguration, "config", fmt.Errorf("VECTOR_INDEX_DIMENSIONS must be positive"))
	}
	return nil
}

func (c Config) VectorIndex() domain.VectorIndexSpec {
	return domain.VectorIndexSpec{
		Name:       c.VectorIndexName,
		Label:      c.VectorIndexLabel,
		Property:   c.VectorIndexProperty,
		Dimensions: c.VectorIndexDimensions,
		Similarity: c.VectorIndexSimilarity,
	}
}

func (c Config) ListenAddr() string {
	return c.APIHost + ":" + c.APIPort
}

func (c Config) OpenAITimeout() time.Duration {
	return time.Duration(c.OpenAITimeoutSeconds) * time.Second
}

func mustEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
