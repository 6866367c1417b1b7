package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"faqsearch/pkg/faq"
)

// Defaults mirror the service's historical configuration.
const (
	DefaultTFIDFWeight     = 0.3
	DefaultEmbeddingWeight = 0.7
	DefaultTopK            = 3

	// weightTolerance is the floating tolerance for the sum-to-one check.
	weightTolerance = 1e-9
)

// Config holds all runtime configuration, read once at startup.
type Config struct {
	// Hybrid ranking weights. Must each be in [0,1] and sum to 1.0.
	TFIDFWeight     float64
	EmbeddingWeight float64

	// DefaultTopK is used when a search request omits top_k.
	DefaultTopK int

	// Embedding provider selection, passed to the embedder factory.
	EmbeddingProvider  string
	EmbeddingModel     string
	EmbeddingDimension int

	// DBPath is the SQLite database file path.
	DBPath string
}

// Load reads configuration from the environment and validates it.
// Weight misconfiguration fails fast here; no search ever runs with
// unvalidated weights.
func Load() (*Config, error) {
	cfg := &Config{
		TFIDFWeight:        envFloat("TFIDF_WEIGHT", DefaultTFIDFWeight),
		EmbeddingWeight:    envFloat("EMBEDDING_WEIGHT", DefaultEmbeddingWeight),
		DefaultTopK:        envInt("DEFAULT_TOP_K", DefaultTopK),
		EmbeddingProvider:  os.Getenv("EMBEDDING_PROVIDER"),
		EmbeddingModel:     os.Getenv("EMBEDDING_MODEL"),
		EmbeddingDimension: envInt("EMBEDDING_DIMENSION", 0),
		DBPath:             os.Getenv("FAQSEARCH_DB_PATH"),
	}

	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".faqsearch", "faqsearch.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks weight and top_k constraints.
func (c *Config) Validate() error {
	if c.TFIDFWeight < 0 || c.TFIDFWeight > 1 {
		return fmt.Errorf("%w: tfidf_weight %v outside [0,1]", faq.ErrConfigInvalid, c.TFIDFWeight)
	}
	if c.EmbeddingWeight < 0 || c.EmbeddingWeight > 1 {
		return fmt.Errorf("%w: embedding_weight %v outside [0,1]", faq.ErrConfigInvalid, c.EmbeddingWeight)
	}
	if math.Abs(c.TFIDFWeight+c.EmbeddingWeight-1.0) > weightTolerance {
		return fmt.Errorf("%w: weights must sum to 1.0, got %v",
			faq.ErrConfigInvalid, c.TFIDFWeight+c.EmbeddingWeight)
	}
	if c.DefaultTopK <= 0 {
		return fmt.Errorf("%w: default top_k must be positive, got %d",
			faq.ErrConfigInvalid, c.DefaultTopK)
	}
	return nil
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
