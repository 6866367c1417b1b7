package embedder

import (
	"fmt"
	"os"
	"strings"
)

// Config holds embedder configuration.
type Config struct {
	Provider  string
	APIKey    string
	Model     string
	CacheSize int
}

// New creates an embedder with explicit configuration. The provider set is
// closed; unknown names are an error rather than a silent fallback.
func New(cfg Config) (Embedder, error) {
	cache := NewCache(cfg.CacheSize)

	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cache)
	case ProviderVoyage:
		return NewVoyageProvider(cfg.APIKey, cfg.Model, cache)
	case ProviderLocal:
		return NewLocalProvider(cache)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Provider)
	}
}

// NewFromEnv creates an embedder based on environment variables.
// Priority:
//  1. EMBEDDING_PROVIDER (openai, voyage, local)
//  2. Available API keys: OPENAI_API_KEY, VOYAGE_API_KEY
//  3. Local provider when no keys are found
func NewFromEnv() (Embedder, error) {
	provider := os.Getenv("EMBEDDING_PROVIDER")
	model := os.Getenv("EMBEDDING_MODEL")
	openaiKey := os.Getenv("OPENAI_API_KEY")
	voyageKey := os.Getenv("VOYAGE_API_KEY")

	if provider != "" {
		key := ""
		switch strings.ToLower(provider) {
		case ProviderOpenAI:
			key = openaiKey
		case ProviderVoyage:
			key = voyageKey
		}
		return New(Config{Provider: provider, APIKey: key, Model: model})
	}

	if openaiKey != "" {
		return New(Config{Provider: ProviderOpenAI, APIKey: openaiKey, Model: model})
	}
	if voyageKey != "" {
		return New(Config{Provider: ProviderVoyage, APIKey: voyageKey, Model: model})
	}
	return New(Config{Provider: ProviderLocal})
}

// DetectProvider returns the provider NewFromEnv would select.
func DetectProvider() string {
	if provider := os.Getenv("EMBEDDING_PROVIDER"); provider != "" {
		return strings.ToLower(provider)
	}
	if os.Getenv("OPENAI_API_KEY") != "" {
		return ProviderOpenAI
	}
	if os.Getenv("VOYAGE_API_KEY") != "" {
		return ProviderVoyage
	}
	return ProviderLocal
}
