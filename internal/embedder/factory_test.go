package embedder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	t.Setenv("EMBEDDING_PROVIDER", "")
	t.Setenv("EMBEDDING_MODEL", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("VOYAGE_API_KEY", "")
}

func TestNewUnsupportedProvider(t *testing.T) {
	_, err := New(Config{Provider: "cohere"})
	assert.ErrorIs(t, err, ErrUnsupportedProvider)
}

func TestNewProviderSelection(t *testing.T) {
	local, err := New(Config{Provider: "local"})
	require.NoError(t, err)
	assert.Equal(t, ProviderLocal, local.Provider())

	// Provider names are case-insensitive.
	local, err = New(Config{Provider: "Local"})
	require.NoError(t, err)
	assert.Equal(t, ProviderLocal, local.Provider())

	openaiEmb, err := New(Config{Provider: "openai", APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, openaiEmb.Provider())

	_, err = New(Config{Provider: "openai"})
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestNewFromEnvDefaultsToLocal(t *testing.T) {
	clearProviderEnv(t)

	emb, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ProviderLocal, emb.Provider())
}

func TestNewFromEnvKeyDetection(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "test-key")

	emb, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, emb.Provider())
}

func TestNewFromEnvExplicitProviderWins(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("EMBEDDING_PROVIDER", "local")

	emb, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ProviderLocal, emb.Provider())
}

func TestNewFromEnvExplicitProviderWithoutKey(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("EMBEDDING_PROVIDER", "voyage")

	// Explicitly requested provider with no key fails instead of silently
	// falling back.
	_, err := NewFromEnv()
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestDetectProvider(t *testing.T) {
	clearProviderEnv(t)
	assert.Equal(t, ProviderLocal, DetectProvider())

	t.Setenv("VOYAGE_API_KEY", "test-key")
	assert.Equal(t, ProviderVoyage, DetectProvider())

	t.Setenv("OPENAI_API_KEY", "test-key")
	assert.Equal(t, ProviderOpenAI, DetectProvider())

	t.Setenv("EMBEDDING_PROVIDER", "LOCAL")
	assert.Equal(t, ProviderLocal, DetectProvider())
}
