package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faqsearch/internal/embedder"
	"faqsearch/internal/store"
	"faqsearch/pkg/faq"
)

const sampleCorpus = `
- id: reg-001
  question: How do I register for the course?
  answer: Fill out the registration form on the portal.
  category: registration
- question: What payment methods are accepted?
  answer: Cards and bank transfer.
  category: billing
- id: plat-001
  question: Where can I watch the recorded lectures?
  answer: Recordings are in the platform library.
  category: PLATFORM
`

func writeCorpusFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "faqs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func setupIngestor(t *testing.T) (*Ingestor, *store.SQLiteStore) {
	t.Helper()

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})

	emb, err := embedder.New(embedder.Config{Provider: embedder.ProviderLocal})
	require.NoError(t, err)

	return New(st, emb), st
}

func TestLoadFile(t *testing.T) {
	path := writeCorpusFile(t, sampleCorpus)

	entries, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "reg-001", entries[0].ID)
	assert.Equal(t, faq.CategoryRegistration, entries[0].Category)

	// Missing id gets a generated one; unknown category normalizes.
	assert.NotEmpty(t, entries[1].ID)
	assert.Equal(t, faq.CategoryGeneral, entries[1].Category)

	// Category labels are case-insensitive.
	assert.Equal(t, faq.CategoryPlatform, entries[2].Category)
}

func TestLoadFileGeneratedIDsAreUnique(t *testing.T) {
	path := writeCorpusFile(t, `
- question: first question
  answer: first answer
- question: second question
  answer: second answer
`)

	entries, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
}

func TestLoadFileInvalidEntry(t *testing.T) {
	path := writeCorpusFile(t, `
- question: has no answer
  category: general
`)

	_, err := LoadFile(path)
	assert.ErrorIs(t, err, faq.ErrEmptyAnswer)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFileBadYAML(t *testing.T) {
	path := writeCorpusFile(t, "question: [unclosed")
	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestImportFile(t *testing.T) {
	ing, st := setupIngestor(t)
	ctx := context.Background()

	path := writeCorpusFile(t, sampleCorpus)
	n, err := ing.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	count, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Re-import is an upsert, not a duplicate insert.
	n, err = ing.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	count, err = st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestEmbedMissing(t *testing.T) {
	ing, st := setupIngestor(t)
	ctx := context.Background()

	path := writeCorpusFile(t, sampleCorpus)
	_, err := ing.ImportFile(ctx, path)
	require.NoError(t, err)

	n, err := ing.EmbedMissing(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	embedded, err := st.CountEmbedded(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, embedded)

	// A second pass finds nothing to do.
	n, err = ing.EmbedMissing(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// Stored vectors have the provider's dimensionality.
	entries, err := st.ListAll(ctx)
	require.NoError(t, err)
	for _, e := range entries {
		assert.Len(t, e.Embedding, embedder.LocalDimension, "entry %s", e.ID)
	}
}

func TestAddEntry(t *testing.T) {
	ing, st := setupIngestor(t)
	ctx := context.Background()

	e := &faq.Entry{
		Question: "How do I reset my password?",
		Answer:   "Use the reset link on the login page.",
		Category: "tech support",
	}
	require.NoError(t, ing.AddEntry(ctx, e))

	assert.NotEmpty(t, e.ID, "missing id should be generated")
	assert.Equal(t, faq.CategoryGeneral, e.Category, "unknown category normalizes")

	got, err := st.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Embedding, "add should embed immediately when the provider works")
}

func TestAddEntryDuplicateID(t *testing.T) {
	ing, _ := setupIngestor(t)
	ctx := context.Background()

	e := &faq.Entry{ID: "dup-001", Question: "q", Answer: "a"}
	require.NoError(t, ing.AddEntry(ctx, e))

	err := ing.AddEntry(ctx, &faq.Entry{ID: "dup-001", Question: "other", Answer: "other"})
	assert.ErrorIs(t, err, faq.ErrAlreadyExists)
}

func TestAddEntryValidation(t *testing.T) {
	ing, _ := setupIngestor(t)
	ctx := context.Background()

	err := ing.AddEntry(ctx, &faq.Entry{Question: "", Answer: "a"})
	assert.ErrorIs(t, err, faq.ErrEmptyQuestion)

	err = ing.AddEntry(ctx, &faq.Entry{Question: "q", Answer: ""})
	assert.ErrorIs(t, err, faq.ErrEmptyAnswer)
}

// failingEmbedder simulates a provider outage.
type failingEmbedder struct{}

func (f *failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("provider down")
}

func (f *failingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("provider down")
}

func (f *failingEmbedder) Dimension() int   { return 384 }
func (f *failingEmbedder) Provider() string { return "failing" }
func (f *failingEmbedder) Model() string    { return "failing" }
func (f *failingEmbedder) Close() error     { return nil }

func TestAddEntryDefersEmbeddingOnProviderFailure(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})

	ing := New(st, &failingEmbedder{})
	ctx := context.Background()

	e := &faq.Entry{Question: "q", Answer: "a"}
	require.NoError(t, ing.AddEntry(ctx, e), "embedding failure must not fail the add")

	got, err := st.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Embedding, "vector is deferred until the next bulk pass")
}

func TestEmbedMissingPropagatesProviderFailure(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	require.NoError(t, st.Append(ctx, &faq.Entry{ID: "x", Question: "q", Answer: "a"}))

	ing := New(st, &failingEmbedder{})
	_, err = ing.EmbedMissing(ctx)
	assert.Error(t, err, "bulk embedding surfaces provider failures")
}
