// Package ingest is the admin/write path: it loads FAQ corpus files into
// the store and computes embedding vectors out-of-band, so the search core
// never triggers bulk re-embedding on the hot path.
package ingest

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"faqsearch/internal/embedder"
	"faqsearch/internal/store"
	"faqsearch/pkg/faq"
)

// DefaultWorkers bounds concurrent provider calls during bulk embedding.
const DefaultWorkers = 8

// Ingestor writes FAQ entries and their vectors to the store.
type Ingestor struct {
	store    store.Store
	embedder embedder.Embedder
	workers  int
}

// New creates an Ingestor.
func New(st store.Store, emb embedder.Embedder) *Ingestor {
	return &Ingestor{
		store:    st,
		embedder: emb,
		workers:  DefaultWorkers,
	}
}

// fileEntry is the YAML corpus file schema.
type fileEntry struct {
	ID       string `yaml:"id"`
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
	Category string `yaml:"category"`
}

// LoadFile parses a YAML corpus file into validated entries. Entries
// without an id get a generated one; ids are assigned once and never
// reused. Unknown categories normalize to "general".
func LoadFile(path string) ([]*faq.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file: %w", err)
	}

	var raw []fileEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse corpus file: %w", err)
	}

	entries := make([]*faq.Entry, 0, len(raw))
	for i, fe := range raw {
		e := &faq.Entry{
			ID:       fe.ID,
			Question: fe.Question,
			Answer:   fe.Answer,
			Category: faq.NormalizeCategory(fe.Category),
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ImportFile upserts every entry from a corpus file and reports how many
// were written.
func (ing *Ingestor) ImportFile(ctx context.Context, path string) (int, error) {
	entries, err := LoadFile(path)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if err := ing.store.Upsert(ctx, e); err != nil {
			return 0, fmt.Errorf("failed to upsert %s: %w", e.ID, err)
		}
	}
	return len(entries), nil
}

// EmbedMissing computes and stores vectors for every entry that has no
// usable cached vector. Provider calls run concurrently with a bounded
// worker count. Returns how many vectors were written.
func (ing *Ingestor) EmbedMissing(ctx context.Context) (int, error) {
	entries, err := ing.store.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	dim := ing.embedder.Dimension()
	var pending []*faq.Entry
	for _, e := range entries {
		if e.Embedding == nil || len(e.Embedding) != dim {
			pending = append(pending, e)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ing.workers)
	for _, e := range pending {
		g.Go(func() error {
			vec, err := ing.embedder.Embed(gctx, e.Question)
			if err != nil {
				return fmt.Errorf("failed to embed %s: %w", e.ID, err)
			}
			return ing.store.SaveEmbedding(gctx, e.ID, vec,
				ing.embedder.Provider(), ing.embedder.Model())
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	log.Printf("ingest: embedded %d entries with %s/%s",
		len(pending), ing.embedder.Provider(), ing.embedder.Model())
	return len(pending), nil
}

// AddEntry appends one new entry and embeds it best-effort. An embedding
// failure leaves the entry searchable via TF-IDF until the next bulk
// embedding pass.
func (ing *Ingestor) AddEntry(ctx context.Context, e *faq.Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Category = faq.NormalizeCategory(e.Category)
	if err := e.Validate(); err != nil {
		return err
	}

	if err := ing.store.Append(ctx, e); err != nil {
		return err
	}

	vec, err := ing.embedder.Embed(ctx, e.Question)
	if err != nil {
		log.Printf("ingest: embedding for %s deferred: %v", e.ID, err)
		return nil
	}
	if err := ing.store.SaveEmbedding(ctx, e.ID, vec,
		ing.embedder.Provider(), ing.embedder.Model()); err != nil {
		return fmt.Errorf("failed to save embedding for %s: %w", e.ID, err)
	}
	return nil
}
