// Package ranker combines lexical (TF-IDF) and semantic (embedding)
// similarity into one ranked result list over an in-memory corpus snapshot.
//
// The snapshot and its derived index are immutable; Rebuild constructs a
// replacement off to the side and swaps it atomically, so concurrent
// searches never observe a half-built index.
package ranker

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"faqsearch/internal/embedder"
	"faqsearch/internal/lexical"
	"faqsearch/internal/store"
	"faqsearch/pkg/faq"
)

// weightTolerance is the floating tolerance for the sum-to-one check.
const weightTolerance = 1e-9

// Weights blend the two similarity signals. They must each be in [0,1]
// and sum to 1.0.
type Weights struct {
	TFIDF     float64
	Embedding float64
}

// Validate rejects weights outside [0,1] or not summing to one. There is
// no silent renormalization.
func (w Weights) Validate() error {
	if w.TFIDF < 0 || w.TFIDF > 1 || w.Embedding < 0 || w.Embedding > 1 {
		return fmt.Errorf("%w: weights outside [0,1]", faq.ErrConfigInvalid)
	}
	if math.Abs(w.TFIDF+w.Embedding-1.0) > weightTolerance {
		return fmt.Errorf("%w: weights must sum to 1.0, got %v",
			faq.ErrConfigInvalid, w.TFIDF+w.Embedding)
	}
	return nil
}

// Response carries the ranked results plus request-level diagnostics.
type Response struct {
	Results      []faq.SearchResult `json:"results"`
	TotalResults int                `json:"total_results"`

	// SearchMethod is "hybrid" when embedding similarity contributed to
	// this response, "tfidf" when it degraded to lexical-only.
	SearchMethod string `json:"search_method"`
}

// snapshot is one immutable generation of the corpus and derived artifacts.
type snapshot struct {
	entries []*faq.Entry
	index   *lexical.Index

	// vectors[i] is the cached embedding for entries[i], or nil when the
	// entry has no vector (or a dimensionality-mismatched one, which is
	// dropped rather than compared).
	vectors [][]float32
}

// Ranker is the hybrid search core. One Ranker is shared by all requests;
// the only mutable state is the snapshot pointer.
type Ranker struct {
	store    store.Store
	embedder embedder.Embedder
	weights  Weights

	snap      atomic.Pointer[snapshot]
	ready     chan struct{}
	readyOnce sync.Once
	rebuildMu sync.Mutex
}

// New creates a Ranker. No snapshot exists until the first Rebuild;
// searches issued before that block until it completes.
func New(st store.Store, emb embedder.Embedder, weights Weights) (*Ranker, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Ranker{
		store:    st,
		embedder: emb,
		weights:  weights,
		ready:    make(chan struct{}),
	}, nil
}

// Ready reports whether a snapshot has been built.
func (r *Ranker) Ready() bool {
	return r.snap.Load() != nil
}

// CorpusSize returns the number of entries in the current snapshot.
func (r *Ranker) CorpusSize() int {
	if s := r.snap.Load(); s != nil {
		return len(s.entries)
	}
	return 0
}

// Rebuild loads the corpus and builds a fresh snapshot, then swaps it in.
// Readers keep the previous snapshot until the swap. An empty corpus is a
// valid state, not an error.
func (r *Ranker) Rebuild(ctx context.Context) error {
	r.rebuildMu.Lock()
	defer r.rebuildMu.Unlock()

	entries, err := r.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	questions := make([]string, len(entries))
	vectors := make([][]float32, len(entries))
	dim := r.embedder.Dimension()
	dropped := 0
	for i, e := range entries {
		questions[i] = e.Question
		if e.Embedding == nil {
			continue
		}
		if len(e.Embedding) != dim {
			// Stale vector from another provider; never compare it.
			dropped++
			continue
		}
		vectors[i] = e.Embedding
	}
	if dropped > 0 {
		log.Printf("ranker: dropped %d cached vectors with wrong dimensionality (want %d)", dropped, dim)
	}

	r.snap.Store(&snapshot{
		entries: entries,
		index:   lexical.Build(questions),
		vectors: vectors,
	})
	r.readyOnce.Do(func() { close(r.ready) })
	return nil
}

// Search ranks the corpus against the query and returns at most topK
// results, sorted by descending blended score with ties broken by corpus
// order. A query-embedding failure degrades the whole response to
// lexical-only scoring instead of failing the request.
func (r *Ranker) Search(ctx context.Context, query string, topK int) (*Response, error) {
	if strings.TrimSpace(query) == "" {
		return nil, faq.ErrEmptyQuery
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: got %d", faq.ErrInvalidTopK, topK)
	}

	snap, err := r.awaitSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if len(snap.entries) == 0 {
		return &Response{Results: []faq.SearchResult{}, SearchMethod: faq.MethodTFIDF}, nil
	}

	// Lexical scoring and the query-embedding provider call run
	// concurrently; neither holds a lock across the other.
	lexChan := make(chan []float64, 1)
	embChan := make(chan embedOutcome, 1)
	go func() {
		lexChan <- snap.index.Score(query)
	}()
	go func() {
		vec, err := r.embedder.Embed(ctx, query)
		embChan <- embedOutcome{vector: vec, err: err}
	}()

	var tfidfScores []float64
	var emb embedOutcome
	for i := 0; i < 2; i++ {
		select {
		case tfidfScores = <-lexChan:
		case emb = <-embChan:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	degraded := emb.err != nil
	if degraded {
		log.Printf("ranker: query embedding failed, degrading to tfidf-only: %v", emb.err)
	}

	ranked := make([]rankedEntry, len(snap.entries))
	hybridAny := false
	for i, entry := range snap.entries {
		re := rankedEntry{
			entry:      entry,
			tfidfScore: tfidfScores[i],
			method:     faq.MethodTFIDF,
		}
		if !degraded && snap.vectors[i] != nil {
			re.embeddingScore = clampedCosine(emb.vector, snap.vectors[i])
			re.method = faq.MethodHybrid
			hybridAny = true
		}
		re.finalScore = r.weights.TFIDF*re.tfidfScore + r.weights.Embedding*re.embeddingScore
		ranked[i] = re
	}

	// Stable sort keeps snapshot order on equal scores, so identical
	// inputs always produce identical orderings.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].finalScore > ranked[j].finalScore
	})

	if topK > len(ranked) {
		topK = len(ranked)
	}
	results := make([]faq.SearchResult, topK)
	for i := 0; i < topK; i++ {
		re := ranked[i]
		results[i] = faq.SearchResult{
			FAQID:           re.entry.ID,
			Question:        re.entry.Question,
			Answer:          re.entry.Answer,
			Category:        re.entry.Category,
			SimilarityScore: re.finalScore,
			TFIDFScore:      re.tfidfScore,
			EmbeddingScore:  re.embeddingScore,
			SearchMethod:    re.method,
		}
	}

	method := faq.MethodTFIDF
	if hybridAny {
		method = faq.MethodHybrid
	}
	return &Response{
		Results:      results,
		TotalResults: len(results),
		SearchMethod: method,
	}, nil
}

// awaitSnapshot returns the current snapshot, blocking until the first
// build completes. The corpus is small and builds are fast, so blocking is
// simpler than surfacing a transient not-ready error to every caller.
func (r *Ranker) awaitSnapshot(ctx context.Context) (*snapshot, error) {
	if s := r.snap.Load(); s != nil {
		return s, nil
	}
	select {
	case <-r.ready:
		return r.snap.Load(), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", faq.ErrIndexNotReady, ctx.Err())
	}
}

type embedOutcome struct {
	vector []float32
	err    error
}

type rankedEntry struct {
	entry          *faq.Entry
	tfidfScore     float64
	embeddingScore float64
	finalScore     float64
	method         string
}

// clampedCosine maps raw cosine similarity into [0,1] by clamping
// negatives to zero. Applied uniformly to every semantic score.
func clampedCosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if cos < 0 {
		return 0
	}
	if cos > 1 {
		return 1
	}
	return cos
}
