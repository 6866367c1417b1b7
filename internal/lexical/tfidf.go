// Package lexical implements the TF-IDF half of the hybrid ranker.
//
// The index is a derived artifact of one corpus snapshot: it is built in
// full from the snapshot's question text and discarded wholesale when the
// snapshot is replaced. There is no incremental update path.
package lexical

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// tokenPattern matches runs of letters and digits. Tokenization is
// lowercase + this pattern + stopword removal, and is stable across
// rebuilds so identical corpora always produce identical indexes.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Index is a fitted TF-IDF vectorizer over a fixed document sequence.
// Document vectors are L2-normalized, so cosine similarity against a
// normalized query vector reduces to a dot product.
type Index struct {
	vocabulary map[string]int
	idf        []float64
	docs       [][]termWeight
	numDocs    int
}

type termWeight struct {
	term   int
	weight float64
}

// Build fits an index over the given documents. An empty corpus yields an
// empty index whose Score returns an empty slice.
func Build(documents []string) *Index {
	idx := &Index{
		vocabulary: make(map[string]int),
		numDocs:    len(documents),
	}
	if len(documents) == 0 {
		return idx
	}

	// Document frequencies over unique terms per document.
	df := make(map[string]int)
	tokenized := make([][]string, len(documents))
	for i, doc := range documents {
		tokens := tokenize(doc)
		tokenized[i] = tokens
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	// Sorted vocabulary keeps column assignment deterministic.
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	idx.idf = make([]float64, len(terms))
	n := float64(len(documents))
	for i, term := range terms {
		idx.vocabulary[term] = i
		// Smoothed IDF; the +1 terms make zero division impossible.
		idx.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}

	idx.docs = make([][]termWeight, len(documents))
	for i, tokens := range tokenized {
		idx.docs[i] = idx.vectorize(tokens)
	}
	return idx
}

// Score computes the cosine similarity of the query against every document,
// in corpus order. Scores are clamped to [0,1]; a query with no vocabulary
// overlap scores 0 everywhere.
func (idx *Index) Score(query string) []float64 {
	scores := make([]float64, idx.numDocs)
	if idx.numDocs == 0 {
		return scores
	}
	qvec := idx.vectorize(tokenize(query))
	if len(qvec) == 0 {
		return scores
	}

	qmap := make(map[int]float64, len(qvec))
	for _, tw := range qvec {
		qmap[tw.term] = tw.weight
	}
	for i, doc := range idx.docs {
		var dot float64
		for _, tw := range doc {
			if qw, ok := qmap[tw.term]; ok {
				dot += qw * tw.weight
			}
		}
		// Both vectors are unit length; clamp for float noise.
		scores[i] = clamp01(dot)
	}
	return scores
}

// Terms returns the vocabulary size.
func (idx *Index) Terms() int {
	return len(idx.vocabulary)
}

// vectorize produces the sparse L2-normalized tf-idf vector for tokens,
// restricted to in-vocabulary terms.
func (idx *Index) vectorize(tokens []string) []termWeight {
	tf := make(map[int]int)
	total := 0
	for _, tok := range tokens {
		if col, ok := idx.vocabulary[tok]; ok {
			tf[col]++
			total++
		}
	}
	if total == 0 {
		return nil
	}

	vec := make([]termWeight, 0, len(tf))
	var norm float64
	for col, count := range tf {
		w := (float64(count) / float64(total)) * idx.idf[col]
		vec = append(vec, termWeight{term: col, weight: w})
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i].weight /= norm
		}
	}
	// Stable term order within the vector for reproducible iteration.
	sort.Slice(vec, func(i, j int) bool { return vec[i].term < vec[j].term })
	return vec
}

func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, tok := range raw {
		if _, isStop := stopwords[tok]; isStop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

var stopwords = func() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for",
		"to", "of", "in", "on", "at", "by", "with", "as", "is", "are",
		"was", "were", "be", "been", "being", "it", "this", "that",
		"these", "those", "from", "up", "down", "over", "under", "than",
		"so", "such", "into", "about", "between", "through", "during",
		"before", "after", "above", "below", "out", "off", "own", "same",
		"too", "very", "will", "just", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
