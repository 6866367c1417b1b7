package lexical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleDocs = []string{
	"How do I register for the course?",
	"Where can I watch the recorded lectures?",
	"How do I get my certificate after the course?",
}

func TestBuildEmptyCorpus(t *testing.T) {
	idx := Build(nil)

	assert.Equal(t, 0, idx.Terms())
	assert.Empty(t, idx.Score("anything"))
}

func TestScoreExactMatch(t *testing.T) {
	idx := Build(sampleDocs)

	scores := idx.Score(sampleDocs[1])
	require.Len(t, scores, len(sampleDocs))

	assert.InDelta(t, 1.0, scores[1], 1e-9, "exact question should score 1")
	for i, s := range scores {
		if i == 1 {
			continue
		}
		assert.Less(t, s, scores[1], "doc %d should score below the exact match", i)
	}
}

func TestScoreNoOverlap(t *testing.T) {
	idx := Build(sampleDocs)

	scores := idx.Score("zzz qqq xxyy")
	require.Len(t, scores, len(sampleDocs))
	for i, s := range scores {
		assert.Zero(t, s, "doc %d should score 0 without vocabulary overlap", i)
	}
}

func TestScoreStopwordOnlyQuery(t *testing.T) {
	idx := Build(sampleDocs)

	scores := idx.Score("the and of for")
	for i, s := range scores {
		assert.Zero(t, s, "doc %d should score 0 for a stopword-only query", i)
	}
}

func TestScoreCaseInsensitive(t *testing.T) {
	idx := Build(sampleDocs)

	lower := idx.Score("register course")
	upper := idx.Score("REGISTER Course")
	assert.Equal(t, lower, upper)
}

func TestScoreRange(t *testing.T) {
	idx := Build(sampleDocs)

	for _, query := range []string{
		"register", "course certificate", "watch recorded lectures", "register register register",
	} {
		for i, s := range idx.Score(query) {
			assert.GreaterOrEqual(t, s, 0.0, "query %q doc %d", query, i)
			assert.LessOrEqual(t, s, 1.0, "query %q doc %d", query, i)
		}
	}
}

func TestScoreRewardsDistinctiveTerms(t *testing.T) {
	idx := Build(sampleDocs)

	// "certificate" appears in one document only; "course" in two.
	scores := idx.Score("certificate")
	require.Len(t, scores, len(sampleDocs))
	assert.Greater(t, scores[2], scores[0])
	assert.Greater(t, scores[2], scores[1])
}

func TestBuildDeterministic(t *testing.T) {
	a := Build(sampleDocs)
	b := Build(sampleDocs)

	for _, query := range []string{"register", "certificate after the course", "watch lectures"} {
		assert.Equal(t, a.Score(query), b.Score(query), "query %q", query)
	}
}

func TestStopwordsExcludedFromVocabulary(t *testing.T) {
	idx := Build([]string{"the cat and the dog"})

	// "the" and "and" are stopwords; only "cat" and "dog" remain.
	assert.Equal(t, 2, idx.Terms())
}

func TestTokenizeUnicode(t *testing.T) {
	idx := Build([]string{"Как оплатить обучение?", "How do I pay for tuition?"})

	scores := idx.Score("оплатить")
	require.Len(t, scores, 2)
	assert.Greater(t, scores[0], 0.0)
	assert.Zero(t, scores[1])
}
