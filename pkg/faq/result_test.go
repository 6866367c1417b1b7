package faq

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchResultValidate(t *testing.T) {
	valid := SearchResult{
		FAQID:           "reg-001",
		SimilarityScore: 0.8,
		TFIDFScore:      0.5,
		EmbeddingScore:  0.9,
		SearchMethod:    MethodHybrid,
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(r *SearchResult)
		wantErr error
	}{
		{"missing id", func(r *SearchResult) { r.FAQID = "" }, ErrResultMissingID},
		{"score above one", func(r *SearchResult) { r.SimilarityScore = 1.2 }, ErrScoreOutOfRange},
		{"negative score", func(r *SearchResult) { r.EmbeddingScore = -0.1 }, ErrScoreOutOfRange},
		{"unknown method", func(r *SearchResult) { r.SearchMethod = "fuzzy" }, ErrBadSearchMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			assert.ErrorIs(t, r.Validate(), tt.wantErr)
		})
	}
}

func TestSearchResultJSONKeys(t *testing.T) {
	r := SearchResult{
		FAQID:           "reg-001",
		Question:        "How do I register?",
		Answer:          "Use the portal.",
		Category:        CategoryRegistration,
		SimilarityScore: 0.87,
		TFIDFScore:      0.6,
		EmbeddingScore:  0.99,
		SearchMethod:    MethodHybrid,
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range []string{
		"faq_id", "question", "answer", "category",
		"similarity_score", "tfidf_score", "embedding_score", "search_method",
	} {
		assert.Contains(t, decoded, key)
	}
	assert.Equal(t, "hybrid", decoded["search_method"])
}
