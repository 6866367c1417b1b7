package faq

import "errors"

// Search method values reported on results. "embedding" is reserved for a
// lexical-skip policy that does not exist today.
const (
	MethodHybrid    = "hybrid"
	MethodTFIDF     = "tfidf"
	MethodEmbedding = "embedding"
)

// SearchResult is a response-time projection of an entry with its scores.
// It is never persisted.
type SearchResult struct {
	FAQID    string `json:"faq_id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`

	// SimilarityScore is the weighted blend of the two component scores.
	SimilarityScore float64 `json:"similarity_score"`
	TFIDFScore      float64 `json:"tfidf_score"`
	EmbeddingScore  float64 `json:"embedding_score"`

	// SearchMethod records which signals contributed for this entry:
	// "hybrid" when both did, "tfidf" when no embedding was available.
	SearchMethod string `json:"search_method"`
}

// Validation errors for SearchResult construction.
var (
	ErrResultMissingID = errors.New("result faq_id is required")
	ErrScoreOutOfRange = errors.New("score must be between 0 and 1")
	ErrBadSearchMethod = errors.New("unknown search method")
)

// Validate checks score ranges and the method tag.
func (r *SearchResult) Validate() error {
	if r.FAQID == "" {
		return ErrResultMissingID
	}
	for _, s := range []float64{r.SimilarityScore, r.TFIDFScore, r.EmbeddingScore} {
		if s < 0 || s > 1 {
			return ErrScoreOutOfRange
		}
	}
	switch r.SearchMethod {
	case MethodHybrid, MethodTFIDF, MethodEmbedding:
		return nil
	default:
		return ErrBadSearchMethod
	}
}
