package faq

import "strings"

// Entry is a single FAQ document. The Embedding field is optional: it is
// absent until the ingestion path has computed a vector for the entry.
type Entry struct {
	ID       string
	Question string
	Answer   string
	Category string

	// Embedding is the cached dense vector for Question, or nil.
	Embedding []float32
}

// Known FAQ categories. Categories are metadata only; they are never used
// to filter search results.
const (
	CategoryRegistration  = "registration"
	CategoryPlatform      = "platform"
	CategoryAttendance    = "attendance"
	CategoryCertification = "certification"
	CategorySchedule      = "schedule"
	CategoryAssignments   = "assignments"
	CategoryProjects      = "projects"
	CategoryInternship    = "internship"
	CategoryPayment       = "payment"
	CategoryTechnical     = "technical"
	CategoryCommunication = "communication"
	CategoryGeneral       = "general"
)

var knownCategories = map[string]struct{}{
	CategoryRegistration:  {},
	CategoryPlatform:      {},
	CategoryAttendance:    {},
	CategoryCertification: {},
	CategorySchedule:      {},
	CategoryAssignments:   {},
	CategoryProjects:      {},
	CategoryInternship:    {},
	CategoryPayment:       {},
	CategoryTechnical:     {},
	CategoryCommunication: {},
	CategoryGeneral:       {},
}

// NormalizeCategory maps an arbitrary label onto the known category set.
// Unknown or empty labels become CategoryGeneral.
func NormalizeCategory(label string) string {
	c := strings.ToLower(strings.TrimSpace(label))
	if _, ok := knownCategories[c]; ok {
		return c
	}
	return CategoryGeneral
}

// Validate checks that the entry can be stored and indexed.
func (e *Entry) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(e.Question) == "" {
		return ErrEmptyQuestion
	}
	if strings.TrimSpace(e.Answer) == "" {
		return ErrEmptyAnswer
	}
	return nil
}
