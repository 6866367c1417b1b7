package faq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"registration", CategoryRegistration},
		{"Registration", CategoryRegistration},
		{"  PAYMENT  ", CategoryPayment},
		{"internship", CategoryInternship},
		{"billing", CategoryGeneral},
		{"", CategoryGeneral},
		{"no-such-category", CategoryGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCategory(tt.label))
		})
	}
}

func TestEntryValidate(t *testing.T) {
	valid := Entry{ID: "x", Question: "q", Answer: "a"}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		entry   Entry
		wantErr error
	}{
		{"missing id", Entry{Question: "q", Answer: "a"}, ErrMissingID},
		{"blank id", Entry{ID: "  ", Question: "q", Answer: "a"}, ErrMissingID},
		{"missing question", Entry{ID: "x", Answer: "a"}, ErrEmptyQuestion},
		{"missing answer", Entry{ID: "x", Question: "q"}, ErrEmptyAnswer},
		{"whitespace answer", Entry{ID: "x", Question: "q", Answer: " \t "}, ErrEmptyAnswer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.entry.Validate(), tt.wantErr)
		})
	}
}
