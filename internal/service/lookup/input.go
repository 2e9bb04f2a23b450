package lookup

import (
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/wordbook/internal/domain"
)

// MaxWordLength caps the search string accepted from the form layer.
const MaxWordLength = 100

// SearchInput holds the parameters for a lookup.
type SearchInput struct {
	Word string
}

// Validate checks all fields and collects all errors.
func (i SearchInput) Validate() error {
	var errs []domain.FieldError

	word := strings.TrimSpace(i.Word)
	if word == "" {
		errs = append(errs, domain.FieldError{Field: "word", Message: "required"})
	}
	if utf8.RuneCountInString(word) > MaxWordLength {
		errs = append(errs, domain.FieldError{Field: "word", Message: "max 100 characters"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// Normalized returns the word as it is sent to the dictionary.
func (i SearchInput) Normalized() string {
	return strings.TrimSpace(i.Word)
}
