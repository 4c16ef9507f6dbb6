package leads

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyBody is returned when the request carried no payload
	ErrEmptyBody = errors.New("leads: empty request body")

	// ErrRecordNotFound is returned when an archived submission is missing
	ErrRecordNotFound = errors.New("leads: record not found")
)

// FieldError describes one violated constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violated constraint of a submission.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "leads: validation failed"
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "leads: validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether a violation was recorded for field.
func (e *ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// ParseError means the body was not a JSON object at all.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("leads: parse request body: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
