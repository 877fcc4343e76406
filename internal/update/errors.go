package update

import (
	"errors"
	"strings"
)

var (
	// ErrUpdateSubmitted is returned when attempting to change a submitted
	// update.
	ErrUpdateSubmitted = errors.New("monthly update has already been submitted")

	// ErrStepNotAvailable is returned when a step is not on the path for the
	// update's answers so far.
	ErrStepNotAvailable = errors.New("step is not available for this update")

	// ErrUpdatesIncomplete is returned when a supply chain has actions yet to
	// be submitted for the current period.
	ErrUpdatesIncomplete = errors.New("supply chain has updates yet to be submitted")
)

type (
	// FieldError is a validation failure of a single field.
	FieldError struct {
		Field   string
		Message string
		// Anchor is the ID of the input to link to from the error summary.
		Anchor string
		// URL links to the page holding the field, when it is not on the
		// page showing the error.
		URL string
	}

	// ValidationErrors is the ordered list of field errors for a step.
	ValidationErrors struct {
		Errors []FieldError
	}
)

// Href is where the error summary links to.
func (fe FieldError) Href() string {
	if fe.URL != "" {
		return fe.URL
	}
	return "#" + fe.Anchor
}

func (e *ValidationErrors) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// For returns the error message for the named field, or an empty string if
// the field is valid.
func (e *ValidationErrors) For(field string) string {
	if e == nil {
		return ""
	}
	for _, fe := range e.Errors {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

func (e *ValidationErrors) add(f *Field, msg string) {
	e.Errors = append(e.Errors, FieldError{Field: f.Name, Message: msg, Anchor: f.Anchor()})
}
