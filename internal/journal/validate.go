package journal

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError carries field-level messages for one rejected candidate.
// It never aborts processing of sibling items in a batch.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// Add appends a message for a field.
func (e *ValidationError) Add(field, msg string) {
	e.Fields[field] = append(e.Fields[field], msg)
}

// Empty reports whether no messages were recorded.
func (e *ValidationError) Empty() bool { return len(e.Fields) == 0 }

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("validation failed")
	for _, f := range fields {
		fmt.Fprintf(&b, "; %s: %s", f, strings.Join(e.Fields[f], ", "))
	}
	return b.String()
}

// Candidate is an unvalidated inbound entry as it arrives off the wire.
// UpdatedAt is a pointer so a missing timestamp is distinguishable from
// zero.
type Candidate struct {
	EntryDate string
	Person    *string
	Grace     *string
	Gratitude *string
	UpdatedAt *int64
}

// Validated is a Candidate that passed validation, carrying typed identity
// and content ready for the merge engine.
type Validated struct {
	Date    Date
	Version Version
}

// Validate checks a candidate against the wire contract and the store's
// acceptance policy. minDate is the deployment-configured floor; a zero
// Date disables the floor check. On failure the returned *ValidationError
// lists every offending field.
func (c Candidate) Validate(minDate Date) (Validated, *ValidationError) {
	verr := NewValidationError()

	date, err := ParseDate(c.EntryDate)
	if err != nil {
		verr.Add("entry_date", "The entry date field must match the format Y-m-d.")
	} else if !minDate.IsZero() && date.Before(minDate) {
		verr.Add("entry_date", fmt.Sprintf("The entry date field must be a date after or equal to %s.", minDate))
	}

	if c.UpdatedAt == nil {
		verr.Add("updated_at", "The updated at field is required.")
	} else if *c.UpdatedAt < 0 {
		verr.Add("updated_at", "The updated at field must be at least 0.")
	}

	if !verr.Empty() {
		return Validated{}, verr
	}

	return Validated{
		Date: date,
		Version: Version{
			Person:    c.Person,
			Grace:     c.Grace,
			Gratitude: c.Gratitude,
			UpdatedAt: *c.UpdatedAt,
		},
	}, nil
}
