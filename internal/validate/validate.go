// Package validate checks job submissions before they reach the scheduler.
// The scheduler accepts any name and priority; the server and the shell use
// these rules to turn away bad input.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/me/jobq/pkg/model"
)

// Default priority range.
const (
	DefaultMinPriority = 1
	DefaultMaxPriority = 10
)

var (
	ErrInvalidName     = errors.New("invalid job name")
	ErrInvalidPriority = errors.New("invalid job priority")
)

// Error collects every problem found in one submission. It matches
// ErrInvalidName and/or ErrInvalidPriority with errors.Is.
type Error struct {
	Fields []model.FieldError
	causes []error
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the sentinel errors.
func (e *Error) Unwrap() []error { return e.causes }

func (e *Error) add(cause error, field, msg string) {
	e.causes = append(e.causes, cause)
	e.Fields = append(e.Fields, model.FieldError{Field: field, Message: msg})
}

// Rules bounds the accepted priority range, inclusive.
type Rules struct {
	MinPriority int
	MaxPriority int
}

// DefaultRules returns the 1..10 range.
func DefaultRules() Rules {
	return Rules{MinPriority: DefaultMinPriority, MaxPriority: DefaultMaxPriority}
}

// Name trims name and returns it, or an error if nothing is left.
func Name(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	return name, nil
}

// Priority checks p against the configured range.
func (r Rules) Priority(p int) error {
	if p < r.MinPriority || p > r.MaxPriority {
		return fmt.Errorf("%w: %s", ErrInvalidPriority, r.rangeMessage())
	}
	return nil
}

// Job validates a submission. It returns the trimmed name, or a *Error
// listing every failed field.
func (r Rules) Job(name string, priority int) (string, error) {
	verr := &Error{}
	trimmed, err := Name(name)
	if err != nil {
		verr.add(ErrInvalidName, "name", "name is required")
	}
	if err := r.Priority(priority); err != nil {
		verr.add(ErrInvalidPriority, "priority", r.rangeMessage())
	}
	if len(verr.Fields) > 0 {
		return "", verr
	}
	return trimmed, nil
}

func (r Rules) rangeMessage() string {
	return fmt.Sprintf("priority must be between %d and %d", r.MinPriority, r.MaxPriority)
}
