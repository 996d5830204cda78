package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrConverterRequired is returned when a conversion service is not provided.
	ErrConverterRequired = errors.New("converter required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrInvalidMaxAttempts is returned when a retry policy is configured
	// with a non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than zero")
)

// VerdictError reports that verification ran successfully and judged the
// rendered document a poor match for its source. It is distinct from the
// verification service itself failing.
type VerdictError struct {
	Path   string
	Fields map[string]any
}

func (e *VerdictError) Error() string {
	return fmt.Sprintf("rendering of %s does not match source", e.Path)
}
