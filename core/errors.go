package core

import (
	"fmt"
	"time"
)

// ErrorCategory labels where in the diagnostic pipeline a failure
// happened. Every category degrades a sub-result; none of them aborts
// a request.
type ErrorCategory string

const (
	// ErrorConfigurationMissing means a backing resource (catalog,
	// credential dir, database) is absent
	ErrorConfigurationMissing ErrorCategory = "configuration_missing"

	// ErrorMalformedPattern means a catalog entry's regex failed to
	// compile. This category names the failure in the taxonomy only;
	// ScanLog skips such entries without reporting them, so no code
	// path constructs an error with it.
	ErrorMalformedPattern ErrorCategory = "malformed_pattern"

	// ErrorCollaboratorUnavailable means an external call failed or
	// timed out
	ErrorCollaboratorUnavailable ErrorCategory = "collaborator_unavailable"

	// ErrorMalformedOutput means a collaborator answered with
	// unparsable data
	ErrorMalformedOutput ErrorCategory = "malformed_output"
)

// rawPayloadLimit bounds how much collaborator output a CollabError
// keeps for diagnosis.
const rawPayloadLimit = 500

// CollabError wraps a collaborator failure with its category and, for
// malformed output, a truncated copy of the raw payload.
type CollabError struct {
	Category    ErrorCategory
	OriginalErr error
	Raw         string
	Timestamp   time.Time
}

func (e CollabError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("[%s] %v (raw: %s)", e.Category, e.OriginalErr, e.Raw)
	}
	return fmt.Sprintf("[%s] %v", e.Category, e.OriginalErr)
}

func (e CollabError) Unwrap() error {
	return e.OriginalErr
}

// NewCollabError wraps err under the given category.
func NewCollabError(category ErrorCategory, err error) CollabError {
	return CollabError{
		Category:    category,
		OriginalErr: err,
		Timestamp:   time.Now().UTC(),
	}
}

// NewMalformedOutputError wraps a parse failure and keeps at most
// rawPayloadLimit bytes of the offending payload.
func NewMalformedOutputError(err error, raw string) CollabError {
	if len(raw) > rawPayloadLimit {
		raw = raw[:rawPayloadLimit]
	}
	return CollabError{
		Category:    ErrorMalformedOutput,
		OriginalErr: err,
		Raw:         raw,
		Timestamp:   time.Now().UTC(),
	}
}
