package openapi

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a $ref names a missing component table or entry
	ErrNotFound = errors.New("reference not found")
	// ErrReferenceCycle is returned when following a $ref chain revisits a reference
	ErrReferenceCycle = errors.New("reference cycle")
)

// ValidationError reports a document that cannot be converted at all
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid spec: %s: %v", e.Reason, e.Err)
	}
	return "invalid spec: " + e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ResolutionError reports a $ref that could not be followed
type ResolutionError struct {
	// Kind is the component table, e.g. "schemas"
	Kind string
	Ref  string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve %s reference %q: %v", e.Kind, e.Ref, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }
