package generator

import (
	"errors"
	"fmt"
)

// ErrUnsupported is matched by every UnsupportedError
var ErrUnsupported = errors.New("unsupported construct")

// UnsupportedError reports an OpenAPI construct the converter refuses to translate
type UnsupportedError struct {
	// Kind names the construct, e.g. "cookie parameter"
	Kind   string
	Detail string
}

func (e *UnsupportedError) Error() string {
	if e.Detail == "" {
		return "unsupported " + e.Kind
	}
	return fmt.Sprintf("unsupported %s: %s", e.Kind, e.Detail)
}

func (e *UnsupportedError) Is(target error) bool { return target == ErrUnsupported }

// PolicyError reports a derived tool name longer than the configured maximum
type PolicyError struct {
	Tool   string
	Length int
	Max    int
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("tool name %q is %d characters long, exceeding the maximum of %d", e.Tool, e.Length, e.Max)
}
