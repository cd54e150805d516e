package generator

import (
	"regexp"
	"strings"

	"github.com/blimu-dev/mcp-gen/pkg/ir"
)

// DefaultMaxToolNameLength is used when ConverterOptions.MaxToolNameLength is zero
const DefaultMaxToolNameLength = 80

// SupportedMethods lists the HTTP methods converted into tools, in conversion order
var SupportedMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH"}

// RequiredMatch selects how a nested schema is linked to its parent's required list
type RequiredMatch string

const (
	// RequiredByKey marks a property required when its key is in the parent's required list
	RequiredByKey RequiredMatch = "key"
	// RequiredByTitle matches the property's own schema title against the parent's
	// required list. Schemas without a title are then always optional.
	RequiredByTitle RequiredMatch = "title"
)

// ConverterOptions controls which operations become tools and how they are named.
// It is passed by value and never modified by the converter.
type ConverterOptions struct {
	// Name overrides the server name derived from info.title
	Name string
	// IncludePaths restricts conversion to paths matching the pattern
	IncludePaths *regexp.Regexp
	// IncludeMethods restricts conversion to these HTTP methods (case-insensitive)
	IncludeMethods    []string
	MaxToolNameLength int
	// SkipLongToolNames skips tools whose name is too long instead of failing
	SkipLongToolNames bool
	// OAuth2 takes precedence over any flow found in the document's security schemes
	OAuth2        *ir.IROAuth2Flow
	RequiredMatch RequiredMatch
}

func (o ConverterOptions) maxToolNameLength() int {
	if o.MaxToolNameLength <= 0 {
		return DefaultMaxToolNameLength
	}
	return o.MaxToolNameLength
}

func (o ConverterOptions) requiredMatch() RequiredMatch {
	if o.RequiredMatch == "" {
		return RequiredByKey
	}
	return o.RequiredMatch
}

func (o ConverterOptions) includesPath(path string) bool {
	return o.IncludePaths == nil || o.IncludePaths.MatchString(path)
}

func (o ConverterOptions) includesMethod(method string) bool {
	if len(o.IncludeMethods) == 0 {
		return true
	}
	for _, m := range o.IncludeMethods {
		if strings.EqualFold(strings.TrimSpace(m), method) {
			return true
		}
	}
	return false
}
