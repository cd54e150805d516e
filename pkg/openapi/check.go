package openapi

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/getkin/kin-openapi/openapi3"
)

// Check verifies the preconditions the converter relies on: an OpenAPI 3.x
// document with a title, at least one path, resolvable path items and at
// most one server entry.
func Check(doc *openapi3.T) error {
	if doc == nil {
		return &ValidationError{Reason: "document is empty"}
	}
	v, err := semver.NewVersion(strings.TrimSpace(doc.OpenAPI))
	if err != nil || v.Major() != 3 {
		return &ValidationError{Reason: fmt.Sprintf("only OpenAPI 3.x specifications are supported, got %q", doc.OpenAPI)}
	}
	if doc.Info == nil || strings.TrimSpace(doc.Info.Title) == "" {
		return &ValidationError{Reason: "API title is required"}
	}
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return &ValidationError{Reason: "spec must have at least one path"}
	}
	if len(doc.Servers) > 1 {
		return &ValidationError{Reason: fmt.Sprintf("only one server entry is supported, found %d", len(doc.Servers))}
	}

	resolver := NewResolver(doc)
	for _, path := range SortedPaths(doc) {
		if _, err := resolver.PathItem(doc.Paths.Value(path)); err != nil {
			return &ValidationError{Reason: fmt.Sprintf("path %s", path), Err: err}
		}
	}
	return nil
}

// SortedPaths returns the document's path keys in lexical order
func SortedPaths(doc *openapi3.T) []string {
	if doc.Paths == nil {
		return nil
	}
	paths := make([]string, 0, doc.Paths.Len())
	for p := range doc.Paths.Map() {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
