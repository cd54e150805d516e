package openapi

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const (
	schemasPrefix         = "#/components/schemas/"
	parametersPrefix      = "#/components/parameters/"
	requestBodiesPrefix   = "#/components/requestBodies/"
	securitySchemesPrefix = "#/components/securitySchemes/"
	pathsPrefix           = "#/paths/"
)

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// Resolver follows local $ref chains through a document's component tables.
// References the loader already inlined from other files are returned as-is.
type Resolver struct {
	doc *openapi3.T
}

// NewResolver creates a resolver bound to doc
func NewResolver(doc *openapi3.T) *Resolver {
	return &Resolver{doc: doc}
}

// Schema resolves a schema reference
func (r *Resolver) Schema(ref *openapi3.SchemaRef) (*openapi3.Schema, error) {
	if ref == nil {
		return nil, &ResolutionError{Kind: "schemas", Err: ErrNotFound}
	}
	return follow("schemas", schemasPrefix, ref.Ref, ref.Value, func(name string) (string, *openapi3.Schema, bool) {
		if r.doc.Components == nil {
			return "", nil, false
		}
		entry, ok := r.doc.Components.Schemas[name]
		if !ok || entry == nil {
			return "", nil, false
		}
		return entry.Ref, entry.Value, true
	})
}

// Parameter resolves a parameter reference
func (r *Resolver) Parameter(ref *openapi3.ParameterRef) (*openapi3.Parameter, error) {
	if ref == nil {
		return nil, &ResolutionError{Kind: "parameters", Err: ErrNotFound}
	}
	return follow("parameters", parametersPrefix, ref.Ref, ref.Value, func(name string) (string, *openapi3.Parameter, bool) {
		if r.doc.Components == nil {
			return "", nil, false
		}
		entry, ok := r.doc.Components.Parameters[name]
		if !ok || entry == nil {
			return "", nil, false
		}
		return entry.Ref, entry.Value, true
	})
}

// RequestBody resolves a request body reference
func (r *Resolver) RequestBody(ref *openapi3.RequestBodyRef) (*openapi3.RequestBody, error) {
	if ref == nil {
		return nil, &ResolutionError{Kind: "requestBodies", Err: ErrNotFound}
	}
	return follow("requestBodies", requestBodiesPrefix, ref.Ref, ref.Value, func(name string) (string, *openapi3.RequestBody, bool) {
		if r.doc.Components == nil {
			return "", nil, false
		}
		entry, ok := r.doc.Components.RequestBodies[name]
		if !ok || entry == nil {
			return "", nil, false
		}
		return entry.Ref, entry.Value, true
	})
}

// SecurityScheme resolves a security scheme reference
func (r *Resolver) SecurityScheme(ref *openapi3.SecuritySchemeRef) (*openapi3.SecurityScheme, error) {
	if ref == nil {
		return nil, &ResolutionError{Kind: "securitySchemes", Err: ErrNotFound}
	}
	return follow("securitySchemes", securitySchemesPrefix, ref.Ref, ref.Value, func(name string) (string, *openapi3.SecurityScheme, bool) {
		if r.doc.Components == nil {
			return "", nil, false
		}
		entry, ok := r.doc.Components.SecuritySchemes[name]
		if !ok || entry == nil {
			return "", nil, false
		}
		return entry.Ref, entry.Value, true
	})
}

// PathItem resolves a path item whose $ref points at another entry of the
// document's paths object.
func (r *Resolver) PathItem(item *openapi3.PathItem) (*openapi3.PathItem, error) {
	if item == nil {
		return nil, &ResolutionError{Kind: "paths", Err: ErrNotFound}
	}
	if item.Ref == "" {
		return item, nil
	}
	var loaded *openapi3.PathItem
	if len(item.Operations()) > 0 {
		loaded = item
	}
	return follow("paths", pathsPrefix, item.Ref, loaded, func(name string) (string, *openapi3.PathItem, bool) {
		if r.doc.Paths == nil {
			return "", nil, false
		}
		entry := r.doc.Paths.Value(name)
		if entry == nil {
			return "", nil, false
		}
		return entry.Ref, entry, true
	})
}

// follow walks a reference chain until it reaches an inline value. lookup
// returns the table entry for a component name as (its own $ref, its value).
func follow[T any](kind, prefix, ref string, value *T, lookup func(name string) (string, *T, bool)) (*T, error) {
	visited := make(map[string]bool)
	for ref != "" {
		if visited[ref] {
			return nil, &ResolutionError{Kind: kind, Ref: ref, Err: ErrReferenceCycle}
		}
		visited[ref] = true

		name, local := componentName(ref, prefix)
		if !local {
			if value != nil {
				return value, nil
			}
			return nil, &ResolutionError{Kind: kind, Ref: ref, Err: ErrNotFound}
		}
		next, nextValue, found := lookup(name)
		if !found {
			return nil, &ResolutionError{Kind: kind, Ref: ref, Err: ErrNotFound}
		}
		ref, value = next, nextValue
	}
	if value == nil {
		return nil, &ResolutionError{Kind: kind, Err: ErrNotFound}
	}
	return value, nil
}

func componentName(ref, prefix string) (string, bool) {
	if !strings.HasPrefix(ref, prefix) {
		return "", false
	}
	return pointerUnescaper.Replace(strings.TrimPrefix(ref, prefix)), true
}
