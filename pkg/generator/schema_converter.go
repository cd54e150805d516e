package generator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/blimu-dev/mcp-gen/pkg/ir"
	"github.com/blimu-dev/mcp-gen/pkg/openapi"
)

// ErrArrayWithoutItems is returned for array schemas that declare no item schema
var ErrArrayWithoutItems = errors.New("array schema has no items")

// TypeMapper converts resolved OpenAPI schemas into IR property types
type TypeMapper struct {
	resolver      *openapi.Resolver
	requiredMatch RequiredMatch
	logger        *zap.Logger
}

// NewTypeMapper creates a TypeMapper. A nil logger disables logging.
func NewTypeMapper(resolver *openapi.Resolver, match RequiredMatch, logger *zap.Logger) *TypeMapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if match == "" {
		match = RequiredByKey
	}
	return &TypeMapper{resolver: resolver, requiredMatch: match, logger: logger}
}

// Property maps the schema at ref to a property named name. required is the
// required list of the enclosing schema, used to decide requiredness.
func (m *TypeMapper) Property(name string, ref *openapi3.SchemaRef, required []string) (ir.IRProperty, error) {
	return m.property(name, ref, required, make(map[string]bool))
}

// Type maps the schema at ref to a property type. The resolved schema is
// returned alongside so callers can read its description and default.
func (m *TypeMapper) Type(ref *openapi3.SchemaRef) (ir.IRType, *openapi3.Schema, error) {
	return m.mapRef(ref, make(map[string]bool))
}

func (m *TypeMapper) property(name string, ref *openapi3.SchemaRef, required []string, stack map[string]bool) (ir.IRProperty, error) {
	typ, schema, err := m.mapRef(ref, stack)
	if err != nil {
		return ir.IRProperty{}, err
	}
	return ir.IRProperty{
		Name:         name,
		Description:  schema.Description,
		Requiredness: m.requiredness(name, schema, required),
		Type:         typ,
	}, nil
}

// requiredness decides Required/Optional/DefaultValue for a schema nested
// under key in a parent whose required list is required.
func (m *TypeMapper) requiredness(key string, schema *openapi3.Schema, required []string) ir.IRRequiredness {
	if v, ok := defaultValue(schema); ok {
		return ir.DefaultValue(v)
	}
	link := key
	if m.requiredMatch == RequiredByTitle {
		link = schema.Title
	}
	return ir.RequiredIf(link != "" && contains(required, link))
}

// mapRef resolves ref and maps it. stack holds the $refs currently being
// mapped on this branch so self-referencing schemas fail instead of recursing forever.
func (m *TypeMapper) mapRef(ref *openapi3.SchemaRef, stack map[string]bool) (ir.IRType, *openapi3.Schema, error) {
	if ref != nil && ref.Ref != "" {
		if stack[ref.Ref] {
			return ir.IRType{}, nil, &openapi.ResolutionError{Kind: "schemas", Ref: ref.Ref, Err: openapi.ErrReferenceCycle}
		}
		stack[ref.Ref] = true
		defer delete(stack, ref.Ref)
	}
	schema, err := m.resolver.Schema(ref)
	if err != nil {
		return ir.IRType{}, nil, err
	}
	typ, err := m.mapSchema(schema, stack)
	if err != nil {
		return ir.IRType{}, nil, err
	}
	return typ, schema, nil
}

func (m *TypeMapper) mapSchema(s *openapi3.Schema, stack map[string]bool) (ir.IRType, error) {
	switch {
	case len(s.OneOf) > 0:
		typ, _, err := m.mapRef(FirstAlternative(s.OneOf), stack)
		return typ, err
	case len(s.AnyOf) > 0:
		typ, _, err := m.mapRef(FirstAlternative(s.AnyOf), stack)
		return typ, err
	case len(s.AllOf) > 0:
		merged, err := StructuralMerge(m.resolver, s.AllOf)
		if err != nil {
			return ir.IRType{}, err
		}
		overlay(merged, s)
		return m.mapObject(merged, stack), nil
	case s.Not != nil:
		return genericObject(), nil
	}

	switch primaryType(s) {
	case openapi3.TypeString:
		return ir.IRType{Kind: ir.IRKindString}, nil
	case openapi3.TypeInteger, openapi3.TypeNumber:
		return ir.IRType{Kind: ir.IRKindNumber}, nil
	case openapi3.TypeBoolean:
		return ir.IRType{Kind: ir.IRKindBoolean}, nil
	case openapi3.TypeArray:
		if s.Items == nil {
			return ir.IRType{}, ErrArrayWithoutItems
		}
		item, err := m.property("item", s.Items, nil, stack)
		if err != nil {
			return ir.IRType{}, fmt.Errorf("array items: %w", err)
		}
		if item.Requiredness.Kind == ir.IROptional {
			item.Requiredness = ir.Required()
		}
		return ir.IRType{Kind: ir.IRKindArray, Item: &item}, nil
	case openapi3.TypeObject:
		return m.mapObject(s, stack), nil
	default:
		return genericObject(), nil
	}
}

// mapObject maps declared properties in key order. A property whose own
// mapping fails is left out.
func (m *TypeMapper) mapObject(s *openapi3.Schema, stack map[string]bool) ir.IRType {
	keys := make([]string, 0, len(s.Properties))
	for k := range s.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	props := make([]ir.IRProperty, 0, len(keys))
	for _, k := range keys {
		p, err := m.property(k, s.Properties[k], s.Required, stack)
		if err != nil {
			m.logger.Debug("omitting property", zap.String("property", k), zap.Error(err))
			continue
		}
		props = append(props, p)
	}
	return ir.IRType{Kind: ir.IRKindObject, Properties: props}
}

// FirstAlternative is the union strategy for oneOf and anyOf: only the first
// listed alternative is mapped.
func FirstAlternative(alternatives openapi3.SchemaRefs) *openapi3.SchemaRef {
	if len(alternatives) == 0 {
		return nil
	}
	return alternatives[0]
}

// StructuralMerge is the intersection strategy for allOf. It merges the
// properties and required lists of every part into one object schema; a key
// declared by a later part overrides the same key from an earlier one.
func StructuralMerge(resolver *openapi.Resolver, parts openapi3.SchemaRefs) (*openapi3.Schema, error) {
	merged := &openapi3.Schema{
		Type:       &openapi3.Types{openapi3.TypeObject},
		Properties: openapi3.Schemas{},
	}
	if err := mergeInto(resolver, merged, parts, make(map[string]bool)); err != nil {
		return nil, err
	}
	return merged, nil
}

func mergeInto(resolver *openapi.Resolver, merged *openapi3.Schema, parts openapi3.SchemaRefs, visited map[string]bool) error {
	for _, part := range parts {
		if err := mergePart(resolver, merged, part, visited); err != nil {
			return err
		}
	}
	return nil
}

func mergePart(resolver *openapi.Resolver, merged *openapi3.Schema, part *openapi3.SchemaRef, visited map[string]bool) error {
	if part != nil && part.Ref != "" {
		if visited[part.Ref] {
			return &openapi.ResolutionError{Kind: "schemas", Ref: part.Ref, Err: openapi.ErrReferenceCycle}
		}
		visited[part.Ref] = true
		defer delete(visited, part.Ref)
	}
	s, err := resolver.Schema(part)
	if err != nil {
		return err
	}
	if len(s.AllOf) > 0 {
		if err := mergeInto(resolver, merged, s.AllOf, visited); err != nil {
			return err
		}
	}
	overlay(merged, s)
	return nil
}

// overlay copies the properties, required names and description of src onto dst
func overlay(dst, src *openapi3.Schema) {
	if dst.Properties == nil {
		dst.Properties = openapi3.Schemas{}
	}
	for k, v := range src.Properties {
		dst.Properties[k] = v
	}
	for _, r := range src.Required {
		if !contains(dst.Required, r) {
			dst.Required = append(dst.Required, r)
		}
	}
	if dst.Description == "" {
		dst.Description = src.Description
	}
}

func genericObject() ir.IRType {
	return ir.IRType{Kind: ir.IRKindObject}
}

// primaryType returns the first non-null declared type, inferring object or
// array from the schema's shape when no type is declared.
func primaryType(s *openapi3.Schema) string {
	for _, t := range s.Type.Slice() {
		if t != openapi3.TypeNull {
			return t
		}
	}
	switch {
	case len(s.Properties) > 0:
		return openapi3.TypeObject
	case s.Items != nil:
		return openapi3.TypeArray
	}
	return ""
}

// defaultValue converts a primitive schema default into an IR literal
func defaultValue(s *openapi3.Schema) (ir.IRValue, bool) {
	if s == nil || s.Default == nil {
		return ir.IRValue{}, false
	}
	kind := primaryType(s)
	if kind == "" {
		switch s.Default.(type) {
		case string:
			kind = openapi3.TypeString
		case bool:
			kind = openapi3.TypeBoolean
		case float32, float64, int, int32, int64, uint, uint32, uint64:
			kind = openapi3.TypeNumber
		}
	}
	switch kind {
	case openapi3.TypeString:
		if v, err := cast.ToStringE(s.Default); err == nil {
			return ir.StringValue(v), true
		}
	case openapi3.TypeInteger, openapi3.TypeNumber:
		if v, err := cast.ToFloat64E(s.Default); err == nil {
			return ir.NumberValue(v), true
		}
	case openapi3.TypeBoolean:
		if v, err := cast.ToBoolE(s.Default); err == nil {
			return ir.BooleanValue(v), true
		}
	}
	return ir.IRValue{}, false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
