package ir

import (
	"fmt"
	"sort"
)

// IRServer is the intermediate representation of a whole OpenAPI document:
// one server exposing one tool per converted operation.
type IRServer struct {
	Name        string
	Version     string
	Description string
	BaseURL     string
	// OAuth2 is set when an authorization-code flow was configured or discovered
	OAuth2 *IROAuth2Flow
	Tools  []IRTool
}

// IROAuth2Flow describes an OAuth2 authorization-code flow
type IROAuth2Flow struct {
	AuthorizationURL string
	TokenURL         string
	RefreshURL       string
}

// IRTool is one invocable unit derived from one API operation
type IRTool struct {
	Name        string
	Description string
	Properties  []IRProperty
	Call        IRCall
}

// IRPropertyID names a top-level property of a tool
type IRPropertyID string

// IRRequirednessKind enumerates how a property must be supplied
type IRRequirednessKind string

const (
	IRRequired     IRRequirednessKind = "required"
	IROptional     IRRequirednessKind = "optional"
	IRDefaultValue IRRequirednessKind = "default"
)

// IRRequiredness is Required, Optional, or DefaultValue(Default)
type IRRequiredness struct {
	Kind IRRequirednessKind
	// Default is only meaningful when Kind is IRDefaultValue
	Default IRValue
}

// Required returns a Required requiredness
func Required() IRRequiredness { return IRRequiredness{Kind: IRRequired} }

// Optional returns an Optional requiredness
func Optional() IRRequiredness { return IRRequiredness{Kind: IROptional} }

// DefaultValue returns a requiredness carrying a default literal
func DefaultValue(v IRValue) IRRequiredness {
	return IRRequiredness{Kind: IRDefaultValue, Default: v}
}

// RequiredIf returns Required when required is true, Optional otherwise
func RequiredIf(required bool) IRRequiredness {
	if required {
		return Required()
	}
	return Optional()
}

// IRTypeKind enumerates the property type variants
type IRTypeKind string

const (
	IRKindString  IRTypeKind = "string"
	IRKindNumber  IRTypeKind = "number"
	IRKindBoolean IRTypeKind = "boolean"
	IRKindArray   IRTypeKind = "array"
	IRKindObject  IRTypeKind = "object"
)

// IRType is a tagged union over the property type variants.
// Item is set for arrays, Properties (in order) for objects.
type IRType struct {
	Kind       IRTypeKind
	Item       *IRProperty
	Properties []IRProperty
}

// IRProperty is one named input field
type IRProperty struct {
	Name         string
	Description  string
	Requiredness IRRequiredness
	Type         IRType
}

// IsRequired reports whether the property must be supplied by the caller
func (p IRProperty) IsRequired() bool {
	return p.Requiredness.Kind == IRRequired
}

// IRValueKind enumerates literal kinds
type IRValueKind string

const (
	IRValueString  IRValueKind = "string"
	IRValueNumber  IRValueKind = "number"
	IRValueBoolean IRValueKind = "boolean"
)

// IRValue is a String, Number or Boolean literal
type IRValue struct {
	Kind    IRValueKind
	String  string
	Number  float64
	Boolean bool
}

// StringValue builds a string literal
func StringValue(s string) IRValue { return IRValue{Kind: IRValueString, String: s} }

// NumberValue builds a number literal
func NumberValue(f float64) IRValue { return IRValue{Kind: IRValueNumber, Number: f} }

// BooleanValue builds a boolean literal
func BooleanValue(b bool) IRValue { return IRValue{Kind: IRValueBoolean, Boolean: b} }

// Any returns the literal as a plain Go value
func (v IRValue) Any() any {
	switch v.Kind {
	case IRValueNumber:
		return v.Number
	case IRValueBoolean:
		return v.Boolean
	default:
		return v.String
	}
}

// IRValueSource is either Fixed(value) or Property(id)
type IRValueSource struct {
	Fixed    *IRValue
	Property IRPropertyID
}

// Fixed returns a source that bakes v into the generated code
func Fixed(v IRValue) IRValueSource { return IRValueSource{Fixed: &v} }

// FromProperty returns a source read from validated tool input at call time
func FromProperty(id IRPropertyID) IRValueSource { return IRValueSource{Property: id} }

// IsFixed reports whether the source is a literal
func (s IRValueSource) IsFixed() bool { return s.Fixed != nil }

// IRSlot binds a wire-level name to a value source
type IRSlot struct {
	Name   string
	Source IRValueSource
}

// IRBody is the body slot of a call. Fields is used when the JSON body
// object was flattened into top-level properties; otherwise Whole carries
// the single opaque body property.
type IRBody struct {
	Fields []IRSlot
	Whole  *IRValueSource
}

// IRCall describes the outbound HTTP request of a tool
type IRCall struct {
	Method     string
	Path       string
	PathParams []IRSlot
	Query      []IRSlot
	Headers    []IRSlot
	Body       *IRBody
}

// References returns every property id the call reads, in slot order
func (c IRCall) References() []IRPropertyID {
	var ids []IRPropertyID
	collect := func(slots []IRSlot) {
		for _, s := range slots {
			if !s.Source.IsFixed() {
				ids = append(ids, s.Source.Property)
			}
		}
	}
	collect(c.PathParams)
	collect(c.Query)
	collect(c.Headers)
	if c.Body != nil {
		collect(c.Body.Fields)
		if c.Body.Whole != nil && !c.Body.Whole.IsFixed() {
			ids = append(ids, c.Body.Whole.Property)
		}
	}
	return ids
}

// Validate checks that property names are unique and that every property
// referenced by the call exists on the tool.
func (t IRTool) Validate() error {
	seen := make(map[string]bool, len(t.Properties))
	for _, p := range t.Properties {
		if seen[p.Name] {
			return fmt.Errorf("tool %s: duplicate property %q", t.Name, p.Name)
		}
		seen[p.Name] = true
	}
	for _, id := range t.Call.References() {
		if !seen[string(id)] {
			return fmt.Errorf("tool %s: call references unknown property %q", t.Name, id)
		}
	}
	return nil
}

// InputSchema renders the tool's properties as a JSON schema object
func (t IRTool) InputSchema() map[string]any {
	schema := objectSchema(t.Properties)
	if t.Description != "" {
		schema["description"] = t.Description
	}
	return schema
}

func objectSchema(props []IRProperty) map[string]any {
	properties := make(map[string]any, len(props))
	required := []string{}
	for _, p := range props {
		properties[p.Name] = propertySchema(p)
		if p.IsRequired() {
			required = append(required, p.Name)
		}
	}
	sort.Strings(required)
	out := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

func propertySchema(p IRProperty) map[string]any {
	var out map[string]any
	switch p.Type.Kind {
	case IRKindArray:
		out = map[string]any{"type": "array"}
		if p.Type.Item != nil {
			out["items"] = propertySchema(*p.Type.Item)
		}
	case IRKindObject:
		out = objectSchema(p.Type.Properties)
	default:
		out = map[string]any{"type": string(p.Type.Kind)}
	}
	if p.Description != "" {
		out["description"] = p.Description
	}
	if p.Requiredness.Kind == IRDefaultValue {
		out["default"] = p.Requiredness.Default.Any()
	}
	return out
}

// IRFile is one rendered output unit, addressed relative to the project root
type IRFile struct {
	Path    string
	Content string
}
