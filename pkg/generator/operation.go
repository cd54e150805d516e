package generator

import (
	"fmt"
	"mime"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/blimu-dev/mcp-gen/pkg/ir"
	"github.com/blimu-dev/mcp-gen/pkg/openapi"
)

const jsonMediaType = "application/json"

// Converter turns the operations of one document into IR tools
type Converter struct {
	doc      *openapi3.T
	resolver *openapi.Resolver
	mapper   *TypeMapper
	opts     ConverterOptions
	logger   *zap.Logger
}

// NewConverter creates a converter for doc. A nil logger disables logging.
func NewConverter(doc *openapi3.T, opts ConverterOptions, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	resolver := openapi.NewResolver(doc)
	return &Converter{
		doc:      doc,
		resolver: resolver,
		mapper:   NewTypeMapper(resolver, opts.requiredMatch(), logger),
		opts:     opts,
		logger:   logger,
	}
}

// ConvertOperation converts one operation into a tool. pathParams are the
// parameters declared on the enclosing path item. A nil tool and nil error
// means the tool was skipped by the name length policy.
func (c *Converter) ConvertOperation(method, path string, op *openapi3.Operation, pathParams openapi3.Parameters) (*ir.IRTool, error) {
	name := ToolName(method, path)
	skip, err := checkToolNameLength(name, c.opts)
	if err != nil {
		return nil, err
	}
	if skip {
		c.logger.Debug("skipped tool", zap.String("tool", name), zap.String("reason", "name too long"))
		return nil, nil
	}

	tool := &ir.IRTool{
		Name:        name,
		Description: toolDescription(method, path, op),
		Call: ir.IRCall{
			Method: strings.ToUpper(method),
			Path:   path,
		},
	}
	taken := make(map[string]bool)

	params, err := c.collectParams(op.Parameters, pathParams)
	if err != nil {
		return nil, err
	}
	for _, p := range params {
		if err := c.addParameter(tool, taken, p); err != nil {
			return nil, err
		}
	}
	if op.RequestBody != nil {
		if err := c.addRequestBody(tool, taken, op.RequestBody); err != nil {
			return nil, err
		}
	}

	if err := tool.Validate(); err != nil {
		return nil, err
	}
	return tool, nil
}

// collectParams resolves operation parameters followed by path-item parameters.
// A path-item parameter redeclared by the operation (same name and location) is dropped.
func (c *Converter) collectParams(opParams, pathParams openapi3.Parameters) ([]*openapi3.Parameter, error) {
	var out []*openapi3.Parameter
	declared := make(map[string]bool)
	for _, ref := range opParams {
		p, err := c.resolver.Parameter(ref)
		if err != nil {
			return nil, err
		}
		declared[p.In+":"+p.Name] = true
		out = append(out, p)
	}
	for _, ref := range pathParams {
		p, err := c.resolver.Parameter(ref)
		if err != nil {
			return nil, err
		}
		if declared[p.In+":"+p.Name] {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *Converter) addParameter(tool *ir.IRTool, taken map[string]bool, p *openapi3.Parameter) error {
	var slots *[]ir.IRSlot
	switch p.In {
	case openapi3.ParameterInPath:
		slots = &tool.Call.PathParams
	case openapi3.ParameterInQuery:
		slots = &tool.Call.Query
	case openapi3.ParameterInHeader:
		slots = &tool.Call.Headers
	case openapi3.ParameterInCookie:
		return &UnsupportedError{Kind: "cookie parameter", Detail: p.Name}
	default:
		return &UnsupportedError{Kind: "parameter location", Detail: p.In}
	}

	schemaRef := p.Schema
	if schemaRef == nil && len(p.Content) > 0 {
		mt := findJSONMediaType(p.Content)
		if mt == nil {
			return &UnsupportedError{Kind: "parameter media type", Detail: p.Name + ": " + strings.Join(mediaTypes(p.Content), ", ")}
		}
		schemaRef = mt.Schema
	}

	typ := ir.IRType{Kind: ir.IRKindString}
	var schema *openapi3.Schema
	if schemaRef != nil {
		var err error
		typ, schema, err = c.mapper.Type(schemaRef)
		if err != nil {
			return fmt.Errorf("parameter %s: %w", p.Name, err)
		}
	}

	requiredness := ir.RequiredIf(p.Required)
	if v, ok := defaultValue(schema); ok {
		requiredness = ir.DefaultValue(v)
	}
	description := p.Description
	if description == "" && schema != nil {
		description = schema.Description
	}

	name := UniqueName(taken, SanitizeName(p.Name))
	tool.Properties = append(tool.Properties, ir.IRProperty{
		Name:         name,
		Description:  description,
		Requiredness: requiredness,
		Type:         typ,
	})
	*slots = append(*slots, ir.IRSlot{Name: p.Name, Source: ir.FromProperty(ir.IRPropertyID(name))})
	return nil
}

// addRequestBody flattens a JSON object body into top-level properties, or
// adds a single opaque "body" property when the schema is not an object.
func (c *Converter) addRequestBody(tool *ir.IRTool, taken map[string]bool, ref *openapi3.RequestBodyRef) error {
	body, err := c.resolver.RequestBody(ref)
	if err != nil {
		return err
	}
	if len(body.Content) == 0 {
		return nil
	}
	mt := findJSONMediaType(body.Content)
	if mt == nil {
		return &UnsupportedError{Kind: "request body media type", Detail: strings.Join(mediaTypes(body.Content), ", ")}
	}

	typ := genericObject()
	var schema *openapi3.Schema
	if mt.Schema != nil {
		typ, schema, err = c.mapper.Type(mt.Schema)
		if err != nil {
			return fmt.Errorf("request body: %w", err)
		}
	}

	irBody := &ir.IRBody{}
	if typ.Kind == ir.IRKindObject && len(typ.Properties) > 0 {
		for _, p := range typ.Properties {
			wire := p.Name
			p.Name = UniqueName(taken, SanitizeName(wire))
			tool.Properties = append(tool.Properties, p)
			irBody.Fields = append(irBody.Fields, ir.IRSlot{Name: wire, Source: ir.FromProperty(ir.IRPropertyID(p.Name))})
		}
	} else {
		description := body.Description
		if description == "" && schema != nil {
			description = schema.Description
		}
		name := UniqueName(taken, "body")
		tool.Properties = append(tool.Properties, ir.IRProperty{
			Name:         name,
			Description:  description,
			Requiredness: ir.RequiredIf(body.Required),
			Type:         typ,
		})
		whole := ir.FromProperty(ir.IRPropertyID(name))
		irBody.Whole = &whole
	}

	tool.Call.Headers = append(tool.Call.Headers, ir.IRSlot{
		Name:   "Content-Type",
		Source: ir.Fixed(ir.StringValue(jsonMediaType)),
	})
	tool.Call.Body = irBody
	return nil
}

func findJSONMediaType(content openapi3.Content) *openapi3.MediaType {
	if mt, ok := content[jsonMediaType]; ok {
		return mt
	}
	for _, key := range mediaTypes(content) {
		if base, _, err := mime.ParseMediaType(key); err == nil && base == jsonMediaType {
			return content[key]
		}
	}
	return nil
}

func mediaTypes(content openapi3.Content) []string {
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toolDescription(method, path string, op *openapi3.Operation) string {
	if op.Description != "" {
		return op.Description
	}
	if op.Summary != "" {
		return op.Summary
	}
	return strings.ToUpper(method) + " " + path
}
