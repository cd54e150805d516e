package typescript

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/blimu-dev/mcp-gen/pkg/ir"
)

// toolView is the template data for one tool module
type toolView struct {
	Name        string
	Description string
	Method      string
	// URL is a TS template literal for the request URL
	URL        string
	Shape      []shapeEntry
	Query      []assignment
	Headers    []assignment
	BodyFields []assignment
	WholeBody  string
	HasHeaders bool
	OAuth2     bool
}

type shapeEntry struct {
	Key  string
	Expr string
}

type assignment struct {
	Key   string
	Value string
	Fixed bool
}

func newToolView(tool ir.IRTool, oauth2 bool) toolView {
	v := toolView{
		Name:        tool.Name,
		Description: tool.Description,
		Method:      tool.Call.Method,
		URL:         buildPathTemplate(tool.Call),
		OAuth2:      oauth2,
	}
	for _, p := range tool.Properties {
		v.Shape = append(v.Shape, shapeEntry{Key: quoteTSPropertyName(p.Name), Expr: zodExpr(p)})
	}
	v.Query = assignments(tool.Call.Query, tsString)
	v.Headers = assignments(tool.Call.Headers, tsString)
	if body := tool.Call.Body; body != nil {
		v.BodyFields = assignments(body.Fields, quoteTSPropertyName)
		if body.Whole != nil {
			v.WholeBody = sourceExpr(*body.Whole)
		}
	}
	v.HasHeaders = len(v.Headers) > 0 || oauth2
	return v
}

func assignments(slots []ir.IRSlot, key func(string) string) []assignment {
	out := make([]assignment, 0, len(slots))
	for _, s := range slots {
		out = append(out, assignment{
			Key:   key(s.Name),
			Value: sourceExpr(s.Source),
			Fixed: s.Source.IsFixed(),
		})
	}
	return out
}

// sourceExpr renders a value source as a TS expression over the handler's args
func sourceExpr(src ir.IRValueSource) string {
	if src.IsFixed() {
		return tsLiteral(*src.Fixed)
	}
	return argAccess(string(src.Property))
}

func argAccess(name string) string {
	if isIdentifier(name) {
		return "args." + name
	}
	return "args[" + tsString(name) + "]"
}

// zodExpr builds the validator for one property. Non-required properties are
// optional; a default both makes the input optional and supplies the value.
func zodExpr(p ir.IRProperty) string {
	var b strings.Builder
	b.WriteString(zodType(p.Type))
	switch p.Requiredness.Kind {
	case ir.IROptional:
		b.WriteString(".optional()")
	case ir.IRDefaultValue:
		b.WriteString(".default(")
		b.WriteString(tsLiteral(p.Requiredness.Default))
		b.WriteString(")")
	}
	if p.Description != "" {
		b.WriteString(".describe(")
		b.WriteString(tsString(p.Description))
		b.WriteString(")")
	}
	return b.String()
}

func zodType(t ir.IRType) string {
	switch t.Kind {
	case ir.IRKindString:
		return "z.string()"
	case ir.IRKindNumber:
		return "z.number()"
	case ir.IRKindBoolean:
		return "z.boolean()"
	case ir.IRKindArray:
		if t.Item == nil {
			return "z.array(z.unknown())"
		}
		return "z.array(" + zodExpr(*t.Item) + ")"
	case ir.IRKindObject:
		if len(t.Properties) == 0 {
			return "z.object({}).passthrough()"
		}
		parts := make([]string, 0, len(t.Properties))
		for _, p := range t.Properties {
			parts = append(parts, quoteTSPropertyName(p.Name)+": "+zodExpr(p))
		}
		return "z.object({ " + strings.Join(parts, ", ") + " })"
	default:
		return "z.unknown()"
	}
}

// tsString renders s as a double-quoted string literal. Quotes, backslashes,
// newlines and the JS line separators are escaped.
func tsString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

func tsLiteral(v ir.IRValue) string {
	switch v.Kind {
	case ir.IRValueNumber:
		return strconv.FormatFloat(v.Number, 'g', -1, 64)
	case ir.IRValueBoolean:
		return strconv.FormatBool(v.Boolean)
	default:
		return tsString(v.String)
	}
}

// buildPathTemplate converts /items/{itemId} into
// `${API_BASE_URL}/items/${encodeURIComponent(String(args.itemId))}`.
// Placeholders without a path slot are kept verbatim.
func buildPathTemplate(call ir.IRCall) string {
	subs := make(map[string]string, len(call.PathParams))
	for _, s := range call.PathParams {
		subs[s.Name] = sourceExpr(s.Source)
	}

	p := call.Path
	var b strings.Builder
	b.WriteString("`${API_BASE_URL}")
	for i := 0; i < len(p); i++ {
		if p[i] == '{' {
			j := strings.IndexByte(p[i+1:], '}')
			if j >= 0 {
				name := p[i+1 : i+1+j]
				if expr, ok := subs[name]; ok {
					b.WriteString("${encodeURIComponent(String(")
					b.WriteString(expr)
					b.WriteString("))}")
					i += j + 1
					continue
				}
			}
		}
		switch {
		case p[i] == '`' || p[i] == '\\':
			b.WriteByte('\\')
			b.WriteByte(p[i])
		case p[i] == '$' && i+1 < len(p) && p[i+1] == '{':
			b.WriteString("\\$")
		default:
			b.WriteByte(p[i])
		}
	}
	b.WriteString("`")
	return b.String()
}

// quoteTSPropertyName quotes an object key when it is not a valid identifier
func quoteTSPropertyName(name string) string {
	if isIdentifier(name) {
		return name
	}
	return tsString(name)
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, char := range name {
		if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || char == '_' || char == '$' || (i > 0 && char >= '0' && char <= '9')) {
			return false
		}
	}
	return true
}
