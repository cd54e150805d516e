package generator

import (
	"errors"
	"regexp"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/mcp-gen/pkg/generator/typescript"
	"github.com/blimu-dev/mcp-gen/pkg/ir"
	"github.com/blimu-dev/mcp-gen/pkg/openapi"
)

func TestToolName(t *testing.T) {
	tests := []struct {
		method, path, expected string
	}{
		{"GET", "/users/{id}", "get_users_id"},
		{"POST", "/users", "post_users"},
		{"DELETE", "/items/{itemId}", "delete_items_itemid"},
		{"patch", "/v1/some-thing/{a_b}/", "patch_v1_some_thing_a_b"},
		{"GET", "/", "get"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ToolName(tt.method, tt.path), "%s %s", tt.method, tt.path)
	}
}

func TestUniqueName(t *testing.T) {
	taken := map[string]bool{}
	assert.Equal(t, "x", UniqueName(taken, "x"))
	assert.Equal(t, "x_2", UniqueName(taken, "x"))
	assert.Equal(t, "x_3", UniqueName(taken, "x"))
	assert.Equal(t, "y", UniqueName(taken, "y"))
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "x_id", SanitizeName("x-id"))
	assert.Equal(t, "itemId", SanitizeName("itemId"))
	assert.Equal(t, "_", SanitizeName(""))
	assert.Equal(t, "preco", SanitizeName("preço"))
}

func TestConvertItemsEndToEnd(t *testing.T) {
	doc := loadDoc(t, itemsSpec)
	server, err := NewService().Convert(doc, ConverterOptions{})
	require.NoError(t, err)

	assert.Equal(t, "items-api", server.Name)
	assert.Equal(t, "1.2", server.Version)
	assert.Equal(t, "Manage items", server.Description)
	assert.Equal(t, "https://eu.example.com/v1", server.BaseURL)
	assert.Nil(t, server.OAuth2)
	require.Len(t, server.Tools, 2)

	get := server.Tools[0]
	assert.Equal(t, "get_items_itemid", get.Name)
	assert.Equal(t, "Fetch an item", get.Description)
	assert.Equal(t, "GET", get.Call.Method)
	assert.Equal(t, "/items/{itemId}", get.Call.Path)
	require.Len(t, get.Properties, 1)
	assert.Equal(t, "itemId", get.Properties[0].Name)
	assert.True(t, get.Properties[0].IsRequired())
	assert.Equal(t, ir.IRKindString, get.Properties[0].Type.Kind)
	assert.Equal(t, []ir.IRSlot{{Name: "itemId", Source: ir.FromProperty("itemId")}}, get.Call.PathParams)
	assert.Nil(t, get.Call.Body)

	post := server.Tools[1]
	assert.Equal(t, "post_items_itemid", post.Name)
	assert.Equal(t, "Create an item", post.Description)
	require.Len(t, post.Properties, 2)
	assert.Equal(t, "name", post.Properties[0].Name)
	assert.Equal(t, ir.IRKindString, post.Properties[0].Type.Kind)
	assert.True(t, post.Properties[0].IsRequired())
	assert.Equal(t, "qty", post.Properties[1].Name)
	assert.Equal(t, ir.IRKindNumber, post.Properties[1].Type.Kind)
	assert.True(t, post.Properties[1].IsRequired())

	require.NotNil(t, post.Call.Body)
	assert.Nil(t, post.Call.Body.Whole)
	assert.Equal(t, []ir.IRSlot{
		{Name: "name", Source: ir.FromProperty("name")},
		{Name: "qty", Source: ir.FromProperty("qty")},
	}, post.Call.Body.Fields)
	require.Len(t, post.Call.Headers, 1)
	assert.Equal(t, "Content-Type", post.Call.Headers[0].Name)
	require.True(t, post.Call.Headers[0].Source.IsFixed())
	assert.Equal(t, ir.StringValue("application/json"), *post.Call.Headers[0].Source.Fixed)
}

func TestConvertReferencesResolve(t *testing.T) {
	doc := loadDoc(t, itemsSpec)
	server, err := NewService().Convert(doc, ConverterOptions{})
	require.NoError(t, err)
	for _, tool := range server.Tools {
		names := make(map[string]bool, len(tool.Properties))
		for _, p := range tool.Properties {
			names[p.Name] = true
		}
		for _, id := range tool.Call.References() {
			assert.True(t, names[string(id)], "tool %s references unknown property %s", tool.Name, id)
		}
	}
}

func TestParameterRequiredness(t *testing.T) {
	withDefault := openapi3.NewIntegerSchema()
	withDefault.Default = 5
	op := getOp(
		openapi3.NewQueryParameter("a").WithRequired(true).WithSchema(openapi3.NewStringSchema()),
		openapi3.NewQueryParameter("b").WithSchema(openapi3.NewStringSchema()),
		openapi3.NewQueryParameter("c").WithRequired(true).WithSchema(withDefault),
		openapi3.NewHeaderParameter("X-Trace"),
	)
	doc := docWithPaths(map[string]*openapi3.PathItem{"/search": {Get: op}})

	tool, err := NewConverter(doc, ConverterOptions{}, nil).ConvertOperation("GET", "/search", op, nil)
	require.NoError(t, err)
	require.Len(t, tool.Properties, 4)

	assert.Equal(t, ir.Required(), tool.Properties[0].Requiredness)
	assert.Equal(t, ir.Optional(), tool.Properties[1].Requiredness)
	assert.Equal(t, ir.DefaultValue(ir.NumberValue(5)), tool.Properties[2].Requiredness)

	header := tool.Properties[3]
	assert.Equal(t, "X_Trace", header.Name)
	assert.Equal(t, ir.IRKindString, header.Type.Kind)
	assert.Equal(t, []ir.IRSlot{{Name: "X-Trace", Source: ir.FromProperty("X_Trace")}}, tool.Call.Headers)
	assert.Len(t, tool.Call.Query, 3)
}

func TestPropertyNameCollision(t *testing.T) {
	op := getOp(
		openapi3.NewQueryParameter("x-id").WithSchema(openapi3.NewStringSchema()),
		openapi3.NewQueryParameter("x_id").WithSchema(openapi3.NewStringSchema()),
	)
	doc := docWithPaths(map[string]*openapi3.PathItem{"/things": {Get: op}})

	tool, err := NewConverter(doc, ConverterOptions{}, nil).ConvertOperation("GET", "/things", op, nil)
	require.NoError(t, err)
	require.Len(t, tool.Properties, 2)
	assert.Equal(t, "x_id", tool.Properties[0].Name)
	assert.Equal(t, "x_id_2", tool.Properties[1].Name)
	assert.Equal(t, []ir.IRSlot{
		{Name: "x-id", Source: ir.FromProperty("x_id")},
		{Name: "x_id", Source: ir.FromProperty("x_id_2")},
	}, tool.Call.Query)
}

func TestPathItemParametersOverridden(t *testing.T) {
	op := getOp(openapi3.NewPathParameter("id").WithSchema(openapi3.NewIntegerSchema()))
	item := &openapi3.PathItem{
		Get: op,
		Parameters: openapi3.Parameters{
			{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewStringSchema())},
			{Value: openapi3.NewQueryParameter("verbose").WithSchema(openapi3.NewBoolSchema())},
		},
	}
	doc := docWithPaths(map[string]*openapi3.PathItem{"/things/{id}": item})

	tool, err := NewConverter(doc, ConverterOptions{}, nil).ConvertOperation("GET", "/things/{id}", op, item.Parameters)
	require.NoError(t, err)
	require.Len(t, tool.Properties, 2)
	assert.Equal(t, "id", tool.Properties[0].Name)
	assert.Equal(t, ir.IRKindNumber, tool.Properties[0].Type.Kind)
	assert.Equal(t, "verbose", tool.Properties[1].Name)
	assert.Equal(t, ir.IRKindBoolean, tool.Properties[1].Type.Kind)
}

func TestUnsupportedConstructs(t *testing.T) {
	cookie := getOp(openapi3.NewCookieParameter("session").WithSchema(openapi3.NewStringSchema()))

	textParam := openapi3.NewQueryParameter("filter")
	textParam.Content = openapi3.Content{"text/plain": openapi3.NewMediaType().WithSchema(openapi3.NewStringSchema())}
	textQuery := getOp(textParam)

	form := openapi3.NewOperation()
	form.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithFormDataSchema(openapi3.NewObjectSchema())}

	tests := []struct {
		name string
		op   *openapi3.Operation
	}{
		{name: "cookie parameter", op: cookie},
		{name: "form body", op: form},
		{name: "text parameter content", op: textQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := docWithPaths(map[string]*openapi3.PathItem{"/x": {Post: tt.op}})
			_, err := NewConverter(doc, ConverterOptions{}, nil).ConvertOperation("POST", "/x", tt.op, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupported), "expected ErrUnsupported, got %v", err)
		})
	}
}

func TestParameterJSONContent(t *testing.T) {
	param := openapi3.NewQueryParameter("filter")
	param.Content = openapi3.Content{
		"application/json": openapi3.NewMediaType().WithSchema(openapi3.NewObjectSchema().WithProperty("owner", openapi3.NewStringSchema())),
	}
	op := getOp(param)
	doc := docWithPaths(map[string]*openapi3.PathItem{"/pets": {Get: op}})

	tool, err := NewConverter(doc, ConverterOptions{}, nil).ConvertOperation("GET", "/pets", op, nil)
	require.NoError(t, err)
	require.Len(t, tool.Properties, 1)
	assert.Equal(t, "filter", tool.Properties[0].Name)
	assert.Equal(t, ir.IRKindObject, tool.Properties[0].Type.Kind)
}

func TestJSONMediaTypeWithParameters(t *testing.T) {
	op := openapi3.NewOperation()
	op.RequestBody = &openapi3.RequestBodyRef{Value: &openapi3.RequestBody{
		Content: openapi3.Content{
			"application/json; charset=utf-8": openapi3.NewMediaType().WithSchema(openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())),
		},
	}}
	doc := docWithPaths(map[string]*openapi3.PathItem{"/tags": {Put: op}})

	tool, err := NewConverter(doc, ConverterOptions{}, nil).ConvertOperation("PUT", "/tags", op, nil)
	require.NoError(t, err)
	require.Len(t, tool.Properties, 1)
	body := tool.Properties[0]
	assert.Equal(t, "body", body.Name)
	assert.Equal(t, ir.IRKindArray, body.Type.Kind)
	assert.Equal(t, ir.Optional(), body.Requiredness)
	require.NotNil(t, tool.Call.Body)
	require.NotNil(t, tool.Call.Body.Whole)
	assert.Equal(t, ir.IRPropertyID("body"), tool.Call.Body.Whole.Property)
}

func TestToolNameLengthPolicy(t *testing.T) {
	doc := docWithPaths(map[string]*openapi3.PathItem{
		"/users/{id}": {Get: openapi3.NewOperation()},
		"/users/idx":  {Get: openapi3.NewOperation()},
	})

	// get_users_id is exactly 12 characters
	_, err := NewService().Convert(doc, ConverterOptions{MaxToolNameLength: 12})
	require.Error(t, err)
	var policyErr *PolicyError
	require.True(t, errors.As(err, &policyErr))
	assert.Equal(t, "get_users_idx", policyErr.Tool)
	assert.Equal(t, 13, policyErr.Length)
	assert.Equal(t, 12, policyErr.Max)

	server, err := NewService().Convert(doc, ConverterOptions{MaxToolNameLength: 12, SkipLongToolNames: true})
	require.NoError(t, err)
	require.Len(t, server.Tools, 1)
	assert.Equal(t, "get_users_id", server.Tools[0].Name)

	server, err = NewService().Convert(doc, ConverterOptions{})
	require.NoError(t, err)
	assert.Len(t, server.Tools, 2)
}

func TestToolNameCollision(t *testing.T) {
	doc := docWithPaths(map[string]*openapi3.PathItem{
		"/a-b": {Get: openapi3.NewOperation()},
		"/a_b": {Get: openapi3.NewOperation()},
	})
	server, err := NewService().Convert(doc, ConverterOptions{})
	require.NoError(t, err)
	require.Len(t, server.Tools, 2)
	assert.Equal(t, "get_a_b", server.Tools[0].Name)
	assert.Equal(t, "/a-b", server.Tools[0].Call.Path)
	assert.Equal(t, "get_a_b_2", server.Tools[1].Name)
	assert.Equal(t, "/a_b", server.Tools[1].Call.Path)
}

func TestInclusionFilters(t *testing.T) {
	doc := loadDoc(t, itemsSpec)

	server, err := NewService().Convert(doc, ConverterOptions{IncludeMethods: []string{"post"}})
	require.NoError(t, err)
	require.Len(t, server.Tools, 1)
	assert.Equal(t, "post_items_itemid", server.Tools[0].Name)

	server, err = NewService().Convert(doc, ConverterOptions{IncludePaths: regexp.MustCompile(`^/users`)})
	require.NoError(t, err)
	assert.Empty(t, server.Tools)
}

func TestOAuth2Resolution(t *testing.T) {
	spec := itemsSpec + `
components:
  securitySchemes:
    apiKey:
      type: apiKey
      in: header
      name: X-Key
    oauth:
      type: oauth2
      flows:
        authorizationCode:
          authorizationUrl: https://auth.example.com/authorize
          tokenUrl: https://auth.example.com/token
          scopes: {}
`
	doc := loadDoc(t, spec)

	server, err := NewService().Convert(doc, ConverterOptions{})
	require.NoError(t, err)
	require.NotNil(t, server.OAuth2)
	assert.Equal(t, "https://auth.example.com/authorize", server.OAuth2.AuthorizationURL)
	assert.Equal(t, "https://auth.example.com/token", server.OAuth2.TokenURL)
	assert.Empty(t, server.OAuth2.RefreshURL)

	override := &ir.IROAuth2Flow{
		AuthorizationURL: "https://idp.example.com/a",
		TokenURL:         "https://idp.example.com/t",
		RefreshURL:       "https://idp.example.com/r",
	}
	server, err = NewService().Convert(doc, ConverterOptions{OAuth2: override})
	require.NoError(t, err)
	assert.Equal(t, override, server.OAuth2)
	assert.NotSame(t, override, server.OAuth2)

	files, err := NewService().Render("typescript", *server)
	require.NoError(t, err)
	var constants string
	for _, f := range files {
		if f.Path == typescript.ConstantsPath {
			constants = f.Content
		}
	}
	assert.Contains(t, constants, `export const OAUTH_AUTHORIZATION_URL = "https://idp.example.com/a";`)
	assert.Contains(t, constants, `export const OAUTH_TOKEN_URL = "https://idp.example.com/t";`)
	assert.NotContains(t, constants, "auth.example.com")
}

func TestConvertRejectsInvalidDocuments(t *testing.T) {
	doc := loadDoc(t, itemsSpec)
	doc.Servers = append(doc.Servers, &openapi3.Server{URL: "https://other.example.com"})

	_, err := NewService().Convert(doc, ConverterOptions{})
	var validationErr *openapi.ValidationError
	require.True(t, errors.As(err, &validationErr), "expected ValidationError, got %v", err)
	assert.Contains(t, err.Error(), "only one server entry is supported")

	_, err = NewConverter(doc, ConverterOptions{}, nil).Convert()
	require.True(t, errors.As(err, &validationErr))
}

func TestConvertDeterministic(t *testing.T) {
	first, err := NewService().Convert(loadDoc(t, itemsSpec), ConverterOptions{})
	require.NoError(t, err)
	second, err := NewService().Convert(loadDoc(t, itemsSpec), ConverterOptions{})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	a, err := NewService().Render("typescript", *first)
	require.NoError(t, err)
	b, err := NewService().Render("", *second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRenderUnknownTarget(t *testing.T) {
	_, err := NewService().Render("rust", ir.IRServer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported target")
}

func TestValidateArguments(t *testing.T) {
	server, err := NewService().Convert(loadDoc(t, itemsSpec), ConverterOptions{})
	require.NoError(t, err)

	get := server.Tools[0]
	assert.Error(t, ValidateArguments(get, nil))
	assert.NoError(t, ValidateArguments(get, map[string]any{"itemId": "abc"}))

	post := server.Tools[1]
	assert.Error(t, ValidateArguments(post, map[string]any{"name": "widget", "qty": "many"}))
	assert.NoError(t, ValidateArguments(post, map[string]any{"name": "widget", "qty": 3}))
}
