package generator

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/require"
)

const itemsSpec = `
openapi: 3.0.3
info:
  title: Items API
  version: "1.2"
  description: Manage items
servers:
  - url: https://{region}.example.com/v1
    variables:
      region:
        default: eu
paths:
  /items/{itemId}:
    get:
      summary: Fetch an item
      parameters:
        - name: itemId
          in: path
          required: true
          schema:
            type: string
      responses:
        "200":
          description: ok
    post:
      description: Create an item
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [name, qty]
              properties:
                name:
                  type: string
                qty:
                  type: integer
      responses:
        "201":
          description: created
`

func loadDoc(t *testing.T, spec string) *openapi3.T {
	t.Helper()
	doc, err := openapi3.NewLoader().LoadFromData([]byte(spec))
	require.NoError(t, err)
	return doc
}

// docWithPaths builds a document from inline path items
func docWithPaths(paths map[string]*openapi3.PathItem) *openapi3.T {
	p := openapi3.NewPaths()
	for k, v := range paths {
		p.Set(k, v)
	}
	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info:    &openapi3.Info{Title: "Test", Version: "1.0.0"},
		Paths:   p,
	}
}

func getOp(params ...*openapi3.Parameter) *openapi3.Operation {
	op := openapi3.NewOperation()
	for _, p := range params {
		op.AddParameter(p)
	}
	return op
}
