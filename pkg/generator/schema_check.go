package generator

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/blimu-dev/mcp-gen/pkg/ir"
)

// CheckInputSchemas compiles the input schema of every tool
func CheckInputSchemas(server ir.IRServer) error {
	for _, tool := range server.Tools {
		if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(tool.InputSchema())); err != nil {
			return fmt.Errorf("tool %s: invalid input schema: %w", tool.Name, err)
		}
	}
	return nil
}

// ValidateArguments validates tool arguments against the tool's input schema
func ValidateArguments(tool ir.IRTool, args map[string]any) error {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(tool.InputSchema()))
	if err != nil {
		return fmt.Errorf("tool %s: invalid input schema: %w", tool.Name, err)
	}
	if args == nil {
		args = map[string]any{}
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("invalid arguments for %s: %s", tool.Name, strings.Join(msgs, "; "))
}
