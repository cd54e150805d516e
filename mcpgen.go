// Package mcpgen generates MCP server tools from OpenAPI 3.x specifications.
//
// Every operation of the document becomes one tool: a validated input schema
// plus the HTTP call that implements it. Tools are rendered as TypeScript
// modules for the MCP SDK and written into a project skeleton.
//
// Quick Start:
//
//	import "github.com/blimu-dev/mcp-gen"
//
//	// Write tools for every operation into ./my-server
//	err := mcpgen.Generate(context.Background(), "./openapi.yaml", "./my-server")
//
// For more control, see the generator package.
package mcpgen

import (
	"context"

	"github.com/blimu-dev/mcp-gen/pkg/generator"
	"github.com/blimu-dev/mcp-gen/pkg/ir"
)

// Generate converts spec and writes the generated tools into projectPath.
//
// Parameters:
//   - spec: Path to OpenAPI specification file or HTTP(S) URL
//   - projectPath: Root of the MCP server project
func Generate(ctx context.Context, spec, projectPath string) error {
	return generator.GenerateProject(ctx, spec, projectPath)
}

// GenerateFromConfig generates from a YAML configuration file.
//
// Example:
//
//	err := mcpgen.GenerateFromConfig(ctx, "./mcpgen.yaml")
func GenerateFromConfig(ctx context.Context, configPath string) error {
	return generator.GenerateFromConfig(ctx, configPath)
}

// Convert loads spec and returns the server IR without writing anything.
// This is useful to inspect which tools a spec would produce.
func Convert(spec string, opts generator.ConverterOptions) (*ir.IRServer, error) {
	return generator.ConvertFile(spec, opts)
}

// ValidateSpec validates an OpenAPI specification file, including the
// requirements of the converter (3.x version, title, paths, single server).
//
// Example:
//
//	err := mcpgen.ValidateSpec("./openapi.yaml")
//	if err != nil {
//		log.Fatalf("Invalid OpenAPI spec: %v", err)
//	}
func ValidateSpec(specPath string) error {
	return generator.ValidateSpec(specPath)
}
