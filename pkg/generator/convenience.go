package generator

import (
	"context"

	"github.com/blimu-dev/mcp-gen/pkg/config"
	"github.com/blimu-dev/mcp-gen/pkg/ir"
	"github.com/blimu-dev/mcp-gen/pkg/openapi"
)

// GenerateProject is a convenience function that converts spec and writes
// the tools into the project at projectPath
func GenerateProject(ctx context.Context, spec, projectPath string) error {
	return NewService().Generate(ctx, GenerateOptions{
		Fallback: config.Config{
			Spec:        spec,
			ProjectPath: projectPath,
		},
	})
}

// GenerateFromConfig is a convenience function for generating from a config file
func GenerateFromConfig(ctx context.Context, configPath string) error {
	return NewService().Generate(ctx, GenerateOptions{ConfigPath: configPath})
}

// ConvertFile loads spec and returns its server IR without rendering anything
func ConvertFile(spec string, opts ConverterOptions) (*ir.IRServer, error) {
	doc, err := openapi.LoadDocument(spec)
	if err != nil {
		return nil, err
	}
	return NewService().Convert(doc, opts)
}

// ValidateSpec is a convenience function for validating an OpenAPI specification
func ValidateSpec(specPath string) error {
	return openapi.ValidateDocument(specPath)
}
