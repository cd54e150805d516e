package typescript

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/blimu-dev/mcp-gen/pkg/ir"
)

//go:embed templates/*
var templatesFS embed.FS

// Paths of the generated files, relative to the project root
const (
	ToolsDir      = "src/routes/v1/mcp/tools"
	IndexPath     = ToolsDir + "/index.ts"
	ConstantsPath = "src/constants.ts"
)

// TypeScriptGenerator renders tools for the TypeScript MCP SDK
type TypeScriptGenerator struct{}

// NewTypeScriptGenerator creates a new TypeScript generator
func NewTypeScriptGenerator() *TypeScriptGenerator {
	return &TypeScriptGenerator{}
}

// GetType returns the generator type identifier
func (g *TypeScriptGenerator) GetType() string {
	return "typescript"
}

// Generate renders one module per tool, the tools index and the constants
// module. Nothing is written to disk.
func (g *TypeScriptGenerator) Generate(server ir.IRServer) ([]ir.IRFile, error) {
	funcMap := template.FuncMap{
		"tsString": tsString,
	}
	for k, v := range sprig.TxtFuncMap() {
		if _, exists := funcMap[k]; !exists {
			funcMap[k] = v
		}
	}

	files := make([]ir.IRFile, 0, len(server.Tools)+2)
	for _, tool := range server.Tools {
		content, err := renderFile("tool.ts.gotmpl", funcMap, newToolView(tool, server.OAuth2 != nil))
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", tool.Name, err)
		}
		files = append(files, ir.IRFile{Path: path.Join(ToolsDir, tool.Name+".ts"), Content: content})
	}

	index, err := renderFile("index.ts.gotmpl", funcMap, server)
	if err != nil {
		return nil, err
	}
	files = append(files, ir.IRFile{Path: IndexPath, Content: index})

	constants, err := renderFile("constants.ts.gotmpl", funcMap, server)
	if err != nil {
		return nil, err
	}
	files = append(files, ir.IRFile{Path: ConstantsPath, Content: constants})

	return files, nil
}

// renderFile renders an embedded template into a string
func renderFile(templateName string, funcMap template.FuncMap, data any) (string, error) {
	tmplContent, err := templatesFS.ReadFile("templates/" + templateName)
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", templateName, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcMap).Parse(string(tmplContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", templateName, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}
	return buf.String(), nil
}
