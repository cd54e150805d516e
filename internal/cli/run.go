package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/blimu-dev/mcp-gen/pkg/config"
	"github.com/blimu-dev/mcp-gen/pkg/generator"
	"github.com/blimu-dev/mcp-gen/pkg/ir"
	"github.com/blimu-dev/mcp-gen/pkg/openapi"
)

// FallbackParams holds the flag values used when no config file is given
type FallbackParams struct {
	Spec              string
	ProjectPath       string
	Name              string
	TemplateRepo      string
	TemplateRef       string
	TemplateDir       string
	IncludeTools      string
	IncludeMethods    []string
	MaxToolNameLength int
	SkipLongToolNames bool
	RequiredMatch     string
	OAuth2            bool
	OAuth2AuthURL     string
	OAuth2TokenURL    string
	OAuth2RefreshURL  string
}

type RunGenerateParams struct {
	ConfigPath string
	Verbose    bool
	Fallback   FallbackParams
}

type RunListToolsParams struct {
	Input          string
	IncludeTools   string
	IncludeMethods []string
	// Schemas prints each tool's JSON input schema instead of the table
	Schemas bool
	// CheckArgs names a tool whose input schema Args is validated against
	CheckArgs string
	Args      string
	Verbose   bool
	Out       io.Writer
}

func RunValidate(input string) error {
	if err := openapi.ValidateDocument(input); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s is valid\n", input)
	return nil
}

func RunGenerate(ctx context.Context, p RunGenerateParams) error {
	logger, err := newLogger(p.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	opts := generator.GenerateOptions{
		ConfigPath: p.ConfigPath,
		LookupEnv:  os.LookupEnv,
	}
	if p.ConfigPath == "" {
		if p.Fallback.Spec == "" {
			return errors.New("either --config or --input must be provided")
		}
		cfg, err := fallbackConfig(p.Fallback)
		if err != nil {
			return err
		}
		opts.Fallback = cfg
	}
	return generator.NewService(generator.WithLogger(logger)).Generate(ctx, opts)
}

func RunListTools(p RunListToolsParams) error {
	logger, err := newLogger(p.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	doc, err := openapi.LoadDocument(p.Input)
	if err != nil {
		return err
	}
	opts, err := generator.ConverterOptionsFromConfig(&config.Config{
		IncludeTools:   p.IncludeTools,
		IncludeMethods: p.IncludeMethods,
	})
	if err != nil {
		return err
	}
	service := generator.NewService(generator.WithLogger(logger))
	server, err := service.Convert(doc, opts)
	if err != nil {
		return err
	}
	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	if p.CheckArgs != "" {
		return checkArguments(out, server.Tools, p.CheckArgs, p.Args)
	}
	if p.Schemas {
		return writeSchemas(out, server.Tools)
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, tool := range server.Tools {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", tool.Name, tool.Call.Method, tool.Call.Path, len(tool.Properties))
	}
	return w.Flush()
}

func writeSchemas(out io.Writer, tools []ir.IRTool) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	for _, tool := range tools {
		if err := enc.Encode(map[string]any{
			"name":        tool.Name,
			"inputSchema": tool.InputSchema(),
		}); err != nil {
			return err
		}
	}
	return nil
}

func checkArguments(out io.Writer, tools []ir.IRTool, name, raw string) error {
	var args map[string]any
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return fmt.Errorf("parse --args: %w", err)
		}
	}
	for _, tool := range tools {
		if tool.Name != name {
			continue
		}
		if err := generator.ValidateArguments(tool, args); err != nil {
			return err
		}
		fmt.Fprintf(out, "arguments for %s are valid\n", name)
		return nil
	}
	return fmt.Errorf("unknown tool %q", name)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
