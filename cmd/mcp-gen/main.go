package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	cli "github.com/blimu-dev/mcp-gen/internal/cli"
)

func main() {
	root := &cobra.Command{
		Use:   "mcp-gen",
		Short: "Generate MCP servers from OpenAPI specs",
	}

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newToolsCmd())

	if err := root.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func newGenerateCmd() *cobra.Command {
	var configPath string
	var verbose bool
	var fb cli.FallbackParams

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate an MCP server project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunGenerate(cmd.Context(), cli.RunGenerateParams{
				ConfigPath: configPath,
				Verbose:    verbose,
				Fallback:   fb,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to mcpgen.yaml config")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	// Fallback flags
	cmd.Flags().StringVar(&fb.Spec, "input", "", "OpenAPI spec file or URL (yaml/json)")
	cmd.Flags().StringVar(&fb.ProjectPath, "project-path", ".", "Project directory to write into")
	cmd.Flags().StringVar(&fb.Name, "name", "", "Server name (defaults to info.title)")
	cmd.Flags().StringVar(&fb.TemplateRepo, "template-repo", "", "Git repository to clone the project skeleton from")
	cmd.Flags().StringVar(&fb.TemplateRef, "template-ref", "", "Branch of the template repository")
	cmd.Flags().StringVar(&fb.TemplateDir, "template-dir", "", "Local directory to copy the project skeleton from")
	cmd.Flags().StringVar(&fb.IncludeTools, "include-tools", "", "Regex; only matching paths produce tools")
	cmd.Flags().StringSliceVar(&fb.IncludeMethods, "include-methods", nil, "HTTP methods to include")
	cmd.Flags().IntVar(&fb.MaxToolNameLength, "max-tool-name-length", 0, "Maximum tool name length (default 80)")
	cmd.Flags().BoolVar(&fb.SkipLongToolNames, "skip-long-tool-names", false, "Skip tools whose name is too long instead of failing")
	cmd.Flags().StringVar(&fb.RequiredMatch, "required-match", "", "How required lists match properties: key or title")
	cmd.Flags().BoolVar(&fb.OAuth2, "oauth2", false, "Enable OAuth2 authorization-code flow")
	cmd.Flags().StringVar(&fb.OAuth2AuthURL, "oauth2-auth-url", "", "OAuth2 authorization URL")
	cmd.Flags().StringVar(&fb.OAuth2TokenURL, "oauth2-token-url", "", "OAuth2 token URL")
	cmd.Flags().StringVar(&fb.OAuth2RefreshURL, "oauth2-refresh-url", "", "OAuth2 refresh URL")

	return cmd
}

func newValidateCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an OpenAPI spec",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.RunValidate(input)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "OpenAPI spec file (yaml/json)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newToolsCmd() *cobra.Command {
	var p cli.RunListToolsParams
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools derived from an OpenAPI spec",
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Out = cmd.OutOrStdout()
			return cli.RunListTools(p)
		},
	}
	cmd.Flags().StringVar(&p.Input, "input", "", "OpenAPI spec file (yaml/json)")
	cmd.Flags().StringVar(&p.IncludeTools, "include-tools", "", "Regex; only matching paths produce tools")
	cmd.Flags().StringSliceVar(&p.IncludeMethods, "include-methods", nil, "HTTP methods to include")
	cmd.Flags().BoolVar(&p.Schemas, "schemas", false, "Print each tool's JSON input schema")
	cmd.Flags().StringVar(&p.CheckArgs, "check-args", "", "Validate --args against this tool's input schema")
	cmd.Flags().StringVar(&p.Args, "args", "", "JSON object of tool arguments used with --check-args")
	cmd.Flags().BoolVarP(&p.Verbose, "verbose", "v", false, "Enable debug logging")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
