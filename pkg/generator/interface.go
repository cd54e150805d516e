package generator

import (
	"context"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-git/go-billy/v5"
	"go.uber.org/zap"

	"github.com/blimu-dev/mcp-gen/pkg/backend"
	"github.com/blimu-dev/mcp-gen/pkg/config"
	"github.com/blimu-dev/mcp-gen/pkg/generator/typescript"
	"github.com/blimu-dev/mcp-gen/pkg/ir"
	"github.com/blimu-dev/mcp-gen/pkg/openapi"
	"github.com/blimu-dev/mcp-gen/pkg/project"
)

// Generator renders a server IR into source files
type Generator interface {
	// Generate renders the server into files relative to the project root
	Generate(server ir.IRServer) ([]ir.IRFile, error)
	// GetType returns the type identifier for this generator (e.g., "typescript")
	GetType() string
}

// Registry manages available generators
type Registry struct {
	generators map[string]Generator
}

// NewRegistry creates a new generator registry
func NewRegistry() *Registry {
	return &Registry{
		generators: make(map[string]Generator),
	}
}

// Register adds a generator to the registry
func (r *Registry) Register(gen Generator) {
	r.generators[gen.GetType()] = gen
}

// Get retrieves a generator by type
func (r *Registry) Get(genType string) (Generator, bool) {
	gen, exists := r.generators[genType]
	return gen, exists
}

// GetAvailableTypes returns all registered generator types, sorted
func (r *Registry) GetAvailableTypes() []string {
	types := make([]string, 0, len(r.generators))
	for t := range r.generators {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// GenerateOptions contains options for MCP server generation
type GenerateOptions struct {
	ConfigPath string
	// Fallback is used as the configuration when ConfigPath is empty
	Fallback config.Config
	// LookupEnv, when set, applies MCPGEN_* overrides on top of the configuration
	LookupEnv func(string) (string, bool)
}

// Service provides high-level generation: load, convert, render, materialize
type Service struct {
	registry *Registry
	logger   *zap.Logger
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithLogger sets the logger used by the service and the converter
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// WithRegistry replaces the default generator registry
func WithRegistry(registry *Registry) ServiceOption {
	return func(s *Service) { s.registry = registry }
}

// NewService creates a new generator service with default generators
func NewService(opts ...ServiceOption) *Service {
	registry := NewRegistry()
	registry.Register(typescript.NewTypeScriptGenerator())
	s := &Service{
		registry: registry,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// GetRegistry returns the generator registry
func (s *Service) GetRegistry() *Registry {
	return s.registry
}

// Generate generates an MCP server project based on the provided options
func (s *Service) Generate(ctx context.Context, opts GenerateOptions) error {
	var cfg *config.Config
	if opts.ConfigPath == "" {
		fallback := opts.Fallback
		if err := fallback.Validate(); err != nil {
			return fmt.Errorf("either config path or fallback options must be provided: %w", err)
		}
		fallback.Absolutize()
		cfg = &fallback
	} else {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if opts.LookupEnv != nil {
		if err := cfg.ApplyEnv(opts.LookupEnv); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	return s.GenerateFromConfig(ctx, cfg)
}

// GenerateFromConfig converts the configured spec and writes the project.
// All conversion and rendering completes before anything is written.
func (s *Service) GenerateFromConfig(ctx context.Context, cfg *config.Config) error {
	doc, err := openapi.LoadDocument(cfg.Spec)
	if err != nil {
		return fmt.Errorf("failed to load spec %s: %w", cfg.Spec, err)
	}
	convOpts, err := ConverterOptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	server, err := s.Convert(doc, convOpts)
	if err != nil {
		return err
	}
	files, err := s.Render(cfg.Target, *server)
	if err != nil {
		return err
	}
	source := project.Source{Repo: cfg.Template.Repo, Ref: cfg.Template.Ref, Dir: cfg.Template.Dir}
	return s.Materialize(ctx, backend.NewOS(cfg.ProjectPath).Filesystem(), source, *server, files)
}

// Convert checks the document and builds the server IR
func (s *Service) Convert(doc *openapi3.T, opts ConverterOptions) (*ir.IRServer, error) {
	if err := openapi.Check(doc); err != nil {
		return nil, err
	}
	server, err := NewConverter(doc, opts, s.logger).Convert()
	if err != nil {
		return nil, err
	}
	if err := CheckInputSchemas(*server); err != nil {
		return nil, err
	}
	return server, nil
}

// Render runs the generator registered for target
func (s *Service) Render(target string, server ir.IRServer) ([]ir.IRFile, error) {
	if target == "" {
		target = config.DefaultTarget
	}
	gen, exists := s.registry.Get(target)
	if !exists {
		return nil, fmt.Errorf("unsupported target: %s", target)
	}
	return gen.Generate(server)
}

// Materialize acquires the skeleton into fs, writes the rendered files,
// patches the server identity and applies the template features.
func (s *Service) Materialize(ctx context.Context, fs billy.Filesystem, source project.Source, server ir.IRServer, files []ir.IRFile) error {
	if err := project.Acquire(ctx, source, fs, s.logger); err != nil {
		return err
	}

	b := backend.New(fs)
	for _, f := range files {
		if err := b.WriteFile(f.Path, f.Content); err != nil {
			return err
		}
		s.logger.Info("wrote file", zap.String("path", f.Path))
	}

	patched, err := project.PatchServerInfo(b, server.Name, server.Version)
	if err != nil {
		return fmt.Errorf("failed to patch server info: %w", err)
	}
	for _, p := range patched {
		s.logger.Info("patched file", zap.String("path", p))
	}

	count, err := project.ApplyProjectFeatures(fs, project.Features{Auth: server.OAuth2 != nil}, s.logger)
	if err != nil {
		return fmt.Errorf("failed to apply template features: %w", err)
	}
	s.logger.Info("applied template features", zap.Int("files", count))
	return nil
}

// ConverterOptionsFromConfig maps configuration onto converter options
func ConverterOptionsFromConfig(cfg *config.Config) (ConverterOptions, error) {
	pattern, err := cfg.IncludeToolsPattern()
	if err != nil {
		return ConverterOptions{}, fmt.Errorf("invalid includeTools pattern %q: %w", cfg.IncludeTools, err)
	}
	opts := ConverterOptions{
		Name:              cfg.Name,
		IncludePaths:      pattern,
		IncludeMethods:    cfg.IncludeMethods,
		MaxToolNameLength: cfg.MaxToolNameLength,
		SkipLongToolNames: cfg.SkipLongToolNames,
		RequiredMatch:     RequiredMatch(cfg.RequiredMatch),
	}
	if cfg.OAuth2 != nil {
		opts.OAuth2 = &ir.IROAuth2Flow{
			AuthorizationURL: cfg.OAuth2.AuthorizationURL,
			TokenURL:         cfg.OAuth2.TokenURL,
			RefreshURL:       cfg.OAuth2.RefreshURL,
		}
	}
	return opts, nil
}
