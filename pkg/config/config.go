package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// DefaultTarget is the generator used when no target is configured
const DefaultTarget = "typescript"

// Config represents the complete configuration for MCP server generation
type Config struct {
	// Spec is an OpenAPI file path or HTTP(S) URL
	Spec string `yaml:"spec"`
	// ProjectPath is the project root the generated files are written into
	ProjectPath string `yaml:"projectPath"`
	// Name overrides the server name derived from info.title
	Name   string `yaml:"name"`
	Target string `yaml:"target"`
	// Template optionally fills ProjectPath with a skeleton before generation
	Template Template `yaml:"template"`
	// IncludeTools is a regex; only paths matching it produce tools
	IncludeTools   string   `yaml:"includeTools"`
	IncludeMethods []string `yaml:"includeMethods"`
	// MaxToolNameLength defaults to 80 when zero
	MaxToolNameLength int  `yaml:"maxToolNameLength"`
	SkipLongToolNames bool `yaml:"skipLongToolNames"`
	// RequiredMatch is "key" (default) or "title"
	RequiredMatch string  `yaml:"requiredMatch"`
	OAuth2        *OAuth2 `yaml:"oauth2"`
}

// Template describes the project skeleton source
type Template struct {
	Repo string `yaml:"repo"`
	Ref  string `yaml:"ref"`
	Dir  string `yaml:"dir"`
}

// OAuth2 is an explicit authorization-code flow. It takes precedence over
// any flow declared in the document.
type OAuth2 struct {
	AuthorizationURL string `yaml:"authorizationUrl"`
	TokenURL         string `yaml:"tokenUrl"`
	RefreshURL       string `yaml:"refreshUrl"`
}

var supportedMethods = map[string]bool{"GET": true, "POST": true, "PUT": true, "DELETE": true, "PATCH": true}

// Load loads configuration from a YAML file and validates it. Relative
// paths are resolved against the working directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Absolutize()
	return &cfg, nil
}

// Validate checks required fields and normalizes methods and defaults
func (c *Config) Validate() error {
	if c.Spec == "" {
		return errors.New("config.spec is required")
	}
	if c.ProjectPath == "" {
		return errors.New("config.projectPath is required")
	}
	if c.Target == "" {
		c.Target = DefaultTarget
	}
	if c.IncludeTools != "" {
		if _, err := regexp.Compile(c.IncludeTools); err != nil {
			return fmt.Errorf("invalid includeTools pattern %q: %w", c.IncludeTools, err)
		}
	}
	for i, m := range c.IncludeMethods {
		upper := strings.ToUpper(strings.TrimSpace(m))
		if !supportedMethods[upper] {
			return fmt.Errorf("includeMethods[%d]: unsupported method %q", i, m)
		}
		c.IncludeMethods[i] = upper
	}
	if c.MaxToolNameLength < 0 {
		return fmt.Errorf("maxToolNameLength must not be negative, got %d", c.MaxToolNameLength)
	}
	switch c.RequiredMatch {
	case "", "key", "title":
	default:
		return fmt.Errorf("requiredMatch must be \"key\" or \"title\", got %q", c.RequiredMatch)
	}
	if c.OAuth2 != nil && (c.OAuth2.AuthorizationURL == "" || c.OAuth2.TokenURL == "") {
		return errors.New("oauth2 requires authorizationUrl and tokenUrl")
	}
	if c.Template.Repo != "" && c.Template.Dir != "" {
		return errors.New("template must set either repo or dir, not both")
	}
	return nil
}

// Absolutize makes the spec (unless it is a URL), project and template
// directory paths absolute.
func (c *Config) Absolutize() {
	if u, err := url.Parse(c.Spec); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		// keep as-is
	} else {
		c.Spec = absPath(c.Spec)
	}
	c.ProjectPath = absPath(c.ProjectPath)
	if c.Template.Dir != "" {
		c.Template.Dir = absPath(c.Template.Dir)
	}
}

// IncludeToolsPattern compiles IncludeTools; nil when unset
func (c *Config) IncludeToolsPattern() (*regexp.Regexp, error) {
	if c.IncludeTools == "" {
		return nil, nil
	}
	return regexp.Compile(c.IncludeTools)
}

// Environment variables read by ApplyEnv
const (
	EnvIncludeTools      = "MCPGEN_INCLUDE_TOOLS"
	EnvIncludeMethods    = "MCPGEN_INCLUDE_METHODS"
	EnvMaxToolNameLength = "MCPGEN_MAX_TOOL_NAME_LENGTH"
	EnvSkipLongToolNames = "MCPGEN_SKIP_LONG_TOOL_NAMES"
	EnvOAuth2            = "MCPGEN_OAUTH2"
	EnvOAuth2AuthURL     = "MCPGEN_OAUTH2_AUTH_URL"
	EnvOAuth2TokenURL    = "MCPGEN_OAUTH2_TOKEN_URL"
	EnvOAuth2RefreshURL  = "MCPGEN_OAUTH2_REFRESH_URL"
)

// ApplyEnv overrides fields from MCPGEN_* variables. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvIncludeTools); ok && v != "" {
		c.IncludeTools = v
	}
	if v, ok := lookup(EnvIncludeMethods); ok && v != "" {
		c.IncludeMethods = splitList(v)
	}
	if v, ok := lookup(EnvMaxToolNameLength); ok && v != "" {
		n, err := cast.ToIntE(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxToolNameLength, err)
		}
		c.MaxToolNameLength = n
	}
	if v, ok := lookup(EnvSkipLongToolNames); ok && v != "" {
		b, err := cast.ToBoolE(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSkipLongToolNames, err)
		}
		c.SkipLongToolNames = b
	}
	if v, ok := lookup(EnvOAuth2); ok && v != "" {
		enabled, err := cast.ToBoolE(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvOAuth2, err)
		}
		if !enabled {
			c.OAuth2 = nil
			return nil
		}
		if c.OAuth2 == nil {
			c.OAuth2 = &OAuth2{}
		}
		if v, ok := lookup(EnvOAuth2AuthURL); ok {
			c.OAuth2.AuthorizationURL = v
		}
		if v, ok := lookup(EnvOAuth2TokenURL); ok {
			c.OAuth2.TokenURL = v
		}
		if v, ok := lookup(EnvOAuth2RefreshURL); ok {
			c.OAuth2.RefreshURL = v
		}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func absPath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
