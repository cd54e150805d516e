package cli

import (
	"errors"

	"github.com/blimu-dev/mcp-gen/pkg/config"
)

// fallbackConfig builds a configuration from flag values
func fallbackConfig(p FallbackParams) (config.Config, error) {
	cfg := config.Config{
		Spec:              p.Spec,
		ProjectPath:       p.ProjectPath,
		Name:              p.Name,
		IncludeTools:      p.IncludeTools,
		IncludeMethods:    p.IncludeMethods,
		MaxToolNameLength: p.MaxToolNameLength,
		SkipLongToolNames: p.SkipLongToolNames,
		RequiredMatch:     p.RequiredMatch,
		Template: config.Template{
			Repo: p.TemplateRepo,
			Ref:  p.TemplateRef,
			Dir:  p.TemplateDir,
		},
	}
	if cfg.ProjectPath == "" {
		cfg.ProjectPath = "."
	}

	urlsSet := p.OAuth2AuthURL != "" || p.OAuth2TokenURL != "" || p.OAuth2RefreshURL != ""
	switch {
	case p.OAuth2:
		if p.OAuth2AuthURL == "" || p.OAuth2TokenURL == "" {
			return config.Config{}, errors.New("--oauth2 requires --oauth2-auth-url and --oauth2-token-url")
		}
		cfg.OAuth2 = &config.OAuth2{
			AuthorizationURL: p.OAuth2AuthURL,
			TokenURL:         p.OAuth2TokenURL,
			RefreshURL:       p.OAuth2RefreshURL,
		}
	case urlsSet:
		return config.Config{}, errors.New("oauth2 URLs require --oauth2")
	}
	return cfg, nil
}
