package generator

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/blimu-dev/mcp-gen/pkg/ir"
	"github.com/blimu-dev/mcp-gen/pkg/openapi"
	"github.com/blimu-dev/mcp-gen/pkg/utils"
)

// Convert builds the server IR for the whole document. Paths are visited in
// lexical order and methods in SupportedMethods order, so the result is
// deterministic for a given document and options.
func (c *Converter) Convert() (*ir.IRServer, error) {
	if len(c.doc.Servers) > 1 {
		return nil, &openapi.ValidationError{Reason: fmt.Sprintf("only one server entry is supported, found %d", len(c.doc.Servers))}
	}

	server := &ir.IRServer{
		Name:    c.serverName(),
		BaseURL: c.baseURL(),
	}
	if c.doc.Info != nil {
		server.Version = c.doc.Info.Version
		server.Description = c.doc.Info.Description
	}

	oauth2, err := c.resolveOAuth2()
	if err != nil {
		return nil, err
	}
	server.OAuth2 = oauth2

	taken := make(map[string]bool)
	for _, path := range openapi.SortedPaths(c.doc) {
		if !c.opts.includesPath(path) {
			c.logger.Debug("skipped path", zap.String("path", path), zap.String("reason", "not included"))
			continue
		}
		item, err := c.resolver.PathItem(c.doc.Paths.Value(path))
		if err != nil {
			return nil, &openapi.ValidationError{Reason: "path " + path, Err: err}
		}
		for _, method := range SupportedMethods {
			op := item.GetOperation(method)
			if op == nil || !c.opts.includesMethod(method) {
				continue
			}
			tool, err := c.ConvertOperation(method, path, op, item.Parameters)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", method, path, err)
			}
			if tool == nil {
				continue
			}
			if unique := UniqueName(taken, tool.Name); unique != tool.Name {
				skip, err := checkToolNameLength(unique, c.opts)
				if err != nil {
					return nil, fmt.Errorf("%s %s: %w", method, path, err)
				}
				if skip {
					delete(taken, unique)
					continue
				}
				tool.Name = unique
			}
			server.Tools = append(server.Tools, *tool)
			c.logger.Debug("added tool", zap.String("method", method), zap.String("path", path), zap.String("tool", tool.Name))
		}
	}

	c.logger.Info("created tools", zap.Int("count", len(server.Tools)))
	return server, nil
}

func (c *Converter) serverName() string {
	if c.opts.Name != "" {
		return c.opts.Name
	}
	if c.doc.Info == nil {
		return ""
	}
	return utils.ToKebabCase(c.doc.Info.Title)
}

// baseURL returns the single server URL with its variables set to their defaults
func (c *Converter) baseURL() string {
	if len(c.doc.Servers) == 0 || c.doc.Servers[0] == nil {
		return ""
	}
	s := c.doc.Servers[0]
	u := s.URL
	for name, v := range s.Variables {
		if v != nil {
			u = strings.ReplaceAll(u, "{"+name+"}", v.Default)
		}
	}
	return u
}

// resolveOAuth2 prefers the configured flow and otherwise takes the first
// authorization-code flow among the security schemes, by scheme name.
func (c *Converter) resolveOAuth2() (*ir.IROAuth2Flow, error) {
	if c.opts.OAuth2 != nil {
		flow := *c.opts.OAuth2
		c.logger.Debug("resolved oauth2 flow", zap.String("source", "options"))
		return &flow, nil
	}
	if c.doc.Components == nil {
		return nil, nil
	}
	names := make([]string, 0, len(c.doc.Components.SecuritySchemes))
	for name := range c.doc.Components.SecuritySchemes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		scheme, err := c.resolver.SecurityScheme(c.doc.Components.SecuritySchemes[name])
		if err != nil {
			return nil, err
		}
		if scheme.Type != "oauth2" || scheme.Flows == nil || scheme.Flows.AuthorizationCode == nil {
			continue
		}
		code := scheme.Flows.AuthorizationCode
		c.logger.Debug("resolved oauth2 flow", zap.String("source", "securitySchemes"), zap.String("scheme", name))
		return &ir.IROAuth2Flow{
			AuthorizationURL: code.AuthorizationURL,
			TokenURL:         code.TokenURL,
			RefreshURL:       code.RefreshURL,
		}, nil
	}
	return nil, nil
}
