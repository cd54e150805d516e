package project

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"

	"github.com/blimu-dev/mcp-gen/pkg/backend"
)

// Files of the skeleton that are patched with the server identity
const (
	ServerPath  = "src/routes/v1/mcp/server.ts"
	PackagePath = "package.json"

	placeholderName    = `"example-server"`
	placeholderVersion = `"1.0.0"`
)

var packageVersion = regexp.MustCompile(`("version"\s*:\s*)"[^"]*"`)

// NormalizeVersion returns v in canonical semver form ("1.2" -> "1.2.0").
// Versions that do not parse are returned unchanged.
func NormalizeVersion(v string) string {
	parsed, err := semver.NewVersion(strings.TrimSpace(v))
	if err != nil {
		return v
	}
	return parsed.String()
}

// PatchServerInfo replaces the skeleton's placeholder server name and version
// and sets the package.json version. Missing files are skipped. It returns
// the paths that were rewritten.
func PatchServerInfo(b backend.Backend, name, version string) ([]string, error) {
	version = NormalizeVersion(version)
	var patched []string

	if b.Exists(ServerPath) {
		content, err := b.ReadFile(ServerPath)
		if err != nil {
			return nil, err
		}
		updated := strings.ReplaceAll(content, placeholderName, quote(name))
		if version != "" {
			updated = strings.ReplaceAll(updated, placeholderVersion, quote(version))
		}
		if updated != content {
			if err := b.WriteFile(ServerPath, updated); err != nil {
				return nil, err
			}
			patched = append(patched, ServerPath)
		}
	}

	if _, err := semver.StrictNewVersion(version); err == nil && b.Exists(PackagePath) {
		content, err := b.ReadFile(PackagePath)
		if err != nil {
			return nil, err
		}
		updated := content
		if loc := packageVersion.FindStringSubmatchIndex(content); loc != nil {
			updated = content[:loc[0]] + content[loc[2]:loc[3]] + quote(version) + content[loc[1]:]
		}
		if updated != content {
			if err := b.WriteFile(PackagePath, updated); err != nil {
				return nil, err
			}
			patched = append(patched, PackagePath)
		}
	}
	return patched, nil
}

// ApplyProjectFeatures runs ApplyFeatures over every listed file of fs and
// rewrites the files it changed. It returns the number of rewritten files.
func ApplyProjectFeatures(fs billy.Filesystem, features Features, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	files, err := ListFiles(fs)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, name := range files {
		data, err := util.ReadFile(fs, name)
		if err != nil {
			return count, err
		}
		if !isText(data) {
			continue
		}
		output, changed, err := ApplyFeatures(features, string(data))
		if err != nil {
			return count, err
		}
		if !changed {
			continue
		}
		if err := util.WriteFile(fs, name, []byte(output), 0o644); err != nil {
			return count, err
		}
		logger.Debug("applied template features", zap.String("path", name))
		count++
	}
	return count, nil
}

func isText(data []byte) bool {
	for _, c := range data {
		if c == 0 {
			return false
		}
	}
	return true
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
