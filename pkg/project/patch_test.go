package project

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/mcp-gen/pkg/backend"
)

func TestNormalizeVersion(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1.2", "1.2.0"},
		{"v2", "2.0.0"},
		{"1.0.0-beta.1", "1.0.0-beta.1"},
		{"latest", "latest"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeVersion(tt.input), tt.input)
	}
}

func TestPatchServerInfo(t *testing.T) {
	b := backend.NewMemory()
	require.NoError(t, b.WriteFile(ServerPath, `const server = new McpServer({ name: "example-server", version: "1.0.0" });`))
	require.NoError(t, b.WriteFile(PackagePath, "{\n  \"name\": \"x\",\n  \"version\": \"0.0.1\",\n  \"devDependencies\": { \"tsx\": \"4.0.0\" }\n}\n"))

	patched, err := PatchServerInfo(b, `my "api"`, "2.1")
	require.NoError(t, err)
	assert.Equal(t, []string{ServerPath, PackagePath}, patched)

	server, err := b.ReadFile(ServerPath)
	require.NoError(t, err)
	assert.Equal(t, `const server = new McpServer({ name: "my \"api\"", version: "2.1.0" });`, server)

	pkg, err := b.ReadFile(PackagePath)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"x\",\n  \"version\": \"2.1.0\",\n  \"devDependencies\": { \"tsx\": \"4.0.0\" }\n}\n", pkg)
}

func TestPatchServerInfoNonSemverVersion(t *testing.T) {
	b := backend.NewMemory()
	require.NoError(t, b.WriteFile(PackagePath, `{"version": "0.0.1"}`))

	patched, err := PatchServerInfo(b, "svc", "latest")
	require.NoError(t, err)
	assert.Empty(t, patched)

	pkg, err := b.ReadFile(PackagePath)
	require.NoError(t, err)
	assert.Equal(t, `{"version": "0.0.1"}`, pkg)
}

func TestPatchServerInfoMissingFiles(t *testing.T) {
	patched, err := PatchServerInfo(backend.NewMemory(), "svc", "1.0.0")
	require.NoError(t, err)
	assert.Empty(t, patched)
}

func TestApplyProjectFeatures(t *testing.T) {
	fs := memfs.New()
	writeFiles(t, fs, map[string]string{
		"src/auth.ts":  "// START_OF Features.Auth\n// export const auth = true;\n// END_OF Features.Auth\n",
		"src/plain.ts": "export {};\n",
		"logo.png":     "\x89PNG\x00// START_OF Features.Auth\n",
		"ignored.ts":   "// START_OF Features.Auth\n// x\n// END_OF Features.Auth\n",
		".gitignore":   "ignored.ts\n",
	})

	count, err := ApplyProjectFeatures(fs, Features{Auth: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	data, err := util.ReadFile(fs, "src/auth.ts")
	require.NoError(t, err)
	assert.Equal(t, "export const auth = true;\n", string(data))

	data, err = util.ReadFile(fs, "ignored.ts")
	require.NoError(t, err)
	assert.Contains(t, string(data), "START_OF")
}
