package project

import (
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, fs billy.Filesystem, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, util.WriteFile(fs, name, []byte(content), 0o644))
	}
}

func TestListFilesGitignoreNegation(t *testing.T) {
	fs := memfs.New()
	writeFiles(t, fs, map[string]string{
		".gitignore":    "*.log\n!important.log\n",
		"a.log":         "",
		"b.log":         "",
		"important.log": "",
		"other.txt":     "",
	})

	files, err := ListFiles(fs)
	require.NoError(t, err)
	assert.Contains(t, files, "important.log")
	assert.Contains(t, files, "other.txt")
	assert.NotContains(t, files, "a.log")
	assert.NotContains(t, files, "b.log")
}

func TestListFilesNested(t *testing.T) {
	fs := memfs.New()
	writeFiles(t, fs, map[string]string{
		".gitignore":            "node_modules/\ndist\n",
		"src/index.ts":          "",
		"src/routes/server.ts":  "",
		"src/.gitignore":        "*.generated.ts\n",
		"src/a.generated.ts":    "",
		"node_modules/zod/x.js": "",
		"dist/index.js":         "",
		".git/config":           "",
		"README.md":             "",
	})

	files, err := ListFiles(fs)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		".gitignore",
		"README.md",
		"src/.gitignore",
		"src/index.ts",
		"src/routes/server.ts",
	}, files)
}
