package project

import (
	"fmt"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

const gitDir = ".git"

// ListFiles returns every file under the root of fs that is not excluded by
// a .gitignore, in lexical walk order. The .git directory is never entered.
func ListFiles(fs billy.Filesystem) ([]string, error) {
	patterns, err := gitignore.ReadPatterns(fs, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read .gitignore patterns: %w", err)
	}
	matcher := gitignore.NewMatcher(patterns)

	var files []string
	if err := walk(fs, nil, matcher, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func walk(fs billy.Filesystem, dir []string, matcher gitignore.Matcher, files *[]string) error {
	entries, err := fs.ReadDir(fs.Join(dir...))
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", fs.Join(dir...), err)
	}
	for _, entry := range entries {
		if entry.IsDir() && entry.Name() == gitDir {
			continue
		}
		p := append(append([]string{}, dir...), entry.Name())
		if matcher.Match(p, entry.IsDir()) {
			continue
		}
		if entry.IsDir() {
			if err := walk(fs, p, matcher, files); err != nil {
				return err
			}
			continue
		}
		*files = append(*files, fs.Join(p...))
	}
	return nil
}
