package project

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
	"go.uber.org/zap"

	"github.com/blimu-dev/mcp-gen/pkg/backend"
)

// Source describes where the project skeleton comes from. At most one of
// Repo and Dir may be set.
type Source struct {
	// Repo is a git URL, cloned at depth 1
	Repo string
	// Ref is an optional branch name for Repo
	Ref string
	// Dir is a local directory copied as-is
	Dir string
}

// IsZero reports whether no skeleton source is configured
func (s Source) IsZero() bool {
	return s.Repo == "" && s.Dir == ""
}

// Acquire copies the skeleton described by src into dst. Files already in
// dst are overwritten; .git is never copied. A zero Source is a no-op.
func Acquire(ctx context.Context, src Source, dst billy.Filesystem, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch {
	case src.Repo != "" && src.Dir != "":
		return errors.New("template source must set either repo or dir, not both")
	case src.Repo != "":
		worktree := memfs.New()
		opts := &git.CloneOptions{
			URL:          src.Repo,
			Depth:        1,
			SingleBranch: true,
		}
		if src.Ref != "" {
			opts.ReferenceName = plumbing.NewBranchReferenceName(src.Ref)
		}
		logger.Info("cloning template", zap.String("repo", src.Repo), zap.String("ref", src.Ref))
		if _, err := git.CloneContext(ctx, memory.NewStorage(), worktree, opts); err != nil {
			return fmt.Errorf("failed to clone repository: %w", err)
		}
		return CopyTree(worktree, dst)
	case src.Dir != "":
		logger.Info("copying template", zap.String("dir", src.Dir))
		return CopyTree(osfs.New(src.Dir), dst)
	}
	return nil
}

// CopyTree copies every file of src into dst, skipping .git directories
func CopyTree(src, dst billy.Filesystem) error {
	return copyDir(src, dst, nil)
}

func copyDir(src, dst billy.Filesystem, dir []string) error {
	entries, err := src.ReadDir(src.Join(dir...))
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", src.Join(dir...), err)
	}
	for _, entry := range entries {
		p := append(append([]string{}, dir...), entry.Name())
		if entry.IsDir() {
			if entry.Name() == gitDir {
				continue
			}
			if err := copyDir(src, dst, p); err != nil {
				return err
			}
			continue
		}
		if !entry.Mode().IsRegular() {
			continue
		}
		name := src.Join(p...)
		if err := backend.CopyFile(src, name, dst, dst.Join(p...)); err != nil {
			return err
		}
	}
	return nil
}
