package gitmirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/windy-civi/govsync/internal/domain"
)

// Clone performs a size-bounded shallow clone and checks out the resolved
// default branch. The depth is bounded but greater than one so that later
// merge analyses have a common ancestor to find.
func (s *Store) Clone(ctx context.Context, ref domain.RepositoryRef) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := ensureClonePath(ref.LocalPath); err != nil {
		return err
	}

	auth, err := s.authForURL(ref.RemoteURL)
	if err != nil {
		return err
	}

	slog.Debug("cloning mirror", "locale", ref.Locale, "url", ref.RemoteURL, "depth", s.depth())
	repo, err := git.PlainCloneContext(ctx, ref.LocalPath, false, &git.CloneOptions{
		URL:   ref.RemoteURL,
		Auth:  auth,
		Depth: s.depth(),
		Tags:  git.NoTags,
	})
	if err != nil {
		return fmt.Errorf("clone mirror: %w", err)
	}

	return s.checkoutDefaultBranch(repo)
}

// checkoutDefaultBranch resolves which of the conventional default branch
// names exists, preferring main: local branches first, then
// remote-tracking branches (creating a local branch from the remote), and
// forces the working tree onto it.
func (s *Store) checkoutDefaultBranch(repo *git.Repository) error {
	target := ""
	for _, name := range defaultBranches {
		if _, err := repo.Reference(plumbing.NewBranchReferenceName(name), true); err == nil {
			target = name
			break
		}
	}

	if target == "" {
		for _, name := range defaultBranches {
			remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName(remoteName, name), true)
			if err != nil {
				continue
			}
			branchRef := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), remoteRef.Hash())
			if err := repo.Storer.SetReference(branchRef); err != nil {
				return fmt.Errorf("create branch %s: %w", name, err)
			}
			target = name
			break
		}
	}

	if target == "" {
		return domain.ErrNoDefaultBranch
	}

	head, err := repo.Head()
	if err == nil && head.Name() == plumbing.NewBranchReferenceName(target) {
		return nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	err = worktree.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(target),
		Force:  true,
	})
	if err != nil {
		return fmt.Errorf("checkout %s: %w", target, err)
	}
	return nil
}

func ensureClonePath(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return fmt.Errorf("clone path already exists: %w", os.ErrExist)
		}
		return fmt.Errorf("clone path is a file: %w", os.ErrExist)
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("check clone path: %w", err)
	}

	parent := filepath.Dir(path)
	if parent != "" && parent != "." {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return fmt.Errorf("create mirror root: %w", err)
		}
	}

	return nil
}
