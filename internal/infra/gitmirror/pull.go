package gitmirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/windy-civi/govsync/internal/domain"
)

// Pull brings an existing mirror up to date with its remote. Returns true
// when the working tree advanced, false when it was already current.
// Divergence and corruption surface as domain sentinel errors so the sync
// engine can tell "needs a human" apart from "delete and reclone".
func (s *Store) Pull(ctx context.Context, ref domain.RepositoryRef) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	repo, err := git.PlainOpen(ref.LocalPath)
	if err != nil {
		return false, corruptionError(fmt.Errorf("open mirror: %w", err))
	}

	auth, err := s.authForURL(ref.RemoteURL)
	if err != nil {
		return false, err
	}

	// A history-truncated clone cannot support a merge-base computation:
	// a pull against it would spuriously report divergence. Deepen first.
	shallow, err := repo.Storer.Shallow()
	if err != nil {
		return false, corruptionError(fmt.Errorf("read shallow roots: %w", err))
	}
	if len(shallow) > 0 {
		slog.Debug("deepening shallow mirror", "locale", ref.Locale)
		err := repo.FetchContext(ctx, &git.FetchOptions{
			RemoteName: remoteName,
			Depth:      unshallowDepth,
			Auth:       auth,
			Tags:       git.NoTags,
		})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return false, fmt.Errorf("deepen mirror: %w", err)
		}
	}

	// Fetch both candidate default branches in order. A branch missing on
	// the remote is tolerated, but its stale remote-tracking ref is pruned
	// so a renamed default branch does not pin the mirror to the old name.
	// Both branches missing (or both fetches failing hard) is fatal.
	var fetchErr error
	for _, name := range defaultBranches {
		spec := config.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/%s/%s", name, remoteName, name))
		err := repo.FetchContext(ctx, &git.FetchOptions{
			RemoteName: remoteName,
			RefSpecs:   []config.RefSpec{spec},
			Auth:       auth,
			Tags:       git.NoTags,
		})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			var noMatch git.NoMatchingRefSpecError
			if errors.As(err, &noMatch) {
				_ = repo.Storer.RemoveReference(plumbing.NewRemoteReferenceName(remoteName, name))
				continue
			}
			slog.Debug("branch fetch failed", "locale", ref.Locale, "branch", name, "error", err)
			if fetchErr == nil {
				fetchErr = err
			}
		}
	}

	hasMain := remoteBranchExists(repo, defaultBranches[0])
	hasMaster := remoteBranchExists(repo, defaultBranches[1])
	if !hasMain && !hasMaster {
		if fetchErr != nil {
			return false, fmt.Errorf("fetch mirror: %w", fetchErr)
		}
		return false, domain.ErrNoDefaultBranch
	}

	head, err := repo.Head()
	if err != nil {
		return false, corruptionError(fmt.Errorf("read HEAD: %w", err))
	}
	originalHash := head.Hash()
	localBranch := ""
	if head.Name().IsBranch() {
		localBranch = head.Name().Short()
	}

	remoteBranch := pickRemoteBranch(localBranch, hasMain, hasMaster)
	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName(remoteName, remoteBranch), true)
	if err != nil {
		return false, fmt.Errorf("resolve origin/%s: %w", remoteBranch, err)
	}
	remoteHash := remoteRef.Hash()

	if localBranch != remoteBranch {
		if err := s.switchBranch(repo, remoteBranch, remoteHash); err != nil {
			return false, err
		}
		head, err = repo.Head()
		if err != nil {
			return false, corruptionError(fmt.Errorf("read HEAD: %w", err))
		}
	}

	advanced, err := s.mergeAnalysis(repo, head, remoteHash)
	if err != nil {
		return false, err
	}
	// A branch switch can land the worktree on the remote commit before
	// the merge analysis runs; the mutation still counts as an update.
	return advanced || head.Hash() != originalHash, nil
}

// mergeAnalysis computes the relationship between local HEAD and the
// resolved remote commit and applies the only mutation this engine ever
// performs: a fast-forward. A true three-way merge is never attempted.
func (s *Store) mergeAnalysis(repo *git.Repository, head *plumbing.Reference, remoteHash plumbing.Hash) (bool, error) {
	localHash := head.Hash()
	if localHash == remoteHash {
		return false, nil
	}

	localCommit, err := repo.CommitObject(localHash)
	if err != nil {
		return false, corruptionError(fmt.Errorf("read local commit: %w", err))
	}
	remoteCommit, err := repo.CommitObject(remoteHash)
	if err != nil {
		return false, corruptionError(fmt.Errorf("read remote commit: %w", err))
	}

	fastForward, err := localCommit.IsAncestor(remoteCommit)
	if err != nil {
		return false, corruptionError(fmt.Errorf("walk local history: %w", err))
	}
	if fastForward {
		branchRef := plumbing.NewHashReference(head.Name(), remoteHash)
		if err := repo.Storer.SetReference(branchRef); err != nil {
			return false, fmt.Errorf("advance %s: %w", head.Name().Short(), err)
		}
		worktree, err := repo.Worktree()
		if err != nil {
			return false, fmt.Errorf("open worktree: %w", err)
		}
		err = worktree.Reset(&git.ResetOptions{Mode: git.HardReset, Commit: remoteHash})
		if err != nil {
			return false, fmt.Errorf("checkout %s: %w", head.Name().Short(), err)
		}
		return true, nil
	}

	behindOnly, err := remoteCommit.IsAncestor(localCommit)
	if err != nil {
		return false, corruptionError(fmt.Errorf("walk remote history: %w", err))
	}
	if behindOnly {
		// Local is ahead of the remote ref; nothing to fetch.
		return false, nil
	}

	bases, err := localCommit.MergeBase(remoteCommit)
	if err != nil {
		return false, corruptionError(fmt.Errorf("compute merge base: %w", err))
	}
	if len(bases) == 0 {
		// Unrelated histories mean the local object store lost the common
		// ancestor, not that upstream rewrote history under us.
		return false, corruptionError(errNoCommonAncestor)
	}

	return false, domain.ErrDiverged
}

func (s *Store) switchBranch(repo *git.Repository, name string, hash plumbing.Hash) error {
	branchName := plumbing.NewBranchReferenceName(name)
	if _, err := repo.Reference(branchName, true); err != nil {
		branchRef := plumbing.NewHashReference(branchName, hash)
		if err := repo.Storer.SetReference(branchRef); err != nil {
			return fmt.Errorf("create branch %s: %w", name, err)
		}
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	err = worktree.Checkout(&git.CheckoutOptions{Branch: branchName, Force: true})
	if err != nil {
		return fmt.Errorf("checkout %s: %w", name, err)
	}
	return nil
}

// pickRemoteBranch reconciles local/remote branch naming: stay on the
// local branch's remote counterpart when it exists, fall back to the
// other conventional name, and prefer main when the local branch is
// neither.
func pickRemoteBranch(localBranch string, hasMain, hasMaster bool) string {
	if localBranch == defaultBranches[1] {
		if hasMaster {
			return defaultBranches[1]
		}
		return defaultBranches[0]
	}
	if hasMain {
		return defaultBranches[0]
	}
	return defaultBranches[1]
}

func remoteBranchExists(repo *git.Repository, name string) bool {
	_, err := repo.Reference(plumbing.NewRemoteReferenceName(remoteName, name), true)
	return err == nil
}
