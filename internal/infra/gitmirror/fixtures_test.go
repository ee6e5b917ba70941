package gitmirror

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/windy-civi/govsync/internal/domain"
)

// newUpstream creates a local repository that stands in for the remote,
// with its default branch named as given.
func newUpstream(t *testing.T, branch string) (string, *git.Repository) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "upstream")
	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{
			DefaultBranch: plumbing.NewBranchReferenceName(branch),
		},
	})
	if err != nil {
		t.Fatalf("init upstream: %v", err)
	}
	return dir, repo
}

func commitFile(t *testing.T, repo *git.Repository, name, content, message string) plumbing.Hash {
	t.Helper()
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("open worktree: %v", err)
	}
	path := filepath.Join(worktree.Filesystem.Root(), name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	if _, err := worktree.Add(name); err != nil {
		t.Fatalf("add %s: %v", name, err)
	}
	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Fixture",
			Email: "fixture@example.test",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return hash
}

func mirrorRef(t *testing.T, upstream string) domain.RepositoryRef {
	t.Helper()
	return domain.NewRepositoryRef("il", upstream, filepath.Join(t.TempDir(), "mirrors"))
}

func headBranch(t *testing.T, path string) string {
	t.Helper()
	repo, err := git.PlainOpen(path)
	if err != nil {
		t.Fatalf("open mirror: %v", err)
	}
	head, err := repo.Head()
	if err != nil {
		t.Fatalf("read HEAD: %v", err)
	}
	return head.Name().Short()
}

func readMirrorFile(t *testing.T, mirror, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(mirror, name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return string(data)
}
