package sync

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/windy-civi/govsync/internal/domain"
	"github.com/windy-civi/govsync/internal/infra/gitmirror"
	"github.com/windy-civi/govsync/internal/infra/removal"
)

func seedUpstream(t *testing.T) (string, *git.Repository) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "upstream")
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init upstream: %v", err)
	}
	upstreamCommit(t, repo, `{"bills":[]}`)
	return dir, repo
}

func upstreamCommit(t *testing.T, repo *git.Repository, content string) {
	t.Helper()
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("open worktree: %v", err)
	}
	path := filepath.Join(worktree.Filesystem.Root(), "bills.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := worktree.Add("bills.json"); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err = worktree.Commit("update", &git.CommitOptions{
		Author: &object.Signature{Name: "Fixture", Email: "fixture@example.test", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestSyncLifecycleAgainstRealMirror(t *testing.T) {
	ctx := context.Background()
	upstream, upstreamRepo := seedUpstream(t)
	ref := domain.NewRepositoryRef("il", upstream, filepath.Join(t.TempDir(), "mirrors"))

	service := NewService(gitmirror.NewStore(), removal.New(), quietLogger())

	outcome := service.Sync(ctx, ref)
	if outcome.Action != domain.ActionCloned || outcome.Err != nil {
		t.Fatalf("first sync: %+v", outcome)
	}
	if outcome.SizeAfter <= outcome.SizeBefore {
		t.Fatalf("expected the mirror to take space: %+v", outcome)
	}

	outcome = service.Sync(ctx, ref)
	if outcome.Action != domain.ActionNoUpdates || outcome.Err != nil {
		t.Fatalf("second sync: %+v", outcome)
	}

	upstreamCommit(t, upstreamRepo, `{"bills":["hb1"]}`)
	outcome = service.Sync(ctx, ref)
	if outcome.Action != domain.ActionPulled || outcome.Err != nil {
		t.Fatalf("third sync: %+v", outcome)
	}
	data, err := os.ReadFile(filepath.Join(ref.LocalPath, "bills.json"))
	if err != nil {
		t.Fatalf("read mirror: %v", err)
	}
	if string(data) != `{"bills":["hb1"]}` {
		t.Fatalf("unexpected mirror content: %s", data)
	}
}

func TestSyncRecoversRealCorruptMirror(t *testing.T) {
	ctx := context.Background()
	upstream, _ := seedUpstream(t)
	ref := domain.NewRepositoryRef("il", upstream, filepath.Join(t.TempDir(), "mirrors"))

	service := NewService(gitmirror.NewStore(), removal.New(), quietLogger())
	if outcome := service.Sync(ctx, ref); outcome.Err != nil {
		t.Fatalf("initial sync: %+v", outcome)
	}

	// Destroy the repository metadata but leave the directory in place.
	if err := os.RemoveAll(filepath.Join(ref.LocalPath, ".git")); err != nil {
		t.Fatalf("corrupt mirror: %v", err)
	}

	outcome := service.Sync(ctx, ref)
	if outcome.Action != domain.ActionRecloned || outcome.Err != nil {
		t.Fatalf("recovery sync: %+v", outcome)
	}
	if _, err := os.Stat(filepath.Join(ref.LocalPath, ".git")); err != nil {
		t.Fatalf("expected a fresh clone: %v", err)
	}
}
