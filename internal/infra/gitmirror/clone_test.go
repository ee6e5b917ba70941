package gitmirror

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/windy-civi/govsync/internal/domain"
)

func TestCloneCreatesMirrorOnMain(t *testing.T) {
	upstream, repo := newUpstream(t, "main")
	commitFile(t, repo, "bills.json", `{"bills":[]}`, "seed")
	commitFile(t, repo, "votes.json", `{"votes":[]}`, "add votes")

	ref := mirrorRef(t, upstream)
	store := NewStore()
	if err := store.Clone(context.Background(), ref); err != nil {
		t.Fatalf("Clone returned error: %v", err)
	}

	if got := headBranch(t, ref.LocalPath); got != "main" {
		t.Fatalf("expected HEAD on main, got %s", got)
	}
	if got := readMirrorFile(t, ref.LocalPath, "votes.json"); got != `{"votes":[]}` {
		t.Fatalf("unexpected mirror content: %s", got)
	}

	state, err := store.Probe(context.Background(), ref.LocalPath)
	if err != nil {
		t.Fatalf("Probe returned error: %v", err)
	}
	if state != domain.MirrorFullPresent {
		t.Fatalf("expected full mirror, got %s", state)
	}
}

func TestCloneFallsBackToMaster(t *testing.T) {
	upstream, repo := newUpstream(t, "master")
	commitFile(t, repo, "bills.json", `{"bills":[]}`, "seed")

	ref := mirrorRef(t, upstream)
	if err := NewStore().Clone(context.Background(), ref); err != nil {
		t.Fatalf("Clone returned error: %v", err)
	}
	if got := headBranch(t, ref.LocalPath); got != "master" {
		t.Fatalf("expected HEAD on master, got %s", got)
	}
}

func TestCloneRefusesExistingPath(t *testing.T) {
	upstream, repo := newUpstream(t, "main")
	commitFile(t, repo, "bills.json", "{}", "seed")

	ref := mirrorRef(t, upstream)
	if err := os.MkdirAll(ref.LocalPath, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	err := NewStore().Clone(context.Background(), ref)
	if !errors.Is(err, os.ErrExist) {
		t.Fatalf("expected os.ErrExist, got %v", err)
	}
}

func TestCloneHonorsCancelledContext(t *testing.T) {
	upstream, repo := newUpstream(t, "main")
	commitFile(t, repo, "bills.json", "{}", "seed")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewStore().Clone(ctx, mirrorRef(t, upstream))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
