package gitmirror

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/windy-civi/govsync/internal/domain"
)

// Probe infers the MirrorState of a local path. The state is never
// persisted; it is re-read at the start of every sync attempt.
func (s *Store) Probe(ctx context.Context, path string) (domain.MirrorState, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.MirrorAbsent, nil
	}
	if err != nil {
		return "", fmt.Errorf("stat mirror path: %w", err)
	}
	if !info.IsDir() {
		// A file squatting on the mirror path; reclone recovery clears it.
		return domain.MirrorCorrupt, nil
	}

	repo, err := git.PlainOpen(path)
	if err != nil {
		return domain.MirrorCorrupt, nil
	}
	if _, err := repo.Head(); err != nil {
		return domain.MirrorCorrupt, nil
	}

	shallow, err := repo.Storer.Shallow()
	if err != nil {
		return domain.MirrorCorrupt, nil
	}
	if len(shallow) > 0 {
		return domain.MirrorShallowPresent, nil
	}
	return domain.MirrorFullPresent, nil
}
