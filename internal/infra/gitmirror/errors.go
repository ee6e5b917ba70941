package gitmirror

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/windy-civi/govsync/internal/domain"
)

var errNoCommonAncestor = errors.New("no common ancestor between local and remote heads")

// corruptionError tags an error as mirror corruption when its cause is a
// typed storage fault (missing object, missing reference, unopenable
// repository, lost ancestor), so the sync engine can trigger
// delete-and-reclone recovery. Anything else passes through unchanged and
// is surfaced for inspection.
func corruptionError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, plumbing.ErrObjectNotFound),
		errors.Is(err, plumbing.ErrReferenceNotFound),
		errors.Is(err, git.ErrRepositoryNotExists),
		errors.Is(err, errNoCommonAncestor):
		return fmt.Errorf("%w: %v", domain.ErrMirrorCorrupt, err)
	default:
		return err
	}
}
