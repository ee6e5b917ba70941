package sync

import (
	"context"

	"github.com/windy-civi/govsync/internal/domain"
)

// MirrorStore is the git-facing side of a sync: probe local state, bring
// a mirror into existence, or advance an existing one. Pull reports
// whether the working tree changed.
type MirrorStore interface {
	Probe(ctx context.Context, path string) (domain.MirrorState, error)
	Clone(ctx context.Context, ref domain.RepositoryRef) error
	Pull(ctx context.Context, ref domain.RepositoryRef) (bool, error)
	TreeSize(path string) int64
}

// Remover deletes a mirror tree completely, including read-only git
// metadata. Used only on the corruption recovery path.
type Remover interface {
	Remove(ctx context.Context, path string) error
}
