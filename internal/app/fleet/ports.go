package fleet

import (
	"context"

	"github.com/windy-civi/govsync/internal/domain"
)

// Syncer reconciles a single repository and always yields an outcome,
// even on failure.
type Syncer interface {
	Sync(ctx context.Context, ref domain.RepositoryRef) domain.SyncOutcome
}
