package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/windy-civi/govsync/internal/domain"
)

// Service drives one repository through the sync state machine: probe the
// local path, then clone, pull, or delete-and-reclone. Every call ends in
// exactly one terminal action; corruption is recovered at most once per
// call so a bad remote cannot loop the engine.
type Service struct {
	store   MirrorStore
	remover Remover
	logger  *slog.Logger
}

func NewService(store MirrorStore, remover Remover, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, remover: remover, logger: logger}
}

// Sync reconciles one mirror with its remote and reports the terminal
// action. The returned outcome is also valid when err is non-nil: its
// action is then ActionFailed and Err carries the cause.
func (s *Service) Sync(ctx context.Context, ref domain.RepositoryRef) domain.SyncOutcome {
	outcome := domain.SyncOutcome{
		Locale:     ref.Locale,
		SizeBefore: s.store.TreeSize(ref.LocalPath),
	}

	action, err := s.reconcile(ctx, ref)
	outcome.Action = action
	outcome.Err = err
	outcome.SizeAfter = s.store.TreeSize(ref.LocalPath)

	if err != nil {
		s.logger.Error("sync failed", "locale", ref.Locale, "error", err)
	} else {
		s.logger.Info("sync finished", "locale", ref.Locale, "action", action)
	}
	return outcome
}

func (s *Service) reconcile(ctx context.Context, ref domain.RepositoryRef) (domain.SyncAction, error) {
	state, err := s.store.Probe(ctx, ref.LocalPath)
	if err != nil {
		return domain.ActionFailed, fmt.Errorf("probe %s: %w", ref.Locale, err)
	}
	s.logger.Debug("probed mirror", "locale", ref.Locale, "state", state)

	switch state {
	case domain.MirrorAbsent:
		if err := s.store.Clone(ctx, ref); err != nil {
			return domain.ActionFailed, fmt.Errorf("clone %s: %w", ref.Locale, err)
		}
		return domain.ActionCloned, nil

	case domain.MirrorCorrupt:
		if err := s.reclone(ctx, ref); err != nil {
			return domain.ActionFailed, err
		}
		return domain.ActionRecloned, nil

	case domain.MirrorShallowPresent, domain.MirrorFullPresent:
		updated, err := s.store.Pull(ctx, ref)
		if err == nil {
			if updated {
				return domain.ActionPulled, nil
			}
			return domain.ActionNoUpdates, nil
		}
		// Corruption discovered mid-pull gets one recovery attempt;
		// everything else (network, auth, divergence) surfaces as-is.
		if !errors.Is(err, domain.ErrMirrorCorrupt) {
			return domain.ActionFailed, fmt.Errorf("pull %s: %w", ref.Locale, err)
		}
		s.logger.Warn("mirror corrupt, recloning", "locale", ref.Locale, "cause", err)
		if err := s.reclone(ctx, ref); err != nil {
			return domain.ActionFailed, err
		}
		return domain.ActionRecloned, nil

	default:
		return domain.ActionFailed, fmt.Errorf("unhandled mirror state %q for %s", state, ref.Locale)
	}
}

// reclone is the corruption recovery path: the local tree is removed
// completely before the fresh clone so no stale objects survive.
func (s *Service) reclone(ctx context.Context, ref domain.RepositoryRef) error {
	if err := s.remover.Remove(ctx, ref.LocalPath); err != nil {
		return fmt.Errorf("remove corrupt mirror %s: %w", ref.Locale, err)
	}
	if err := s.store.Clone(ctx, ref); err != nil {
		return fmt.Errorf("reclone %s: %w", ref.Locale, err)
	}
	return nil
}
