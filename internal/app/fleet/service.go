package fleet

import (
	"context"
	"log/slog"
	"sync"

	"github.com/windy-civi/govsync/internal/domain"
)

// DefaultJobs bounds fleet concurrency when the caller does not choose.
const DefaultJobs = 4

// Options tunes one fleet run. OnOutcome, when set, receives each outcome
// as soon as it is known; with Jobs > 1 that is completion order, not
// input order. The callback runs on the orchestrator goroutine, so it
// needs no locking of its own.
type Options struct {
	Jobs      int
	OnOutcome func(domain.SyncOutcome)
}

// Service fans a selection of repositories out over a bounded pool of
// sync workers. One repository failing never stops the others.
type Service struct {
	syncer Syncer
	logger *slog.Logger
}

func NewService(syncer Syncer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{syncer: syncer, logger: logger}
}

// Run syncs every ref exactly once and reduces the outcomes. With one
// job the refs are processed sequentially in input order, which keeps
// single-repo invocations and debugging runs deterministic.
func (s *Service) Run(ctx context.Context, refs []domain.RepositoryRef, options Options) domain.FleetRunSummary {
	jobs := options.Jobs
	if jobs <= 0 {
		jobs = DefaultJobs
	}
	if jobs > len(refs) {
		jobs = len(refs)
	}

	s.logger.Info("fleet run starting", "repos", len(refs), "jobs", jobs)

	var outcomes []domain.SyncOutcome
	if jobs <= 1 {
		outcomes = s.runSequential(ctx, refs, options)
	} else {
		outcomes = s.runPooled(ctx, refs, options, jobs)
	}

	summary := domain.Summarize(outcomes)
	s.logger.Info("fleet run finished",
		"total", summary.Total,
		"cloned", summary.Cloned,
		"pulled", summary.Pulled,
		"no_updates", summary.NoUpdates,
		"recloned", summary.Recloned,
		"failed", len(summary.Failures))
	return summary
}

func (s *Service) runSequential(ctx context.Context, refs []domain.RepositoryRef, options Options) []domain.SyncOutcome {
	outcomes := make([]domain.SyncOutcome, 0, len(refs))
	for _, ref := range refs {
		outcome := s.syncOne(ctx, ref)
		if options.OnOutcome != nil {
			options.OnOutcome(outcome)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func (s *Service) runPooled(ctx context.Context, refs []domain.RepositoryRef, options Options, jobs int) []domain.SyncOutcome {
	work := make(chan domain.RepositoryRef)
	results := make(chan domain.SyncOutcome)

	var workers sync.WaitGroup
	workers.Add(jobs)
	for i := 0; i < jobs; i++ {
		go func() {
			defer workers.Done()
			for ref := range work {
				results <- s.syncOne(ctx, ref)
			}
		}()
	}

	// Every ref is always enqueued, cancelled or not: syncOne turns refs
	// that never ran into failed outcomes, so the summary accounts for
	// the whole selection.
	go func() {
		defer close(work)
		for _, ref := range refs {
			work <- ref
		}
	}()

	go func() {
		workers.Wait()
		close(results)
	}()

	outcomes := make([]domain.SyncOutcome, 0, len(refs))
	for outcome := range results {
		if options.OnOutcome != nil {
			options.OnOutcome(outcome)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// syncOne shields the pool from a cancelled context: refs that never ran
// still produce a failed outcome so the summary accounts for every ref.
func (s *Service) syncOne(ctx context.Context, ref domain.RepositoryRef) domain.SyncOutcome {
	if err := ctx.Err(); err != nil {
		return domain.SyncOutcome{Locale: ref.Locale, Action: domain.ActionFailed, Err: err}
	}
	return s.syncer.Sync(ctx, ref)
}
