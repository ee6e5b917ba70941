package govsync

import (
	"context"
	"log/slog"
	"path/filepath"

	fleetapp "github.com/windy-civi/govsync/internal/app/fleet"
	"github.com/windy-civi/govsync/internal/app/resolve"
	syncapp "github.com/windy-civi/govsync/internal/app/sync"
	"github.com/windy-civi/govsync/internal/domain"
	"github.com/windy-civi/govsync/internal/infra/gitmirror"
	"github.com/windy-civi/govsync/internal/infra/registry"
	"github.com/windy-civi/govsync/internal/infra/removal"
	"github.com/windy-civi/govsync/internal/infra/runledger"
	"github.com/windy-civi/govsync/internal/platform"
)

// Outcome is the terminal result for one repository.
type Outcome struct {
	Locale     string
	Action     string
	Reason     string
	SizeBefore int64
	SizeAfter  int64
}

// Summary reduces one run.
type Summary struct {
	RunID     string
	Total     int
	Cloned    int
	Pulled    int
	NoUpdates int
	Recloned  int
	Failures  []Outcome
}

func (s Summary) Failed() bool {
	return len(s.Failures) > 0
}

// Client runs fleet syncs in-process, without the CLI surface.
type Client struct {
	cfg      Config
	registry *registry.Registry
	resolver *resolve.Service
	fleet    *fleetapp.Service
}

func New(cfg Config) (*Client, error) {
	normalized, err := normalizeConfig(cfg)
	if err != nil {
		return nil, err
	}

	var reg *registry.Registry
	if normalized.RegistryPatch != "" {
		reg, err = registry.LoadWithOverlay(normalized.RegistryPatch)
	} else {
		reg, err = registry.Load()
	}
	if err != nil {
		return nil, err
	}

	store := gitmirror.NewStoreWithOptions(gitmirror.StoreOptions{Token: normalized.Token})
	single := syncapp.NewService(store, removal.New(), slog.Default())

	return &Client{
		cfg:      normalized,
		registry: reg,
		resolver: resolve.NewService(reg),
		fleet:    fleetapp.NewService(single, slog.Default()),
	}, nil
}

// Locales returns every locale code in the registry.
func (c *Client) Locales() []string {
	known := c.registry.Known()
	locales := make([]string, 0, len(known))
	for _, locale := range known {
		locales = append(locales, locale.String())
	}
	return locales
}

// Sync mirrors the selected locales. Selection semantics match the CLI:
// explicit codes pass through, "all" expands to every known locale, and
// an empty selection updates whatever mirrors already exist.
func (c *Client) Sync(ctx context.Context, locales ...string) (Summary, error) {
	refs, err := c.resolver.Expand(locales, c.cfg.MirrorRoot)
	if err != nil {
		return Summary{}, err
	}

	clock := platform.RealClock{}
	started := clock.Now()
	var outcomes []domain.SyncOutcome
	reduced := c.fleet.Run(ctx, refs, fleetapp.Options{
		Jobs: c.cfg.Jobs,
		OnOutcome: func(outcome domain.SyncOutcome) {
			outcomes = append(outcomes, outcome)
		},
	})
	finished := clock.Now()

	summary := Summary{
		Total:     reduced.Total,
		Cloned:    reduced.Cloned,
		Pulled:    reduced.Pulled,
		NoUpdates: reduced.NoUpdates,
		Recloned:  reduced.Recloned,
	}
	for _, failure := range reduced.Failures {
		summary.Failures = append(summary.Failures, toOutcome(failure))
	}

	if c.cfg.RecordHistory {
		ledger, err := runledger.Open(filepath.Join(c.cfg.MirrorRoot, "history.db"))
		if err != nil {
			return summary, err
		}
		defer func() {
			_ = ledger.Close()
		}()
		summary.RunID, err = ledger.RecordRun(ctx, started, finished, outcomes)
		if err != nil {
			return summary, err
		}
	}
	return summary, nil
}

// Delete removes the local mirrors of the selected locales.
func (c *Client) Delete(ctx context.Context, locales ...string) error {
	refs, err := c.resolver.Expand(locales, c.cfg.MirrorRoot)
	if err != nil {
		return err
	}
	remover := removal.New()
	for _, ref := range refs {
		if err := remover.Remove(ctx, ref.LocalPath); err != nil {
			return err
		}
	}
	return nil
}

func toOutcome(outcome domain.SyncOutcome) Outcome {
	return Outcome{
		Locale:     outcome.Locale.String(),
		Action:     string(outcome.Action),
		Reason:     outcome.Reason(),
		SizeBefore: outcome.SizeBefore,
		SizeAfter:  outcome.SizeAfter,
	}
}
