package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
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

var errNothingSelected = errors.New("no locales selected; pass locale codes or 'all'")

const historyFileName = "history.db"

func newSyncCmd(opts *RootOptions) *cobra.Command {
	var mirrorRoot string
	var token string
	var jobs int
	var verbose bool
	var list bool
	var registryPath string
	var noHistory bool

	cmd := &cobra.Command{
		Use:   "sync [locale ...]",
		Short: "Clone or update locale mirrors",
		Long: "Clone or update locale data-pipeline mirrors.\n\n" +
			"With no arguments, updates every mirror already present under the mirror root.\n" +
			"Pass locale codes to select specific repositories, or 'all' for every known locale.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				if _, err := platform.ConfigureLogger("debug", opts.LogFormat, cmd.ErrOrStderr()); err != nil {
					return err
				}
			}

			reg, err := loadRegistry(registryPath)
			if err != nil {
				return err
			}
			if list {
				return writeLocaleList(cmd, reg, opts.JSONOutput)
			}

			refs, err := resolve.NewService(reg).Expand(args, mirrorRoot)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			ui := newRenderer(out, opts.JSONOutput)
			if len(refs) == 0 {
				if !opts.JSONOutput {
					fmt.Fprintln(out, ui.dim("no mirrors to sync"))
				}
				return nil
			}

			store := gitmirror.NewStoreWithOptions(gitmirror.StoreOptions{Token: token})
			single := syncapp.NewService(store, removal.New(), slog.Default())
			orchestrator := fleetapp.NewService(single, slog.Default())

			clock := platform.RealClock{}
			started := clock.Now()
			var outcomes []domain.SyncOutcome
			summary := orchestrator.Run(cmd.Context(), refs, fleetapp.Options{
				Jobs: jobs,
				OnOutcome: func(outcome domain.SyncOutcome) {
					outcomes = append(outcomes, outcome)
					if !opts.JSONOutput {
						fmt.Fprintln(out, formatOutcome(ui, outcome))
					}
				},
			})
			finished := clock.Now()

			runID := ""
			if !noHistory {
				runID, err = recordRun(cmd.Context(), mirrorRoot, started, finished, outcomes)
				if err != nil {
					slog.Warn("run history not recorded", "error", err)
				}
			}

			if err := writeRunSummary(out, ui, summary, finished.Sub(started), runID, opts.JSONOutput, outcomes); err != nil {
				return err
			}
			if summary.Failed() {
				return ExitError{
					Code:    ExitInternal,
					Kind:    KindInternal,
					Message: fmt.Sprintf("%d of %d repositories failed to sync", len(summary.Failures), summary.Total),
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mirrorRoot, "mirror-root", defaultMirrorRoot(), "Directory that holds the local mirrors")
	cmd.Flags().StringVar(&token, "token", "", "Access token for the git host (defaults to GOVSYNC_TOKEN/GITHUB_TOKEN)")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", envIntDefault("GOVSYNC_JOBS", fleetapp.DefaultJobs), "Number of repositories to sync concurrently")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.Flags().BoolVar(&list, "list", false, "List known locales and exit")
	cmd.Flags().StringVar(&registryPath, "registry", "", "JSON merge patch applied to the built-in locale registry")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Skip recording this run in the history ledger")
	return cmd
}

func newDeleteCmd(opts *RootOptions) *cobra.Command {
	var mirrorRoot string

	cmd := &cobra.Command{
		Use:   "delete <locale ...|all>",
		Short: "Delete local locale mirrors",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errNothingSelected
			}
			reg, err := loadRegistry("")
			if err != nil {
				return err
			}
			refs, err := resolve.NewService(reg).Expand(args, mirrorRoot)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ui := newRenderer(out, opts.JSONOutput)
			remover := removal.New()
			store := gitmirror.NewStore()

			type deletion struct {
				Locale string `json:"locale"`
				Freed  int64  `json:"freed_bytes"`
			}
			var deleted []deletion
			for _, ref := range refs {
				if _, err := os.Lstat(ref.LocalPath); errors.Is(err, os.ErrNotExist) {
					continue
				}
				size := store.TreeSize(ref.LocalPath)
				if err := remover.Remove(cmd.Context(), ref.LocalPath); err != nil {
					return fmt.Errorf("delete %s: %w", ref.Locale, err)
				}
				deleted = append(deleted, deletion{Locale: ref.Locale.String(), Freed: size})
				if !opts.JSONOutput {
					fmt.Fprintf(out, "%s %s %s\n", ui.warn("deleted"), ref.Locale.DirName(), ui.dim(formatSize(size)+" freed"))
				}
			}

			if opts.JSONOutput {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(struct {
					Deleted []deletion `json:"deleted"`
				}{Deleted: deleted})
			}
			if len(deleted) == 0 {
				fmt.Fprintln(out, ui.dim("nothing to delete"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mirrorRoot, "mirror-root", defaultMirrorRoot(), "Directory that holds the local mirrors")
	return cmd
}

func newHistoryCmd(opts *RootOptions) *cobra.Command {
	var mirrorRoot string
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past sync runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ledger, err := runledger.Open(filepath.Join(mirrorRoot, historyFileName))
			if err != nil {
				return err
			}
			defer func() {
				_ = ledger.Close()
			}()

			if runID != "" {
				records, err := ledger.Outcomes(cmd.Context(), runID)
				if err != nil {
					return err
				}
				return writeRunOutcomes(cmd.OutOrStdout(), records, opts.JSONOutput)
			}

			runs, err := ledger.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return writeRunList(cmd.OutOrStdout(), runs, opts.JSONOutput)
		},
	}

	cmd.Flags().StringVar(&mirrorRoot, "mirror-root", defaultMirrorRoot(), "Directory that holds the local mirrors")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	cmd.Flags().StringVar(&runID, "run", "", "Show per-locale outcomes of one run")
	return cmd
}

func loadRegistry(patchPath string) (*registry.Registry, error) {
	if patchPath != "" {
		return registry.LoadWithOverlay(patchPath)
	}
	return registry.Load()
}

func recordRun(ctx context.Context, mirrorRoot string, started, finished time.Time, outcomes []domain.SyncOutcome) (string, error) {
	ledger, err := runledger.Open(filepath.Join(mirrorRoot, historyFileName))
	if err != nil {
		return "", err
	}
	defer func() {
		_ = ledger.Close()
	}()
	return ledger.RecordRun(ctx, started, finished, outcomes)
}
