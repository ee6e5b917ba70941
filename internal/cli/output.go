package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/windy-civi/govsync/internal/domain"
	"github.com/windy-civi/govsync/internal/infra/registry"
	"github.com/windy-civi/govsync/internal/infra/runledger"
)

func formatOutcome(ui renderer, outcome domain.SyncOutcome) string {
	action := string(outcome.Action)
	switch outcome.Action {
	case domain.ActionCloned, domain.ActionPulled:
		action = ui.ok(action)
	case domain.ActionRecloned:
		action = ui.warn(action)
	case domain.ActionNoUpdates:
		action = ui.dim(action)
	case domain.ActionFailed:
		action = ui.err(action)
	}

	line := fmt.Sprintf("%-6s %s", outcome.Locale, action)
	if outcome.Failed() {
		return line + " " + ui.dim(outcome.Reason())
	}
	return line + " " + ui.dim(formatSize(outcome.SizeAfter))
}

// formatSize renders a byte count with one decimal, binary units.
func formatSize(bytes int64) string {
	size := float64(bytes)
	for _, suffix := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024 {
			return fmt.Sprintf("%.1f %s", size, suffix)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1f TB", size)
}

type outcomeOutput struct {
	Locale     string `json:"locale"`
	Action     string `json:"action"`
	Reason     string `json:"reason,omitempty"`
	SizeBefore int64  `json:"size_before"`
	SizeAfter  int64  `json:"size_after"`
}

type summaryOutput struct {
	RunID      string          `json:"run_id,omitempty"`
	DurationMS int64           `json:"duration_ms"`
	Total      int             `json:"total"`
	Cloned     int             `json:"cloned"`
	Pulled     int             `json:"pulled"`
	NoUpdates  int             `json:"no_updates"`
	Recloned   int             `json:"recloned"`
	Failed     int             `json:"failed"`
	Outcomes   []outcomeOutput `json:"outcomes"`
}

func writeRunSummary(out io.Writer, ui renderer, summary domain.FleetRunSummary, elapsed time.Duration, runID string, asJSON bool, outcomes []domain.SyncOutcome) error {
	if asJSON {
		output := summaryOutput{
			RunID:      runID,
			DurationMS: elapsed.Milliseconds(),
			Total:      summary.Total,
			Cloned:     summary.Cloned,
			Pulled:     summary.Pulled,
			NoUpdates:  summary.NoUpdates,
			Recloned:   summary.Recloned,
			Failed:     len(summary.Failures),
			Outcomes:   make([]outcomeOutput, 0, len(outcomes)),
		}
		for _, outcome := range outcomes {
			output.Outcomes = append(output.Outcomes, outcomeOutput{
				Locale:     outcome.Locale.String(),
				Action:     string(outcome.Action),
				Reason:     outcome.Reason(),
				SizeBefore: outcome.SizeBefore,
				SizeAfter:  outcome.SizeAfter,
			})
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	}

	status := ui.ok("ok")
	if summary.Failed() {
		status = ui.err(fmt.Sprintf("%d failed", len(summary.Failures)))
	}
	_, err := fmt.Fprintf(out, "%s %d synced (%d cloned, %d pulled, %d up to date, %d recloned) in %s %s\n",
		ui.key("done:"),
		summary.Total,
		summary.Cloned,
		summary.Pulled,
		summary.NoUpdates,
		summary.Recloned,
		elapsed.Round(time.Millisecond),
		status,
	)
	return err
}

func writeLocaleList(cmd *cobra.Command, reg *registry.Registry, asJSON bool) error {
	out := cmd.OutOrStdout()
	known := reg.Known()

	if asJSON {
		locales := make([]string, 0, len(known))
		for _, locale := range known {
			locales = append(locales, locale.String())
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(struct {
			Locales []string `json:"locales"`
		}{Locales: locales})
	}

	ui := newRenderer(out, asJSON)
	for _, locale := range known {
		if _, err := fmt.Fprintf(out, "%-6s %s\n", ui.key(locale.String()), ui.dim(reg.RemoteURL(locale))); err != nil {
			return err
		}
	}
	return nil
}

func writeRunList(out io.Writer, runs []runledger.RunRecord, asJSON bool) error {
	if asJSON {
		type runOutput struct {
			ID         string `json:"id"`
			StartedAt  string `json:"started_at"`
			FinishedAt string `json:"finished_at"`
			Total      int    `json:"total"`
			Failed     int    `json:"failed"`
		}
		output := make([]runOutput, 0, len(runs))
		for _, run := range runs {
			output = append(output, runOutput{
				ID:         run.ID,
				StartedAt:  run.StartedAt.Format(time.RFC3339),
				FinishedAt: run.FinishedAt.Format(time.RFC3339),
				Total:      run.Total,
				Failed:     run.Failed,
			})
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(struct {
			Runs []runOutput `json:"runs"`
		}{Runs: output})
	}

	ui := newRenderer(out, asJSON)
	for _, run := range runs {
		status := ui.ok("ok")
		if run.Failed > 0 {
			status = ui.err(fmt.Sprintf("%d failed", run.Failed))
		}
		if _, err := fmt.Fprintf(out, "%s %s %d repos %s\n",
			ui.accent(run.ID),
			ui.dim(run.StartedAt.Format(time.RFC3339)),
			run.Total,
			status,
		); err != nil {
			return err
		}
	}
	return nil
}

func writeRunOutcomes(out io.Writer, records []runledger.OutcomeRecord, asJSON bool) error {
	if asJSON {
		output := make([]outcomeOutput, 0, len(records))
		for _, record := range records {
			output = append(output, outcomeOutput{
				Locale:     record.Locale,
				Action:     record.Action,
				Reason:     record.Reason,
				SizeBefore: record.SizeBefore,
				SizeAfter:  record.SizeAfter,
			})
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(struct {
			Outcomes []outcomeOutput `json:"outcomes"`
		}{Outcomes: output})
	}

	ui := newRenderer(out, asJSON)
	for _, record := range records {
		detail := formatSize(record.SizeAfter)
		if record.Reason != "" {
			detail = record.Reason
		}
		if _, err := fmt.Fprintf(out, "%-6s %-10s %s\n", record.Locale, record.Action, ui.dim(detail)); err != nil {
			return err
		}
	}
	return nil
}
