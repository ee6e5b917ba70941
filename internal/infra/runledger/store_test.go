package runledger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/windy-civi/govsync/internal/domain"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestRecordAndReadRun(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	started := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	finished := started.Add(90 * time.Second)
	outcomes := []domain.SyncOutcome{
		{Locale: "il", Action: domain.ActionCloned, SizeAfter: 1024},
		{Locale: "usa", Action: domain.ActionNoUpdates, SizeBefore: 2048, SizeAfter: 2048},
		{Locale: "vt", Action: domain.ActionFailed, Err: errors.New("remote unreachable")},
	}

	runID, err := store.RecordRun(ctx, started, finished, outcomes)
	if err != nil {
		t.Fatalf("RecordRun returned error: %v", err)
	}
	if runID == "" {
		t.Fatal("expected a run id")
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns returned error: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one run, got %d", len(runs))
	}
	run := runs[0]
	if run.ID != runID || run.Total != 3 || run.Failed != 1 {
		t.Fatalf("unexpected run record: %+v", run)
	}
	if !run.StartedAt.Equal(started) || !run.FinishedAt.Equal(finished) {
		t.Fatalf("unexpected timestamps: %+v", run)
	}

	records, err := store.Outcomes(ctx, runID)
	if err != nil {
		t.Fatalf("Outcomes returned error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected three outcomes, got %d", len(records))
	}
	if records[0].Locale != "il" || records[0].Action != "cloned" || records[0].SizeAfter != 1024 {
		t.Fatalf("unexpected first outcome: %+v", records[0])
	}
	if records[2].Reason != "remote unreachable" {
		t.Fatalf("expected failure reason, got %+v", records[2])
	}
}

func TestRecentRunsOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	now := time.Now().UTC()
	first, err := store.RecordRun(ctx, now, now, []domain.SyncOutcome{{Locale: "ak", Action: domain.ActionPulled}})
	if err != nil {
		t.Fatalf("RecordRun returned error: %v", err)
	}
	second, err := store.RecordRun(ctx, now, now, []domain.SyncOutcome{{Locale: "ak", Action: domain.ActionNoUpdates}})
	if err != nil {
		t.Fatalf("RecordRun returned error: %v", err)
	}

	runs, err := store.RecentRuns(ctx, 1)
	if err != nil {
		t.Fatalf("RecentRuns returned error: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != second {
		t.Fatalf("expected newest run %s first, got %+v", second, runs)
	}
	if first == second {
		t.Fatal("expected distinct run ids")
	}
}

func TestOutcomesForUnknownRun(t *testing.T) {
	store := openStore(t)
	_, err := store.Outcomes(context.Background(), "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	if !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}
