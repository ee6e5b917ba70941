package runledger

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/windy-civi/govsync/internal/domain"
	_ "modernc.org/sqlite"
)

// Store keeps a per-mirror-root history of fleet runs so an operator can
// see what each sync did after the fact and decide whether to retry a
// failed subset.
type Store struct {
	db      *sql.DB
	entropy *ulid.MonotonicEntropy
}

type RunRecord struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Failed     int
}

type OutcomeRecord struct {
	Locale     string
	Action     string
	Reason     string
	SizeBefore int64
	SizeAfter  int64
}

var ErrRunNotFound = errors.New("run not found")

func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("run ledger path required")
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create run ledger dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open run ledger: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &Store{db: db, entropy: ulid.Monotonic(rand.Reader, 0)}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRun stores one fleet run and its outcomes atomically and returns
// the assigned run id.
func (s *Store) RecordRun(ctx context.Context, startedAt, finishedAt time.Time, outcomes []domain.SyncOutcome) (string, error) {
	runID, err := s.newRunID()
	if err != nil {
		return "", err
	}

	summary := domain.Summarize(outcomes)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin run ledger tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, started_at, finished_at, total, failed)
		VALUES (?, ?, ?, ?, ?)
	`, runID, startedAt.UTC().UnixMilli(), finishedAt.UTC().UnixMilli(), summary.Total, len(summary.Failures))
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, outcome := range outcomes {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO outcomes (run_id, locale, action, reason, size_before, size_after)
			VALUES (?, ?, ?, ?, ?, ?)
		`, runID, outcome.Locale.String(), string(outcome.Action), outcome.Reason(), outcome.SizeBefore, outcome.SizeAfter)
		if err != nil {
			return "", fmt.Errorf("insert outcome for %s: %w", outcome.Locale, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run ledger tx: %w", err)
	}
	return runID, nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, started_at, finished_at, total, failed
		FROM runs ORDER BY run_id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("read runs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var runs []RunRecord
	for rows.Next() {
		var record RunRecord
		var started, finished int64
		if err := rows.Scan(&record.ID, &started, &finished, &record.Total, &record.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		record.StartedAt = time.UnixMilli(started).UTC()
		record.FinishedAt = time.UnixMilli(finished).UTC()
		runs = append(runs, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read runs: %w", err)
	}
	return runs, nil
}

// Outcomes returns the per-locale outcomes of one run in insertion order.
func (s *Store) Outcomes(ctx context.Context, runID string) ([]OutcomeRecord, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM runs WHERE run_id = ?", runID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}
	if exists == 0 {
		return nil, ErrRunNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT locale, action, reason, size_before, size_after
		FROM outcomes WHERE run_id = ? ORDER BY rowid
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read outcomes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var outcomes []OutcomeRecord
	for rows.Next() {
		var record OutcomeRecord
		if err := rows.Scan(&record.Locale, &record.Action, &record.Reason, &record.SizeBefore, &record.SizeAfter); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		outcomes = append(outcomes, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read outcomes: %w", err)
	}
	return outcomes, nil
}

func (s *Store) newRunID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), s.entropy)
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	return id.String(), nil
}

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			total INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS outcomes (
			run_id TEXT NOT NULL REFERENCES runs(run_id),
			locale TEXT NOT NULL,
			action TEXT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			size_before INTEGER NOT NULL DEFAULT 0,
			size_after INTEGER NOT NULL DEFAULT 0
		)
	`); err != nil {
		return fmt.Errorf("create outcomes table: %w", err)
	}
	return nil
}
