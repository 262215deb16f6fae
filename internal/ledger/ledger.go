// Package ledger keeps a durable record of audit outcomes: one row per
// dataset per run, written through a storage.Repository.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ccerddap/internal/report"
	"ccerddap/internal/storage"
)

// DefaultTable is the ledger table used when none is configured.
const DefaultTable = "cc_erddap_results"

// Status values.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Entry is one dataset outcome.
type Entry struct {
	ServerHost    string
	DatasetID     string
	DataStructure string
	SampleURL     string
	SampleXXH3    string
	SampleBytes   int64
	Passed        bool
	Status        string
	FailureKind   string
	Error         string
	Scores        map[string]report.Score
	CheckedAt     time.Time
}

// Table returns the ledger table definition for fqn.
func Table(fqn string) storage.TableDef {
	return storage.TableDef{
		FQN: fqn,
		Columns: []storage.ColumnDef{
			{Name: "run_id", Type: storage.TypeKey, PrimaryKey: true},
			{Name: "dataset_id", Type: storage.TypeKey, PrimaryKey: true},
			{Name: "server_host", Type: storage.TypeText},
			{Name: "data_structure", Type: storage.TypeText},
			{Name: "sample_url", Type: storage.TypeText},
			{Name: "sample_xxh3", Type: storage.TypeText},
			{Name: "sample_bytes", Type: storage.TypeBigInt},
			{Name: "passed", Type: storage.TypeBool},
			{Name: "status", Type: storage.TypeText},
			{Name: "failure_kind", Type: storage.TypeText},
			{Name: "error", Type: storage.TypeText, Nullable: true},
			{Name: "scores", Type: storage.TypeText, Nullable: true},
			{Name: "checked_at", Type: storage.TypeTimestamp},
		},
	}
}

// Ledger appends entries for one run.
type Ledger struct {
	repo    storage.Repository
	runID   string
	columns []string
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Open connects to the configured backend and makes sure the ledger table
// exists. An empty cfg.Table uses DefaultTable.
func Open(ctx context.Context, cfg storage.Config, runID string) (*Ledger, error) {
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}
	repo, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ledger: open %s: %w", cfg.Kind, err)
	}
	td := Table(cfg.Table)
	if err := storage.EnsureTable(ctx, cfg.Kind, repo, td); err != nil {
		repo.Close()
		return nil, fmt.Errorf("ledger: %w", err)
	}
	return &Ledger{repo: repo, runID: runID, columns: td.ColumnNames()}, nil
}

// RunID identifies this run's rows.
func (l *Ledger) RunID() string { return l.runID }

// Record appends e.
func (l *Ledger) Record(ctx context.Context, e Entry) error {
	row, err := l.row(e)
	if err != nil {
		return err
	}
	if _, err := l.repo.CopyFrom(ctx, l.columns, [][]any{row}); err != nil {
		return fmt.Errorf("ledger: record %s: %w", e.DatasetID, err)
	}
	return nil
}

// Close releases the backend.
func (l *Ledger) Close() { l.repo.Close() }

func (l *Ledger) row(e Entry) ([]any, error) {
	var scores any
	if len(e.Scores) > 0 {
		b, err := json.Marshal(e.Scores)
		if err != nil {
			return nil, fmt.Errorf("ledger: encode scores for %s: %w", e.DatasetID, err)
		}
		scores = string(b)
	}
	var errText any
	if e.Error != "" {
		errText = e.Error
	}
	checkedAt := e.CheckedAt
	if checkedAt.IsZero() {
		checkedAt = time.Now()
	}
	return []any{
		l.runID,
		e.DatasetID,
		e.ServerHost,
		e.DataStructure,
		e.SampleURL,
		e.SampleXXH3,
		e.SampleBytes,
		e.Passed,
		e.Status,
		e.FailureKind,
		errText,
		scores,
		checkedAt.UTC(),
	}, nil
}
