package linedb

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sightline-data/linedup/lines"
)

// ReductionRun records one reduction over a stored batch: the tuning it ran
// with, the index groups it found and the representative segments it kept.
type ReductionRun struct {
	RunID       string          `json:"run_id"`
	BatchID     string          `json:"batch_id"`
	Method      string          `json:"method"`
	Threshold   float64         `json:"threshold"`
	KeepLongest bool            `json:"keep_longest"`
	Params      json.RawMessage `json:"params,omitempty"`
	InputCount  int             `json:"input_count"`
	OutputCount int             `json:"output_count"`
	Groups      [][]int         `json:"groups"`
	Reduced     []lines.Segment `json:"reduced"`
	CreatedAt   int64           `json:"created_at"`
}

// RunStore provides persistence for reduction runs.
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db.DB}
}

// Insert persists a new reduction run. If RunID is empty, a UUID is generated.
func (s *RunStore) Insert(run *ReductionRun) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}

	groupsJSON, err := json.Marshal(run.Groups)
	if err != nil {
		return fmt.Errorf("marshal groups: %w", err)
	}
	reducedJSON, err := json.Marshal(run.Reduced)
	if err != nil {
		return fmt.Errorf("marshal reduced segments: %w", err)
	}

	var paramsStr interface{}
	if len(run.Params) > 0 {
		paramsStr = string(run.Params)
	}

	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO reduction_runs (
				run_id, batch_id, method, threshold, keep_longest, params,
				input_count, output_count, groups, reduced, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID,
			run.BatchID,
			run.Method,
			run.Threshold,
			run.KeepLongest,
			paramsStr,
			run.InputCount,
			run.OutputCount,
			string(groupsJSON),
			string(reducedJSON),
			run.CreatedAt,
		)
		return err
	})
}

// Get returns the run with the given ID, or ErrNotFound.
func (s *RunStore) Get(runID string) (*ReductionRun, error) {
	row := s.db.QueryRow(`
		SELECT run_id, batch_id, method, threshold, keep_longest, params,
		       input_count, output_count, groups, reduced, created_at
		FROM reduction_runs WHERE run_id = ?`, runID)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", runID, err)
	}
	return run, nil
}

// ListByBatch returns all runs for a batch, newest first.
func (s *RunStore) ListByBatch(batchID string) ([]ReductionRun, error) {
	rows, err := s.db.Query(`
		SELECT run_id, batch_id, method, threshold, keep_longest, params,
		       input_count, output_count, groups, reduced, created_at
		FROM reduction_runs
		WHERE batch_id = ?
		ORDER BY created_at DESC`, batchID)
	if err != nil {
		return nil, fmt.Errorf("list runs for batch %s: %w", batchID, err)
	}
	defer rows.Close()

	var runs []ReductionRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*ReductionRun, error) {
	var (
		run         ReductionRun
		params      sql.NullString
		groupsJSON  string
		reducedJSON string
	)
	err := row.Scan(
		&run.RunID,
		&run.BatchID,
		&run.Method,
		&run.Threshold,
		&run.KeepLongest,
		&params,
		&run.InputCount,
		&run.OutputCount,
		&groupsJSON,
		&reducedJSON,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if params.Valid && params.String != "" {
		run.Params = json.RawMessage(params.String)
	}
	if err := json.Unmarshal([]byte(groupsJSON), &run.Groups); err != nil {
		return nil, fmt.Errorf("unmarshal groups: %w", err)
	}
	if err := json.Unmarshal([]byte(reducedJSON), &run.Reduced); err != nil {
		return nil, fmt.Errorf("unmarshal reduced segments: %w", err)
	}

	return &run, nil
}
