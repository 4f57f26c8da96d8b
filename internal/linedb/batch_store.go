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

// SegmentBatch is a persisted batch of raw detector segments, the input to a
// reduction run.
type SegmentBatch struct {
	BatchID   string          `json:"batch_id"`
	Label     string          `json:"label,omitempty"`
	Segments  []lines.Segment `json:"segments"`
	CreatedAt int64           `json:"created_at"`
}

// BatchStore provides persistence for segment batches.
type BatchStore struct {
	db *sql.DB
}

// NewBatchStore creates a new BatchStore.
func NewBatchStore(db *DB) *BatchStore {
	return &BatchStore{db: db.DB}
}

// Insert persists a new segment batch. If BatchID is empty, a UUID is generated.
func (s *BatchStore) Insert(batch *SegmentBatch) error {
	if batch.BatchID == "" {
		batch.BatchID = uuid.New().String()
	}
	if batch.CreatedAt == 0 {
		batch.CreatedAt = time.Now().UnixNano()
	}

	segmentsJSON, err := json.Marshal(batch.Segments)
	if err != nil {
		return fmt.Errorf("marshal segments: %w", err)
	}

	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO segment_batches (batch_id, label, segments, segment_count, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			batch.BatchID,
			batch.Label,
			string(segmentsJSON),
			len(batch.Segments),
			batch.CreatedAt,
		)
		return err
	})
}

// Get returns the batch with the given ID, or ErrNotFound.
func (s *BatchStore) Get(batchID string) (*SegmentBatch, error) {
	var (
		batch        SegmentBatch
		segmentsJSON string
	)
	err := s.db.QueryRow(`
		SELECT batch_id, label, segments, created_at
		FROM segment_batches WHERE batch_id = ?`, batchID).
		Scan(&batch.BatchID, &batch.Label, &segmentsJSON, &batch.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query batch %s: %w", batchID, err)
	}

	if err := json.Unmarshal([]byte(segmentsJSON), &batch.Segments); err != nil {
		return nil, fmt.Errorf("unmarshal segments for batch %s: %w", batchID, err)
	}

	return &batch, nil
}

// List returns up to limit batches, newest first. Segments are not loaded;
// use Get for the full batch.
func (s *BatchStore) List(limit int) ([]SegmentBatch, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT batch_id, label, created_at
		FROM segment_batches
		ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var batches []SegmentBatch
	for rows.Next() {
		var batch SegmentBatch
		if err := rows.Scan(&batch.BatchID, &batch.Label, &batch.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan batch row: %w", err)
		}
		batches = append(batches, batch)
	}

	return batches, rows.Err()
}
