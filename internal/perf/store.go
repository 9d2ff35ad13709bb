package perf

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lanscope/lanscope/pkg/models"
	"github.com/lanscope/lanscope/pkg/plugin"
)

// migrations is the perf module's schema, applied through the shared store's
// per-module migration ledger.
var migrations = []plugin.Migration{
	{
		Version:     1,
		Description: "create perf_samples table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS perf_samples (
					id             INTEGER PRIMARY KEY AUTOINCREMENT,
					bandwidth_mbps REAL NOT NULL,
					latency_ms     REAL NOT NULL,
					created_at     TIMESTAMP NOT NULL
				);
				CREATE INDEX IF NOT EXISTS idx_perf_samples_created_at
					ON perf_samples(created_at DESC);
			`)
			return err
		},
	},
}

// sampleStore persists performance samples.
type sampleStore struct {
	store plugin.Store
}

func newSampleStore(store plugin.Store) *sampleStore {
	return &sampleStore{store: store}
}

// Insert saves a sample and returns it with the assigned ID.
func (s *sampleStore) Insert(ctx context.Context, sample models.PerformanceSample) (models.PerformanceSample, error) {
	res, err := s.store.DB().ExecContext(ctx,
		`INSERT INTO perf_samples (bandwidth_mbps, latency_ms, created_at) VALUES (?, ?, ?)`,
		sample.BandwidthMbps, sample.LatencyMs, sample.CreatedAt)
	if err != nil {
		return sample, fmt.Errorf("insert perf sample: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return sample, fmt.Errorf("perf sample id: %w", err)
	}
	sample.ID = id
	return sample, nil
}

// List returns the most recent samples, newest first.
func (s *sampleStore) List(ctx context.Context, limit int) ([]models.PerformanceSample, error) {
	rows, err := s.store.DB().QueryContext(ctx,
		`SELECT id, bandwidth_mbps, latency_ms, created_at
		 FROM perf_samples ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list perf samples: %w", err)
	}
	defer rows.Close()

	samples := make([]models.PerformanceSample, 0, limit)
	for rows.Next() {
		var sample models.PerformanceSample
		if err := rows.Scan(&sample.ID, &sample.BandwidthMbps, &sample.LatencyMs, &sample.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan perf sample: %w", err)
		}
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

// Prune drops samples beyond the newest keep entries.
func (s *sampleStore) Prune(ctx context.Context, keep int) error {
	_, err := s.store.DB().ExecContext(ctx,
		`DELETE FROM perf_samples WHERE id NOT IN (
			SELECT id FROM perf_samples ORDER BY created_at DESC, id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return fmt.Errorf("prune perf samples: %w", err)
	}
	return nil
}
