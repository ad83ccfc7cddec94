package store

import (
	"context"

	"jeopardy-trainer-go/internal/models"
)

func (s *Store) InsertMetricSample(ctx context.Context, sample models.ServerMetricSample) error {
	_, err := s.db.NamedExecContext(ctx, `
INSERT INTO server_metric_samples (
  id, captured_at, process_rss_bytes, go_heap_bytes, goroutines, system_memory_total_bytes,
  system_memory_used_bytes, disk_total_bytes, disk_used_bytes, process_cpu_load, system_cpu_load
) VALUES (
  :id, :captured_at, :process_rss_bytes, :go_heap_bytes, :goroutines, :system_memory_total_bytes,
  :system_memory_used_bytes, :disk_total_bytes, :disk_used_bytes, :process_cpu_load, :system_cpu_load
)`, sample)
	return err
}

func (s *Store) MetricSamples(ctx context.Context, limit int) ([]models.ServerMetricSample, error) {
	rows := []models.ServerMetricSample{}
	err := s.db.SelectContext(ctx, &rows, `
SELECT id, captured_at, process_rss_bytes, go_heap_bytes, goroutines, system_memory_total_bytes,
       system_memory_used_bytes, disk_total_bytes, disk_used_bytes, process_cpu_load, system_cpu_load
FROM server_metric_samples
ORDER BY captured_at DESC
LIMIT $1
`, limit)
	return rows, err
}

// PruneMetricSamples keeps the newest keep rows.
func (s *Store) PruneMetricSamples(ctx context.Context, keep int) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
DELETE FROM server_metric_samples
WHERE id NOT IN (SELECT id FROM server_metric_samples ORDER BY captured_at DESC LIMIT $1)
`, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
