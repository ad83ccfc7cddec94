package services

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"jeopardy-trainer-go/internal/models"
)

const (
	EventMetrics     = "metrics"
	MaxMetricHistory = 500
)

type MetricStore interface {
	InsertMetricSample(ctx context.Context, sample models.ServerMetricSample) error
	// MetricSamples returns the newest samples first.
	MetricSamples(ctx context.Context, limit int) ([]models.ServerMetricSample, error)
}

// CaptureMetrics reads process and host usage. Probes that fail leave their fields zero.
func CaptureMetrics(diskPath string) models.ServerMetricSample {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	sample := models.ServerMetricSample{
		ID:          uuid.NewString(),
		CapturedAt:  time.Now().UTC(),
		GoHeapBytes: int64(ms.HeapAlloc),
		Goroutines:  runtime.NumGoroutine(),
	}
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if info, err := proc.MemoryInfo(); err == nil && info != nil {
			sample.ProcessRSSBytes = int64(info.RSS)
		}
		if pct, err := proc.CPUPercent(); err == nil {
			sample.ProcessCpuLoad = pct / 100.0
		}
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		sample.SystemMemoryTotal = int64(vm.Total)
		sample.SystemMemoryUsed = int64(vm.Total - vm.Available)
	}
	usage, err := disk.Usage(diskPath)
	if err != nil {
		usage, err = disk.Usage("/")
	}
	if err == nil {
		sample.DiskTotalBytes = int64(usage.Total)
		sample.DiskUsedBytes = int64(usage.Used)
	}
	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		sample.SystemCpuLoad = pcts[0] / 100.0
	}
	return sample
}

// RecordMetrics captures, stores and broadcasts one sample.
func RecordMetrics(ctx context.Context, st MetricStore, hub EventPublisher, diskPath string) (models.ServerMetricSample, error) {
	sample := CaptureMetrics(diskPath)
	if err := st.InsertMetricSample(ctx, sample); err != nil {
		return models.ServerMetricSample{}, err
	}
	if hub != nil {
		hub.Publish(Event{Type: EventMetrics, At: sample.CapturedAt, Data: sample})
	}
	return sample, nil
}

// MetricHistory returns up to limit samples, oldest first.
func MetricHistory(ctx context.Context, st MetricStore, limit int) ([]models.ServerMetricSample, error) {
	if limit <= 0 || limit > MaxMetricHistory {
		limit = MaxMetricHistory
	}
	rows, err := st.MetricSamples(ctx, limit)
	if err != nil {
		return nil, err
	}
	items := make([]models.ServerMetricSample, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		items = append(items, rows[i])
	}
	return items, nil
}
