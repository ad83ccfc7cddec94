package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// dailyWriter tees log output to stdout and a per-day file under dir.
type dailyWriter struct {
	mu        sync.Mutex
	dir       string
	retention int
	date      string
	file      *os.File
	out       io.Writer
}

func newDailyWriter(dir string, retention int) (*dailyWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	w := &dailyWriter{dir: dir, retention: retention}
	if err := w.rotate(time.Now().Format(time.DateOnly)); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *dailyWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.out.Write(p)
}

func (w *dailyWriter) rotate(date string) error {
	file, err := openLogFile(w.dir, date)
	if err != nil {
		return err
	}
	if w.file != nil {
		_ = w.file.Close()
	}
	w.file = file
	w.date = date
	w.out = io.MultiWriter(os.Stdout, file)
	cleanupOldLogs(w.dir, w.retention, time.Now())
	return nil
}

// watch switches files at midnight until ctx is done.
func (w *dailyWriter) watch(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			date := time.Now().Format(time.DateOnly)
			w.mu.Lock()
			if date != w.date {
				if err := w.rotate(date); err != nil {
					fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
				}
			}
			w.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

func (w *dailyWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.out = os.Stdout
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// setupLogger installs a JSON slog logger. When the log directory is unusable
// it falls back to stdout only.
func setupLogger(ctx context.Context, dir string, retention int, level string) (*slog.Logger, func()) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	writer, err := newDailyWriter(dir, retention)
	if err != nil {
		logger := slog.New(slog.NewJSONHandler(os.Stdout, opts))
		logger.Warn("log file disabled", "dir", dir, "error", err)
		return logger, func() {}
	}
	go writer.watch(ctx)
	return slog.New(slog.NewJSONHandler(writer, opts)), func() { _ = writer.Close() }
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openLogFile(dir, date string) (*os.File, error) {
	filename := filepath.Join(dir, fmt.Sprintf("app-%s.log", date))
	return os.OpenFile(filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

func cleanupOldLogs(dir string, retentionDays int, now time.Time) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	cutoff := now.AddDate(0, 0, -(retentionDays - 1)).Format(time.DateOnly)
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() {
			continue
		}
		if !strings.HasPrefix(name, "app-") || !strings.HasSuffix(name, ".log") {
			continue
		}
		datePart := strings.TrimSuffix(strings.TrimPrefix(name, "app-"), ".log")
		if _, err := time.Parse(time.DateOnly, datePart); err != nil {
			continue
		}
		if datePart < cutoff {
			_ = os.Remove(filepath.Join(dir, name))
		}
	}
}
