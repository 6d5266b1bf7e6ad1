// Package archive stores rendered reports in object storage.
package archive

import (
	"context"
	"log/slog"
)

// Archiver persists a report body under key and returns its location.
type Archiver interface {
	Archive(ctx context.Context, key string, body []byte, contentType string) (string, error)
	Enabled() bool
}

// NoopArchiver is used when no bucket is configured. It logs and discards.
type NoopArchiver struct{}

// Archive logs the skipped upload.
func (NoopArchiver) Archive(_ context.Context, key string, body []byte, _ string) (string, error) {
	slog.Info("report_archive_skipped", "key", key, "bytes", len(body))
	return "", nil
}

// Enabled reports false: nothing is stored.
func (NoopArchiver) Enabled() bool { return false }
