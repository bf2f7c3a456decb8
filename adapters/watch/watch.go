// Package watch reloads the catalog when its source file changes.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"tariff-duty/adapters/ingest"
	"tariff-duty/internal/errors"
	"tariff-duty/internal/logging"
)

// DefaultDebounce coalesces bursts of write events from editors and copy tools
const DefaultDebounce = 250 * time.Millisecond

// Reloader watches one catalog file
type Reloader struct {
	path     string
	dst      ingest.Loader
	debounce time.Duration

	// OnReload, if set, is called after every reload attempt
	OnReload func(ingest.Report, error)
}

// NewReloader creates a reloader for path feeding dst
func NewReloader(path string, dst ingest.Loader) *Reloader {
	return &Reloader{
		path:     filepath.Clean(path),
		dst:      dst,
		debounce: DefaultDebounce,
	}
}

// WithDebounce sets the quiet period before a reload
func (r *Reloader) WithDebounce(d time.Duration) *Reloader {
	r.debounce = d
	return r
}

// Run watches the file's directory until ctx is done.
// The directory is watched so that rename-over-target writes are seen.
func (r *Reloader) Run(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Internal("failed to create watcher", err)
	}
	defer w.Close()

	dir := filepath.Dir(r.path)
	if err := w.Add(dir); err != nil {
		return errors.Config("failed to watch catalog directory", err).WithContext("dir", dir)
	}
	logging.Info("watching catalog", zap.String("path", r.path))

	timer := time.NewTimer(r.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != r.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(r.debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logging.Warn("catalog watcher error", zap.Error(err))

		case <-timer.C:
			r.reload()
		}
	}
}

func (r *Reloader) reload() {
	report, err := ingest.LoadFile(r.dst, r.path)
	if err != nil {
		logging.Warn("catalog reload failed",
			zap.String("path", r.path),
			zap.Int("rejected", report.Rejected),
			zap.Error(err))
	} else {
		logging.Info("catalog reloaded",
			zap.String("path", r.path),
			zap.Int("accepted", report.Accepted),
			zap.Int("rejected", report.Rejected))
	}
	if r.OnReload != nil {
		r.OnReload(report, err)
	}
}
