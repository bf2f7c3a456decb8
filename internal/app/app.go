// Package app wires configuration into the catalog, schedule, history and HTTP server.
package app

import (
	"context"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tariff-duty/adapters/ingest"
	"tariff-duty/adapters/watch"
	"tariff-duty/api"
	"tariff-duty/core/catalog"
	"tariff-duty/core/duty"
	"tariff-duty/core/history"
	"tariff-duty/internal/config"
	"tariff-duty/internal/errors"
	"tariff-duty/internal/logging"
)

// Version is the application version
const Version = "1.0.0"

// App holds the runtime components built from a configuration
type App struct {
	Config   *config.Config
	Store    *catalog.Store
	Schedule *duty.Schedule
	History  *history.Log
}

// New builds the components. The catalog file, when configured, must load;
// an empty schedule path selects the built-in schedule.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	sched, err := LoadSchedule(cfg.Duty.SchedulePath)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Store:    catalog.NewStore(),
		Schedule: sched,
		History:  history.New(cfg.History.MaxItems),
	}

	if cfg.Catalog.Path != "" {
		report, err := ingest.LoadFile(a.Store, cfg.Catalog.Path)
		if err != nil {
			return nil, err
		}
		logging.Debug("catalog ready",
			zap.String("path", cfg.Catalog.Path),
			zap.Int("accepted", report.Accepted))
	}
	return a, nil
}

// LoadSchedule loads an HCL schedule, or the built-in one when path is empty
func LoadSchedule(path string) (*duty.Schedule, error) {
	if path == "" {
		return duty.Default2026(), nil
	}
	return duty.LoadHCL(path)
}

// Server builds the HTTP server over the app components
func (a *App) Server(version string) *api.Server {
	return api.NewServer(api.Options{
		Version:        version,
		Store:          a.Store,
		Schedule:       a.Schedule,
		History:        a.History,
		SearchLimit:    a.Config.Search.EndpointLimit,
		CategoryLimit:  a.Config.Search.CategoryLimit,
		MaxUploadBytes: int64(a.Config.Server.MaxUploadMB) << 20,
	})
}

// Serve runs the HTTP server, and the catalog watcher when enabled, until ctx is done
// or either fails.
func (a *App) Serve(ctx context.Context, version string) error {
	var reloader *watch.Reloader
	if a.Config.Catalog.Watch {
		if _, err := os.Stat(a.Config.Catalog.Path); err != nil {
			return errors.Config("catalog file to watch is not accessible", err).
				WithContext("path", a.Config.Catalog.Path)
		}
		reloader = watch.NewReloader(a.Config.Catalog.Path, a.Store)
	}

	g, ctx := errgroup.WithContext(ctx)

	srv := a.Server(version)
	g.Go(func() error {
		return srv.ListenAndServe(ctx, a.Config.Server.Addr)
	})
	if reloader != nil {
		g.Go(func() error {
			return reloader.Run(ctx)
		})
	}

	return g.Wait()
}
