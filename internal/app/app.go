// Package app wires configuration, storage and services together.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/studentfees/internal/config"
	"github.com/mmynk/studentfees/internal/metrics"
	"github.com/mmynk/studentfees/internal/service"
	"github.com/mmynk/studentfees/internal/storage"
	"github.com/mmynk/studentfees/internal/storage/postgres"
	"github.com/mmynk/studentfees/internal/storage/sqlite"
)

// App holds the constructed services over one store.
type App struct {
	Store    storage.Store
	Metrics  *metrics.Metrics
	Students *service.StudentService
	Courses  *service.CourseService
	Fees     *service.FeeService
}

// OpenStore opens the store selected by cfg.DBDriver.
func OpenStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		store, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "driver", cfg.DBDriver, "database", cfg.DBPath)
		return store, nil
	case config.DriverPostgres:
		store, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		slog.Info("Storage initialized", "driver", cfg.DBDriver)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.DBDriver)
	}
}

// New opens the store and builds the services. reg may be nil, in which case
// no metrics are recorded. Sample data is loaded when cfg.SeedSampleData is set.
func New(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (*App, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	a := NewWithStore(store, reg)

	if cfg.SeedSampleData {
		if err := a.Seed(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to seed sample data: %w", err)
		}
	}

	return a, nil
}

// NewWithStore builds the services over an already opened store.
func NewWithStore(store storage.Store, reg prometheus.Registerer) *App {
	var m *metrics.Metrics
	if reg != nil {
		m = metrics.New(reg)
	}
	return &App{
		Store:    store,
		Metrics:  m,
		Students: service.NewStudentService(store),
		Courses:  service.NewCourseService(store),
		Fees:     service.NewFeeService(store, m),
	}
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}
