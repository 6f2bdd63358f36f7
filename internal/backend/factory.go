package backend

import (
	"context"
	"fmt"
	"log/slog"

	"caixa/internal/store/csvfile"
	"caixa/internal/store/memory"
	"caixa/internal/store/postgres"
	"caixa/internal/store/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateRepository implements Factory.CreateRepository
func (f *DefaultFactory) CreateRepository(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case CSVBackend:
		repo, err := csvfile.NewRepository(config.CSVPath)
		if err != nil {
			return nil, fmt.Errorf("initialize csv repository: %w", err)
		}
		f.logger.Info("Initialized CSV backend", "path", config.CSVPath)
		return &Result{Repository: repo, Cleanup: repo.Close}, nil

	case SQLiteBackend:
		repo, err := sqlite.NewRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return &Result{Repository: repo, Cleanup: repo.Close}, nil

	case PostgresBackend:
		repo, err := postgres.NewRepository(ctx, config.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("initialize postgres repository: %w", err)
		}
		f.logger.Info("Initialized PostgreSQL backend")
		return &Result{Repository: repo, Cleanup: repo.Close}, nil

	case MemoryBackend:
		repo := memory.NewRepository()
		f.logger.Info("Initialized memory backend")
		return &Result{Repository: repo, Cleanup: nil}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
