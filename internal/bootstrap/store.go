package bootstrap

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightdata/config"
	"github.com/Domenick1991/flightdata/internal/database"
	"github.com/Domenick1991/flightdata/internal/repository"
	"go.uber.org/zap"
)

// Store is a constructed record store together with its connection
// lifecycle.
type Store struct {
	Repository repository.FlightRepository
	Ping       func(ctx context.Context) error
	Close      func()
}

// OpenStore builds the repository selected by cfg.Store.Backend.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, error) {
	switch cfg.Store.Backend {
	case config.BackendPGX:
		pool, err := database.OpenPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		logger.Info("flight store ready", zap.String("backend", cfg.Store.Backend))
		return &Store{
			Repository: repository.NewFlightRepository(pool),
			Ping:       pool.Ping,
			Close:      pool.Close,
		}, nil

	case config.BackendGorm:
		db, err := database.OpenGorm(cfg.Database)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("gorm sql handle: %w", err)
		}
		repo := repository.NewGormFlightRepository(db)
		if cfg.Database.Driver == config.DriverSQLite {
			if err := repo.Migrate(ctx); err != nil {
				_ = sqlDB.Close()
				return nil, fmt.Errorf("migrate sqlite: %w", err)
			}
		}
		logger.Info("flight store ready",
			zap.String("backend", cfg.Store.Backend),
			zap.String("driver", cfg.Database.Driver),
		)
		return &Store{
			Repository: repo,
			Ping:       sqlDB.PingContext,
			Close:      func() { _ = sqlDB.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
