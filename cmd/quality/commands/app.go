package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/internal/store/memory"
	"github.com/zezinho10632/DouglasApi/internal/store/postgres"
	"github.com/zezinho10632/DouglasApi/pkg/config"
	"github.com/zezinho10632/DouglasApi/pkg/database"
	"github.com/zezinho10632/DouglasApi/pkg/logger"
)

// loadConfig applies the global flags on top of the environment
func loadConfig() (*config.Config, error) {
	if env != "" {
		if err := os.Setenv("ENV", env); err != nil {
			return nil, err
		}
	}

	cfg, err := config.LoadFrom(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// bootstrap loads config and creates the logger
func bootstrap() (*config.Config, *logger.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.New(cfg), nil
}

// openStore returns the configured repositories and a closer.
// The postgres store is migrated before use.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*contracts.Repositories, func(), error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("Using in-memory store; data is lost on exit")
		return memory.New().Repositories(), func() {}, nil
	}

	db, err := database.New(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	store := postgres.New(db)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info("Connected to database")
	return store.Repositories(), db.Close, nil
}
