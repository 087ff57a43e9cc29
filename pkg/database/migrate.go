package database

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"go-pos-ws/internal/config"
)

// Migrate applies (steps > 0), reverts (steps < 0) or fully applies (steps == 0)
// the SQL migrations under cfg.MigrationsPath.
func Migrate(cfg config.DatabaseConfig, steps int, log *zap.Logger) error {
	if cfg.Driver != "postgres" {
		return fmt.Errorf("sql migrations only target postgres, got %q", cfg.Driver)
	}

	m, err := migrate.New("file://"+cfg.MigrationsPath, cfg.MigrateURL())
	if err != nil {
		return fmt.Errorf("create migrate: %w", err)
	}
	defer m.Close()

	if steps == 0 {
		err = m.Up()
	} else {
		err = m.Steps(steps)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return verr
	}
	log.Info("migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
