package db

import (
	"errors"
	"fmt"

	"shopcore/internal/pkg/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrate applies all pending schema migrations from sourceURL
// (e.g. "file://db/migrations"). Already-applied versions are a no-op.
func Migrate(cfg config.DBConfig, sourceURL string) error {
	m, err := migrate.New(sourceURL, cfg.BuildDSN())
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
