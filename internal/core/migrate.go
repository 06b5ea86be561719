// AngelaMos | 2026
// migrate.go

package core

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Migrate applies every pending up migration from src and returns the
// resulting schema version. It uses its own short-lived connection because
// the migrate driver closes the handle it is given.
func Migrate(databaseURL string, src fs.FS) (uint, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return 0, fmt.Errorf("open migration connection: %w", err)
	}

	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		_ = db.Close() //nolint:errcheck // cleanup on driver failure
		return 0, fmt.Errorf("create migration driver: %w", err)
	}

	source, err := iofs.New(src, ".")
	if err != nil {
		_ = driver.Close() //nolint:errcheck // cleanup on source failure
		return 0, fmt.Errorf("open migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		_ = driver.Close() //nolint:errcheck // cleanup on migrator failure
		return 0, fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close() //nolint:errcheck // closes source and driver

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}

	return version, nil
}
