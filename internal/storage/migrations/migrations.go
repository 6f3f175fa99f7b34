// Package migrations holds the embedded schema for every storage driver and
// applies it with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Up applies all pending migrations for driverName ("postgres" or "sqlite")
// over a dedicated connection to dsn, which is closed before returning.
func Up(driverName, dsn string) error {
	const op = "storage.migrations.Up"

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("%s: open: %w", op, err)
	}

	src, err := iofs.New(files, driverName)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("%s: source: %w", op, err)
	}

	var drv database.Driver

	switch driverName {
	case "postgres":
		drv, err = postgres.WithInstance(db, &postgres.Config{})
	case "sqlite":
		drv, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	default:
		err = fmt.Errorf("unsupported driver %q", driverName)
	}
	if err != nil {
		_ = src.Close()
		_ = db.Close()
		return fmt.Errorf("%s: database: %w", op, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driverName, drv)
	if err != nil {
		_ = src.Close()
		_ = drv.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	// closes src, drv and db
	defer m.Close()

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: up: %w", op, err)
	}

	return nil
}
