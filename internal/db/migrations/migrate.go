// Package migrations owns the schema. Each dialect has its own directory of
// golang-migrate files embedded into the binary.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

const (
	DialectMySQL  = "mysql"
	DialectSQLite = "sqlite3"
)

//go:embed mysql/*.sql sqlite3/*.sql
var files embed.FS

// New builds a migrator over an open connection. MySQL connections must have
// multiStatements enabled.
func New(sqlDB *sql.DB, dialect string) (*migrate.Migrate, error) {
	src, err := iofs.New(files, dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s migrations: %w", dialect, err)
	}

	var drv database.Driver
	switch dialect {
	case DialectMySQL:
		drv, err = migratemysql.WithInstance(sqlDB, &migratemysql.Config{})
	case DialectSQLite:
		drv, err = sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to init %s migration driver: %w", dialect, err)
	}

	return migrate.NewWithInstance("iofs", src, dialect, drv)
}

// Up applies every pending migration. Being already current is not an error.
func Up(sqlDB *sql.DB, dialect string) error {
	m, err := New(sqlDB, dialect)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
