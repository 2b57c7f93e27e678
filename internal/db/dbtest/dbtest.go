// Package dbtest opens migrated in-memory SQLite databases for tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/muzz-matching/internal/db"
	"github.com/oggyb/muzz-matching/internal/db/migrations"
)

// Open returns a fresh schema-migrated database private to the test.
// A single connection is kept so concurrent writers serialize the way they
// would on row locks; code under test must not hold a transaction while
// issuing queries outside it.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), db.GormConfig(logger.Default.LogMode(logger.Silent)))
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	// The migrate sqlite3 driver closes the connection it wraps, so the
	// migrator is never closed here.
	require.NoError(t, migrations.Up(sqlDB, migrations.DialectSQLite))

	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

// User inserts an active user with a profile.
func User(t *testing.T, gdb *gorm.DB, name string, role db.Role, p db.Profile) db.User {
	t.Helper()

	u := db.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         role,
		Active:       true,
	}
	require.NoError(t, gdb.Create(&u).Error)

	p.UserID = u.ID
	if p.DisplayName == "" {
		p.DisplayName = name
	}
	require.NoError(t, gdb.Create(&p).Error)
	u.Profile = &p
	return u
}

// Deactivate flips a user to inactive.
func Deactivate(t *testing.T, gdb *gorm.DB, id uint64) {
	t.Helper()
	require.NoError(t, gdb.Model(&db.User{}).Where("id = ?", id).Update("active", false).Error)
}

// Float returns a pointer to f.
func Float(f float64) *float64 { return &f }
