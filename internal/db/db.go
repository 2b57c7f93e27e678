package db

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/oggyb/muzz-matching/internal/config"
)

// NewDB initializes the database connection using DSN from config.
// The schema is owned by the migrations package; run `matchctl migrate up`
// before starting the server.
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	level := logger.Warn
	if cfg.Log.Level == "debug" {
		level = logger.Info // log SQL queries
	}

	db, err := gorm.Open(mysql.Open(cfg.DB.DSN), GormConfig(logger.Default.LogMode(level)))
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpen)
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdle)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// GormConfig is shared by the MySQL connection and the SQLite test databases.
// Timestamps are stored in UTC with millisecond precision.
func GormConfig(l logger.Interface) *gorm.Config {
	return &gorm.Config{
		Logger:         l,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC().Truncate(time.Millisecond)
		},
	}
}
