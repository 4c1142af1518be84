package database

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/justsurfingit/linkedin-agent/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the database named by dsn and migrates the schema.
// "sqlite:<path>" or a path ending in .db selects SQLite; anything else is
// handed to the Postgres driver.
func Connect(dsn string) (*gorm.DB, error) {
	dialector, isSQLite := dialectorFor(dsn)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newLogger(log.Default().Writer()),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if isSQLite {
		// SQLite allows one writer; a single connection serializes the
		// dedup transactions instead of failing them with SQLITE_BUSY.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	log.Println("Database connection established")

	// Migration: This creates the tables automatically
	log.Println("Running Migrations...")
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// newLogger reports slow queries and real errors. A missing row is the
// normal first step of every create-or-update, so it is not logged.
func newLogger(w io.Writer) logger.Interface {
	return logger.New(log.New(w, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.JobPost{},
		&models.ConnectionRequest{},
		&models.ActivityLog{},
		&models.UserProfile{},
		&models.SentConnection{},
		&models.UsageStats{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

func dialectorFor(dsn string) (gorm.Dialector, bool) {
	switch {
	case strings.HasPrefix(dsn, "sqlite:"):
		return sqlite.Open(sqliteDSN(strings.TrimPrefix(dsn, "sqlite:"))), true
	case strings.HasSuffix(dsn, ".db"), dsn == ":memory:":
		return sqlite.Open(sqliteDSN(dsn)), true
	default:
		return postgres.Open(dsn), false
	}
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_busy_timeout=5000&_foreign_keys=on"
}
