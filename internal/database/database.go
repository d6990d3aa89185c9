// Package database implements the persistent SQLite store for books, chapters
// and thumbnails. All writes are conflict-target upserts so concurrent writers
// for the same URL cannot produce duplicate rows; the last write wins.
package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shelfkeeper/shelfkeeper/internal/errs"
	applogger "github.com/shelfkeeper/shelfkeeper/internal/logger"
)

// StorageFile is the name of the SQLite database file inside the storage
// directory.
const StorageFile = "data.db"

// Store wraps the GORM connection to the on-disk database.
type Store struct {
	db     *gorm.DB
	path   string
	logger *applogger.Logger
}

// Open connects to the database file under dir, creating the directory if
// needed. It does not create the schema; call Migrate for that.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.E(errs.StorageConnect, "database.Open", fmt.Errorf("failed to create storage directory: %w", err))
	}

	path := filepath.Join(dir, StorageFile)
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errs.E(errs.StorageConnect, "database.Open", fmt.Errorf("failed to connect to database: %w", err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errs.E(errs.StorageConnect, "database.Open", err)
	}
	// SQLite supports only one writer at a time.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	log := applogger.Component("store")
	log.Debug().Str("path", path).Msg("Database connection established")

	return &Store{db: db, path: path, logger: log}, nil
}

// Migrate creates the books, chapters and thumbnails tables if they do not
// exist. Table creation is idempotent: re-running against an existing schema
// is a no-op and never drops rows. Failures are collected per table rather
// than aborting at the first, so the caller sees everything that went wrong.
func (s *Store) Migrate() []error {
	var errors []error
	for _, model := range []any{&BookRow{}, &ChapterRow{}, &ThumbnailRow{}} {
		if err := s.db.AutoMigrate(model); err != nil {
			errors = append(errors, errs.E(errs.StorageSchema, "database.Migrate", err))
		}
	}
	if len(errors) == 0 {
		s.logger.Debug().Msg("Schema migration complete")
	}
	return errors
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errs.E(errs.StorageConnect, "database.Close", err)
	}
	if err := sqlDB.Close(); err != nil {
		return errs.E(errs.StorageConnect, "database.Close", err)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// notFound translates gorm's record-not-found into the (zero, false, nil)
// convention; absence is not an error.
func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
