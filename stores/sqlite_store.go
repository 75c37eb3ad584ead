package stores

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SQLiteStore persists sessions in a SQLite database file.
type SQLiteStore struct {
	gormStore
	dbPath string
}

// NewSQLiteStore opens (or creates) the database at dbPath and migrates the
// schema. Use ":memory:" for an ephemeral store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	store := &SQLiteStore{
		gormStore: gormStore{db: db},
		dbPath:    dbPath,
	}
	if err := store.migrate(); err != nil {
		return nil, err
	}
	return store, nil
}
