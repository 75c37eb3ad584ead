package stores

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// PostgresStore persists sessions in a PostgreSQL database.
type PostgresStore struct {
	gormStore
}

// NewPostgresStore connects with the given DSN and migrates the schema.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	store := &PostgresStore{gormStore: gormStore{db: db}}
	if err := store.migrate(); err != nil {
		return nil, err
	}
	return store, nil
}
