package config

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	_ "github.com/smartspace/smartspace-be/migrations"
)

// RunMigrations executes all pending goose migrations. These cover what
// AutoMigrate cannot express: seed data and the exclusion constraint that
// backstops the overlap check under concurrency.
func RunMigrations(db *sql.DB) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	// Go migrations register via init; the directory only tracks versions.
	if err := goose.Up(db, "./migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// SQLDB unwraps the *sql.DB from a gorm handle for goose.
func SQLDB(db *gorm.DB) (*sql.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	return sqlDB, nil
}
