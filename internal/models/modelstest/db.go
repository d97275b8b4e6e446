// Package modelstest opens throwaway databases for tests.
package modelstest

import (
	"testing"

	"gorm.io/gorm"

	"patient-portal-server/internal/models"
)

// OpenDB returns a migrated in-memory SQLite database private to t.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := models.InitDB(models.DatabaseConfig{
		Driver: "sqlite",
		DSN:    "file::memory:",
		Silent: true,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test database handle: %v", err)
	}
	// Each new connection to :memory: would be a fresh, empty database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}
