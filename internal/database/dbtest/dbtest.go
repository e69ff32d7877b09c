// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"testing"

	"backend-triage/internal/config"
	"backend-triage/internal/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Open returns a migrated in-memory SQLite database closed at the end of t.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(config.Database{Driver: database.DriverSQLite, URL: ":memory:"}, zap.NewNop())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test database pool: %v", err)
	}
	// Every connection to ":memory:" is a fresh database.
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}
