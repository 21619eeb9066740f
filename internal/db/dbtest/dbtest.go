// Package dbtest opens throwaway migrated databases for tests.
package dbtest

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"evamed-backend/internal/config"
	"evamed-backend/internal/db"
)

// New returns a fresh in-memory SQLite database with every table migrated.
// Each call gets its own database, closed when the test ends.
func New(tb testing.TB) *gorm.DB {
	tb.Helper()

	gdb, err := db.Open(config.DBConfig{
		Driver: "sqlite",
		Path:   "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	tb.Cleanup(func() { _ = db.Close(gdb) })

	if err := db.Migrate(gdb); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	return gdb
}
