// Package dbtest opens throwaway in-memory databases for tests.
package dbtest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"game_store/internal/db"
)

var seq atomic.Int64

// Open returns a migrated in-memory SQLite database private to the test
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	// Named shared-cache memory DB so every pooled connection sees the same data,
	// unique per test so tests stay isolated.
	dsn := fmt.Sprintf("file:store%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", seq.Add(1))
	gdb, err := db.OpenDialector(sqlite.Open(dsn))
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // SQLite allows one writer; serialise to avoid SQLITE_BUSY
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gdb))
	return gdb
}
