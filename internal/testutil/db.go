// Package testutil provides store fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/codey22/notespace/internal/config"
	"github.com/codey22/notespace/internal/db"
	"github.com/codey22/notespace/internal/logging"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB returns a migrated, private in-memory sqlite database that is closed
// when the test ends.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := db.Connect(config.DriverSQLite, dsn, logging.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrateAndIndexes(gdb))

	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}
