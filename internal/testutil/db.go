// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/daily-diet-api/internal/database"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database. It is pinned to one
// connection, because every new connection to ":memory:" is a fresh database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// BreakDB closes the underlying pool so every later query fails the way a
// lost database connection would.
func BreakDB(t testing.TB, db *gorm.DB) {
	t.Helper()
	require.NoError(t, database.Close(db))
}

// DryRunDBs returns Postgres and MySQL handles that build SQL without
// connecting, keyed by client name. Use them with (*gorm.DB).ToSQL.
func DryRunDBs(t testing.TB) map[string]*gorm.DB {
	t.Helper()

	dialectors := map[string]gorm.Dialector{
		"postgres": postgres.New(postgres.Config{
			DSN: "host=localhost user=diet dbname=daily_diet port=5432 sslmode=disable",
		}),
		"mysql": mysql.New(mysql.Config{
			DSN:                       "diet:diet@tcp(localhost:3306)/daily_diet?parseTime=True",
			SkipInitializeWithVersion: true,
		}),
	}

	dbs := make(map[string]*gorm.DB, len(dialectors))
	for name, dialector := range dialectors {
		db, err := gorm.Open(dialector, &gorm.Config{
			Logger:               logger.Default.LogMode(logger.Silent),
			DryRun:               true,
			DisableAutomaticPing: true,
		})
		require.NoError(t, err, name)
		dbs[name] = db
	}
	return dbs
}

func Ptr[T any](v T) *T {
	return &v
}
