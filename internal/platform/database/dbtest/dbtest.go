// Package dbtest opens throwaway in-memory sqlite databases with the schema applied.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"repbep/internal/config"
	"repbep/internal/platform/database"
	"repbep/internal/repository"
)

func NewSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := config.Default()
	cfg.Database.Driver = config.DriverSQLite
	cfg.Database.LogLevel = "silent"
	cfg.SQLite.Path = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

	db, err := database.Open(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
