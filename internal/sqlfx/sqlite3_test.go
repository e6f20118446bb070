package sqlfx

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurykabanov/dbxbackuper/pkg/backup"
)

func TestDatabaseDir(t *testing.T) {
	assert.Equal(t, "db", databaseDir("./db/dbxbackuper.db"))
	assert.Equal(t, "/var/lib/dbx", databaseDir("file:/var/lib/dbx/state.db?_busy_timeout=5000"))
	assert.Equal(t, "", databaseDir("state.db"))
	assert.Equal(t, "", databaseDir(":memory:"))
	assert.Equal(t, "", databaseDir("file::memory:?cache=shared"))
}

func TestOpenSqliteDatabase(t *testing.T) {
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	dsn := filepath.Join(t.TempDir(), "nested", "dbxbackuper.db")

	db, err := OpenSqliteDatabase(&SqliteConfig{DSN: dsn, DatabaseName: "dbxbackuper"}, logger)
	require.NoError(t, err)
	defer db.Close()

	repo, catalog, _ := ArchiveRepository(db)

	now := time.Date(2025, 6, 1, 14, 22, 0, 0, time.UTC)
	require.NoError(t, catalog.Add(context.Background(), backup.BackupArchive{
		Identity:      "sales_2025.06.01_14.22.dbx",
		GroupKey:      "sales.dbx",
		Path:          "/backup/sales/2025/2025.06/sales_2025.06.01_14.22.dbx.zip",
		Format:        "zip",
		SizeBytes:     42,
		SourceModTime: now,
		CreatedAt:     now,
	}))

	latest, err := repo.FindLatest(context.Background())
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "sales.dbx", latest[0].GroupKey)
}
