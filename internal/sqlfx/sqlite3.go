package sqlfx

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/yurykabanov/dbxbackuper/internal/configfx"
	"github.com/yurykabanov/dbxbackuper/pkg/storage"
	"github.com/yurykabanov/dbxbackuper/pkg/util"
)

type SqliteConfig struct {
	DSN          string
	DatabaseName string
}

func SqliteConfigProvider(v *viper.Viper) (*SqliteConfig, error) {
	config := &SqliteConfig{
		DSN:          v.GetString(configfx.ConfigDatabaseDSN),
		DatabaseName: v.GetString(configfx.ConfigDatabaseName),
	}

	if config.DSN == "" {
		return nil, errors.Errorf("'%s' is required", configfx.ConfigDatabaseDSN)
	}

	return config, nil
}

func OpenSqliteDatabase(config *SqliteConfig, logger *logrus.Logger) (*sqlx.DB, error) {
	logger.WithField("dsn", config.DSN).Debug("Connecting to DB with DSN")

	if dir := databaseDir(config.DSN); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrap(err, "Unable to create DB directory")
		}
	}

	db, err := sqlx.Open("sqlite3", config.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to connect to DB")
	}

	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	db.MapperFunc(util.CamelToSnakeCase)

	if err := storage.Migrate(db, config.DatabaseName); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func CloseSqliteDatabase(lc fx.Lifecycle, db *sqlx.DB) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return db.Close()
		},
	})
}

// databaseDir returns the directory of a file DSN, or "" for in-memory ones.
func databaseDir(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")

	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	if path == "" || path == ":memory:" {
		return ""
	}

	dir := filepath.Dir(path)
	if dir == "." {
		return ""
	}

	return dir
}
