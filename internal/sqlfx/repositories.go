package sqlfx

import (
	"github.com/jmoiron/sqlx"

	"github.com/yurykabanov/dbxbackuper/pkg/backup"
	"github.com/yurykabanov/dbxbackuper/pkg/http/handler"
	"github.com/yurykabanov/dbxbackuper/pkg/storage"
)

func ArchiveRepository(db *sqlx.DB) (
	*storage.ArchiveRepository,
	backup.ArchiveCatalog,
	handler.ArchiveRepository,
) {
	repo := storage.NewArchiveRepository(db)

	return repo, repo, repo
}

func HashRecordRepository(db *sqlx.DB) *storage.HashRecordRepository {
	return storage.NewHashRecordRepository(db)
}
