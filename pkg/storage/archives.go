package storage

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/yurykabanov/dbxbackuper/pkg/backup"
)

const (
	archiveInsertQuery = `
		INSERT INTO archives (
			identity, group_key, path, format,
			size_bytes, source_mod_time, created_at, evicted_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	archiveMarkEvictedQuery = `
		UPDATE archives SET evicted_at = ?
		WHERE path = ? AND evicted_at IS NULL
	`

	archiveSelectLatest = `
		SELECT
			id,
			identity, group_key, path, format,
			size_bytes, source_mod_time, created_at, evicted_at
		FROM archives
		WHERE id IN (
			SELECT MAX(id) FROM archives
			WHERE evicted_at IS NULL
			GROUP BY group_key
		)
		ORDER BY group_key
	`
)

// ArchiveRepository keeps the history of created and evicted archives.
type ArchiveRepository struct {
	db *sqlx.DB
}

func NewArchiveRepository(db *sqlx.DB) *ArchiveRepository {
	return &ArchiveRepository{
		db: db,
	}
}

func (r *ArchiveRepository) Add(ctx context.Context, archive backup.BackupArchive) error {
	stmt, err := r.db.PrepareContext(ctx, archiveInsertQuery)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(
		ctx,
		archive.Identity, archive.GroupKey, archive.Path, archive.Format,
		archive.SizeBytes, archive.SourceModTime, archive.CreatedAt, archive.EvictedAt,
	)

	return err
}

func (r *ArchiveRepository) MarkEvicted(ctx context.Context, path string, at time.Time) error {
	stmt, err := r.db.PrepareContext(ctx, archiveMarkEvictedQuery)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, at, path)

	return err
}

// FindLatest returns the most recent live archive of every group.
func (r *ArchiveRepository) FindLatest(ctx context.Context) ([]backup.BackupArchive, error) {
	var archives []backup.BackupArchive

	err := r.db.SelectContext(ctx, &archives, archiveSelectLatest)
	if err != nil {
		return nil, err
	}

	return archives, nil
}
