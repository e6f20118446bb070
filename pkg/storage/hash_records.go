package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/yurykabanov/dbxbackuper/pkg/backup"
)

const (
	hashRecordInsertQuery = `
		INSERT INTO hash_records (
			identity, algorithm, digest,
			mod_time, access_time, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	hashRecordSelectLatest = `
		SELECT
			identity, algorithm, digest,
			mod_time, access_time
		FROM hash_records
		WHERE identity = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
)

// HashRecordRepository is the relational hash store: every digest is kept
// and the most recent one per identity wins.
type HashRecordRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewHashRecordRepository(db *sqlx.DB) *HashRecordRepository {
	return &HashRecordRepository{
		db:  db,
		now: time.Now,
	}
}

func (r *HashRecordRepository) Get(ctx context.Context, identity string) (backup.HashRecord, bool, error) {
	var record backup.HashRecord

	err := r.db.GetContext(ctx, &record, hashRecordSelectLatest, identity)
	if err == sql.ErrNoRows {
		return record, false, nil
	}
	if err != nil {
		return record, false, err
	}

	return record, true, nil
}

func (r *HashRecordRepository) Set(ctx context.Context, record backup.HashRecord) error {
	stmt, err := r.db.PrepareContext(ctx, hashRecordInsertQuery)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(
		ctx,
		record.Identity, record.Algorithm, record.Digest,
		record.ModTime, record.AccessTime, r.now(),
	)

	return err
}
