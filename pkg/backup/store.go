package backup

import (
	"context"
	"time"
)

// HashStore keeps the last archived digest per identity.
type HashStore interface {
	// Get returns ok == false when nothing is stored for identity.
	Get(ctx context.Context, identity string) (HashRecord, bool, error)
	Set(ctx context.Context, record HashRecord) error
}

// ArchiveCatalog records archive history. It is informational only: the
// filesystem stays the source of truth for retention.
type ArchiveCatalog interface {
	Add(ctx context.Context, archive BackupArchive) error
	MarkEvicted(ctx context.Context, path string, at time.Time) error
}

type nopCatalog struct{}

func NopCatalog() ArchiveCatalog {
	return nopCatalog{}
}

func (nopCatalog) Add(context.Context, BackupArchive) error { return nil }

func (nopCatalog) MarkEvicted(context.Context, string, time.Time) error { return nil }
