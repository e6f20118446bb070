package backup

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/dbxbackuper/pkg/archive"
)

type backendPicker interface {
	Pick(ctx context.Context) (archive.Backend, error)
}

type retentionController interface {
	spaceKeeper
	EvictOldest(ctx context.Context, candidate string) (string, error)
	Exclude(path string)
}

// Archiver turns staged copies into archives, skipping copies whose digest
// matches the one recorded for the same identity.
type Archiver struct {
	events    EventSink
	backends  backendPicker
	retention retentionController
	hashes    HashStore
	catalog   ArchiveCatalog

	now func() time.Time
}

func NewArchiver(
	events EventSink,
	backends backendPicker,
	retention retentionController,
	hashes HashStore,
	catalog ArchiveCatalog,
) *Archiver {
	if events == nil {
		events = nopSink{}
	}
	if catalog == nil {
		catalog = NopCatalog()
	}

	return &Archiver{
		events:    events,
		backends:  backends,
		retention: retention,
		hashes:    hashes,
		catalog:   catalog,
		now:       time.Now,
	}
}

// ArchiveIfChanged archives stagedPath unless its digest is unchanged. The
// staged copy is removed in both cases. The digest is stored only after the
// archive is in place with the staged file's timestamps.
func (a *Archiver) ArchiveIfChanged(ctx context.Context, stagedPath string) (Outcome, error) {
	outcome, err := a.archiveIfChanged(ctx, stagedPath)
	if err != nil {
		a.events.Emit(ctx, EventArchiveFailed, logrus.Fields{"staged": stagedPath, "error": err.Error()})
	}

	return outcome, err
}

func (a *Archiver) archiveIfChanged(ctx context.Context, stagedPath string) (Outcome, error) {
	info, err := os.Stat(stagedPath)
	if err != nil {
		return OutcomeFailed, errors.Wrap(err, "unable to stat staged file")
	}

	identity := filepath.Base(stagedPath)

	digest, err := FileDigest(stagedPath)
	if err != nil {
		return OutcomeFailed, err
	}

	prev, found, err := a.hashes.Get(ctx, identity)
	if err != nil {
		a.events.Emit(ctx, EventHashStoreFailed, logrus.Fields{"staged": stagedPath, "error": err.Error()})
		found = false
	}

	if found && prev.Algorithm == HashAlgorithm && prev.Digest == digest {
		if err := os.Remove(stagedPath); err != nil {
			return OutcomeFailed, errors.Wrap(err, "unable to remove unchanged staged file")
		}

		a.events.Emit(ctx, EventFileUnchanged, logrus.Fields{"staged": stagedPath, "digest": digest})

		return OutcomeSkipped, nil
	}

	backend, err := a.backends.Pick(ctx)
	if err != nil {
		return OutcomeFailed, err
	}

	archivePath := archive.ArchivePath(stagedPath, backend.Format())

	if err := a.retention.EnsureSpace(ctx, filepath.Dir(stagedPath), stagedPath); err != nil {
		return OutcomeFailed, err
	}

	if err := backend.CreateArchive(ctx, stagedPath, archivePath); err != nil {
		// one eviction in case the disk filled up under us
		if _, evictErr := a.retention.EvictOldest(ctx, stagedPath); evictErr != nil {
			a.events.Emit(ctx, EventRemediationFailed, logrus.Fields{
				"staged": stagedPath,
				"error":  evictErr.Error(),
			})
		}

		return OutcomeFailed, errors.Wrapf(err, "unable to archive %s", stagedPath)
	}

	// never evict what this run just wrote
	a.retention.Exclude(archivePath)

	if err := os.Chtimes(archivePath, accessTime(info), info.ModTime()); err != nil {
		// an archive with the wrong times would sort wrong in retention
		if removeErr := os.Remove(archivePath); removeErr != nil && !os.IsNotExist(removeErr) {
			return OutcomeFailed, errors.Wrapf(err, "unable to set archive times (and remove archive: %v)", removeErr)
		}

		return OutcomeFailed, errors.Wrap(err, "unable to set archive times")
	}

	record := HashRecord{
		Identity:   identity,
		Algorithm:  HashAlgorithm,
		Digest:     digest,
		ModTime:    info.ModTime(),
		AccessTime: accessTime(info),
	}

	if err := a.hashes.Set(ctx, record); err != nil {
		return OutcomeFailed, errors.Wrap(err, "unable to store digest")
	}

	var size int64
	if archiveInfo, err := os.Stat(archivePath); err == nil {
		size = archiveInfo.Size()
	}

	group, _, _ := ParseArchiveName(filepath.Base(archivePath))

	err = a.catalog.Add(ctx, BackupArchive{
		Identity:      identity,
		GroupKey:      group,
		Path:          archivePath,
		Format:        backend.Format(),
		SizeBytes:     size,
		SourceModTime: info.ModTime(),
		CreatedAt:     a.now(),
	})
	if err != nil {
		a.events.Emit(ctx, EventCatalogFailed, logrus.Fields{"archive": archivePath, "error": err.Error()})
	}

	fields := logrus.Fields{"staged": stagedPath, "archive": archivePath, "format": backend.Format(), "digest": digest}

	if err := os.Remove(stagedPath); err != nil {
		fields["remove_error"] = err.Error()
	}

	a.events.Emit(ctx, EventFileArchived, fields)

	return OutcomeArchived, nil
}
