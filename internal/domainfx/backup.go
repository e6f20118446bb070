package domainfx

import (
	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/dbxbackuper/internal/configfx"
	"github.com/yurykabanov/dbxbackuper/pkg/archive"
	"github.com/yurykabanov/dbxbackuper/pkg/backup"
	"github.com/yurykabanov/dbxbackuper/pkg/diskspace"
	"github.com/yurykabanov/dbxbackuper/pkg/hashstore"
	"github.com/yurykabanov/dbxbackuper/pkg/storage"
)

func Classifier(config backup.Config) *backup.Classifier {
	return backup.NewClassifier(config.InUseExtensions)
}

func DiskSpaceProber() *diskspace.Prober {
	return diskspace.New()
}

func Retention(
	config backup.Config,
	events backup.EventSink,
	prober *diskspace.Prober,
	classifier *backup.Classifier,
	catalog backup.ArchiveCatalog,
) *backup.Retention {
	return backup.NewRetention(
		events,
		prober,
		classifier,
		catalog,
		config.BackupDirectory,
		diskspace.BytesFromGB(config.MinFreeSpaceGB),
		config.RetentionScope,
	)
}

func Copier(
	config backup.Config,
	events backup.EventSink,
	classifier *backup.Classifier,
	retention *backup.Retention,
) *backup.Copier {
	return backup.NewCopier(events, classifier, config.BackupDirectory, retention)
}

// BackendSelector prefers the configured format and falls back to zip.
func BackendSelector(config backup.Config, events backup.EventSink) (*archive.Selector, error) {
	preferred, err := archive.NewBackend(config.ArchiveFormat, config.SevenZipPath, nil)
	if err != nil {
		return nil, err
	}

	var fallback archive.Backend
	if preferred.Format() != archive.FormatZip {
		fallback = archive.NewZip()
	}

	return archive.NewSelector(preferred, fallback, backup.FallbackReporter(events)), nil
}

func HashStore(
	logger *logrus.Logger,
	config *configfx.HashStoreConfig,
	backupConfig backup.Config,
	records *storage.HashRecordRepository,
) backup.HashStore {
	logger.WithField("hashstore", config.Kind).Debug("Using hash store")

	if config.Kind == configfx.HashStoreSqlite {
		return records
	}

	return hashstore.NewSidecar(backupConfig.BackupDirectory)
}

func Archiver(
	events backup.EventSink,
	selector *archive.Selector,
	retention *backup.Retention,
	hashes backup.HashStore,
	catalog backup.ArchiveCatalog,
) *backup.Archiver {
	return backup.NewArchiver(events, selector, retention, hashes, catalog)
}

func Pipeline(
	config backup.Config,
	events backup.EventSink,
	classifier *backup.Classifier,
	copier *backup.Copier,
	archiver *backup.Archiver,
	retention *backup.Retention,
	selector *archive.Selector,
	producer backup.Producer,
	producerConfig *configfx.ProducerConfig,
) *backup.Pipeline {
	// Start waits up to Wait for the server to come up, leave room for the launch
	restart := 2 * producerConfig.Process.Wait

	return backup.NewPipeline(events, config, classifier, copier, archiver, retention, selector, producer).
		WithRestartTimeout(restart)
}
