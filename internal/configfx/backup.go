package configfx

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/yurykabanov/dbxbackuper/pkg/archive"
	"github.com/yurykabanov/dbxbackuper/pkg/backup"
	"github.com/yurykabanov/dbxbackuper/pkg/producer"
)

const (
	ConfigSourceDirectory       = "source.directory"
	ConfigSourceExtensions      = "source.extensions"
	ConfigSourceInUseExtensions = "source.in_use_extensions"
	ConfigSourceSkipDatedFiles  = "source.skip_dated_files"

	ConfigBackupDirectory      = "backup.directory"
	ConfigBackupMinFreeSpaceGB = "backup.min_free_space_gb"
	ConfigBackupRetentionScope = "backup.retention_scope"

	ConfigArchiveFormat       = "archive.format"
	ConfigArchiveSevenZipPath = "archive.seven_zip_path"

	ConfigHashStoreKind = "hashstore.kind"

	ConfigProducerKind         = "producer.kind"
	ConfigProducerDirectory    = "producer.directory"
	ConfigProducerStartFile    = "producer.start_file"
	ConfigProducerStopFile     = "producer.stop_file"
	ConfigProducerProcessName  = "producer.process_name"
	ConfigProducerContainer    = "producer.container"
	ConfigProducerWait         = "producer.wait"
	ConfigProducerPollInterval = "producer.poll_interval"

	ConfigScheduleCron = "schedule.cron"
)

const (
	HashStoreSidecar = "sidecar"
	HashStoreSqlite  = "sqlite"
)

type ProducerConfig struct {
	Kind    string
	Process producer.ProcessConfig
	Docker  producer.DockerConfig
}

type HashStoreConfig struct {
	Kind string
}

type ScheduleConfig struct {
	Cron string
}

func BackupConfigProvider(v *viper.Viper) (backup.Config, error) {
	config := backup.Config{
		SourceDirectory: v.GetString(ConfigSourceDirectory),
		BackupDirectory: v.GetString(ConfigBackupDirectory),
		Extensions:      v.GetStringSlice(ConfigSourceExtensions),
		InUseExtensions: v.GetStringSlice(ConfigSourceInUseExtensions),
		SkipDatedFiles:  v.GetBool(ConfigSourceSkipDatedFiles),
		MinFreeSpaceGB:  v.GetFloat64(ConfigBackupMinFreeSpaceGB),
		ArchiveFormat:   strings.ToLower(v.GetString(ConfigArchiveFormat)),
		SevenZipPath:    v.GetString(ConfigArchiveSevenZipPath),
		RetentionScope:  strings.ToLower(v.GetString(ConfigBackupRetentionScope)),
	}

	if config.SourceDirectory == "" {
		return config, errors.Errorf("'%s' is required", ConfigSourceDirectory)
	}
	if config.BackupDirectory == "" {
		return config, errors.Errorf("'%s' is required", ConfigBackupDirectory)
	}
	if len(config.Extensions) == 0 {
		return config, errors.Errorf("'%s' must not be empty", ConfigSourceExtensions)
	}
	if config.MinFreeSpaceGB < 0 {
		return config, errors.Errorf("'%s' must not be negative", ConfigBackupMinFreeSpaceGB)
	}

	switch config.ArchiveFormat {
	case archive.FormatZip, archive.FormatSevenZip:
	default:
		return config, errors.Errorf("unsupported archive format '%s'", config.ArchiveFormat)
	}

	switch config.RetentionScope {
	case backup.RetentionScopeIdentity, backup.RetentionScopeRoot:
	default:
		return config, errors.Errorf("unsupported retention scope '%s'", config.RetentionScope)
	}

	var err error
	if config.SourceDirectory, err = filepath.Abs(config.SourceDirectory); err != nil {
		return config, errors.Wrap(err, "unable to resolve source directory")
	}
	if config.BackupDirectory, err = filepath.Abs(config.BackupDirectory); err != nil {
		return config, errors.Wrap(err, "unable to resolve backup directory")
	}

	return config, nil
}

func ProducerConfigProvider(v *viper.Viper) (*ProducerConfig, error) {
	wait := v.GetDuration(ConfigProducerWait)
	interval := v.GetDuration(ConfigProducerPollInterval)

	config := &ProducerConfig{
		Kind: strings.ToLower(v.GetString(ConfigProducerKind)),
		Process: producer.ProcessConfig{
			Dir:          v.GetString(ConfigProducerDirectory),
			StartFile:    v.GetString(ConfigProducerStartFile),
			StopFile:     v.GetString(ConfigProducerStopFile),
			ProcessName:  v.GetString(ConfigProducerProcessName),
			Wait:         wait,
			PollInterval: interval,
		},
		Docker: producer.DockerConfig{
			Container:    v.GetString(ConfigProducerContainer),
			Wait:         wait,
			PollInterval: interval,
		},
	}

	switch config.Kind {
	case producer.KindNone:
	case producer.KindProcess:
		if config.Process.Dir == "" || config.Process.StopFile == "" || config.Process.ProcessName == "" {
			return nil, errors.Errorf("'%s', '%s' and '%s' are required for process producer",
				ConfigProducerDirectory, ConfigProducerStopFile, ConfigProducerProcessName)
		}
	case producer.KindDocker:
		if config.Docker.Container == "" {
			return nil, errors.Errorf("'%s' is required for docker producer", ConfigProducerContainer)
		}
	default:
		return nil, errors.Errorf("unsupported producer kind '%s'", config.Kind)
	}

	return config, nil
}

func HashStoreConfigProvider(v *viper.Viper) (*HashStoreConfig, error) {
	kind := strings.ToLower(v.GetString(ConfigHashStoreKind))

	switch kind {
	case HashStoreSidecar, HashStoreSqlite:
		return &HashStoreConfig{Kind: kind}, nil
	default:
		return nil, errors.Errorf("unsupported hash store '%s'", kind)
	}
}

func ScheduleConfigProvider(v *viper.Viper) (*ScheduleConfig, error) {
	return &ScheduleConfig{
		Cron: v.GetString(ConfigScheduleCron),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(ConfigSourceExtensions, []string{".DBX"})
	v.SetDefault(ConfigSourceInUseExtensions, []string{".PRE"})
	v.SetDefault(ConfigSourceSkipDatedFiles, false)

	v.SetDefault(ConfigBackupMinFreeSpaceGB, 10)
	v.SetDefault(ConfigBackupRetentionScope, backup.RetentionScopeIdentity)

	v.SetDefault(ConfigArchiveFormat, archive.FormatZip)
	v.SetDefault(ConfigArchiveSevenZipPath, "7z")

	v.SetDefault(ConfigHashStoreKind, HashStoreSidecar)

	v.SetDefault(ConfigProducerKind, producer.KindNone)
	v.SetDefault(ConfigProducerWait, 10*time.Second)
	v.SetDefault(ConfigProducerPollInterval, time.Second)

	v.SetDefault(ConfigScheduleCron, "0 3 * * *")

	v.SetDefault(ConfigLogLevel, "info")
	v.SetDefault(ConfigLogFormat, "text")
	v.SetDefault(ConfigLogMaxSizeMB, 50)
	v.SetDefault(ConfigLogMaxBackups, 5)
	v.SetDefault(ConfigLogMaxAgeDays, 30)

	v.SetDefault(ConfigDatabaseDSN, "./db/dbxbackuper.db")
	v.SetDefault(ConfigDatabaseName, "dbxbackuper")

	v.SetDefault(ConfigServerAddress, "127.0.0.1:9105")
	v.SetDefault(ConfigServerTimeoutRead, 5*time.Second)
	v.SetDefault(ConfigServerTimeoutWrite, 10*time.Second)
	v.SetDefault(ConfigServerLogRequests, false)
}
