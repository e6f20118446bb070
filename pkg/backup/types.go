package backup

import (
	"os"
	"time"
)

// SourceFile is a snapshot of a candidate file taken once per pass. ModTime is
// the logical clock of every artifact derived from the file.
type SourceFile struct {
	Path       string
	Extension  string
	ModTime    time.Time
	AccessTime time.Time
	Size       int64
}

func sourceFileFromInfo(path string, info os.FileInfo) SourceFile {
	return SourceFile{
		Path:       path,
		Extension:  extension(info.Name()),
		ModTime:    info.ModTime(),
		AccessTime: accessTime(info),
		Size:       info.Size(),
	}
}

// Classification is derived from a file name only.
type Classification struct {
	// Stem is the file name without its extension.
	Stem string

	// BaseName is the logical identity: date suffix and copy suffix removed,
	// whitespace replaced by underscores.
	BaseName string

	// IsOriginal is false when the name carries a date suffix, i.e. the file
	// is itself a rotated backup.
	IsOriginal bool

	// CopySuffixed reports that a " - копия" / " - copy" suffix was stripped.
	CopySuffixed bool

	IsInUse bool
}

// Candidate is one file produced by a walk.
type Candidate struct {
	Source SourceFile
	Class  Classification
}

type HashRecord struct {
	Identity   string
	Algorithm  string
	Digest     string
	ModTime    time.Time
	AccessTime time.Time
}

// BackupArchive is one archive created by the archiver.
type BackupArchive struct {
	Id int64

	// Identity is the staged file name, GroupKey the retention group
	// ("sales.dbx").
	Identity      string
	GroupKey      string
	Path          string
	Format        string
	SizeBytes     int64
	SourceModTime time.Time

	CreatedAt time.Time
	EvictedAt *time.Time
}

type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeSkipped
	OutcomeArchived
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeArchived:
		return "archived"
	default:
		return "failed"
	}
}

// Stats summarises one phase.
type Stats struct {
	Processed    int
	Copied       int
	InUse        int
	DatedSkipped int
	Unchanged    int
	Archived     int
	Failed       int
}
