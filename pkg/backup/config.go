package backup

const (
	RetentionScopeIdentity = "identity"
	RetentionScopeRoot     = "root"
)

// Config is built once at startup and never re-read during a run.
type Config struct {
	SourceDirectory string
	BackupDirectory string

	// Extensions is the case-insensitive allow-list, e.g. ".DBX".
	Extensions []string

	// InUseExtensions are sibling suffixes marking a file as open, e.g. ".PRE".
	InUseExtensions []string

	// SkipDatedFiles skips source files whose names already carry a date.
	SkipDatedFiles bool

	MinFreeSpaceGB float64

	ArchiveFormat string
	SevenZipPath  string

	RetentionScope string
}
