// Package archive provides the single-file archive backends used by the
// archival phase: an in-process zip writer and an external 7z executable.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	FormatZip      = "zip"
	FormatSevenZip = "7z"
)

var ErrBackendUnavailable = errors.New("archive backend is unavailable")

// Backend creates an archive holding exactly one file, stored under its
// basename.
type Backend interface {
	Format() string
	Available(ctx context.Context) bool
	CreateArchive(ctx context.Context, sourcePath, archivePath string) error
}

// BackendError is returned when a backend fails to produce an archive.
type BackendError struct {
	Format   string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *BackendError) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("%s backend exited with code %d: %v (stdout: %q, stderr: %q)",
			e.Format, e.ExitCode, e.Err, e.Stdout, e.Stderr)
	}
	return fmt.Sprintf("%s backend failed: %v", e.Format, e.Err)
}

func (e *BackendError) Cause() error { return e.Err }

func (e *BackendError) Unwrap() error { return e.Err }

// ArchivePath returns the archive path for a staged file.
func ArchivePath(stagedPath, format string) string {
	return stagedPath + "." + format
}

func partialPath(archivePath string) string {
	return filepath.Join(filepath.Dir(archivePath), "."+filepath.Base(archivePath)+".partial")
}

// writeAtomically runs write against a temporary path next to archivePath and
// renames the result into place once write succeeds.
func writeAtomically(archivePath string, write func(tmpPath string) error) error {
	tmp := partialPath(archivePath)

	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "unable to remove stale partial archive")
	}

	if err := write(tmp); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, archivePath); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "unable to move archive into place")
	}

	return nil
}
