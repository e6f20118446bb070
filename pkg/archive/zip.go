package archive

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"

	"github.com/mholt/archives"
	"github.com/pkg/errors"
)

// Zip writes deflate-compressed single entry archives in-process. It is
// always available and serves as the fallback backend.
type Zip struct{}

func NewZip() *Zip {
	return &Zip{}
}

func (z *Zip) Format() string {
	return FormatZip
}

func (z *Zip) Available(context.Context) bool {
	return true
}

func (z *Zip) CreateArchive(ctx context.Context, sourcePath, archivePath string) error {
	files, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		sourcePath: filepath.Base(sourcePath),
	})
	if err != nil {
		return &BackendError{Format: FormatZip, Err: errors.Wrap(err, "unable to stat source")}
	}

	format := archives.Zip{Compression: zip.Deflate}

	err = writeAtomically(archivePath, func(tmpPath string) error {
		out, err := os.Create(tmpPath)
		if err != nil {
			return err
		}

		if err := format.Archive(ctx, out, files); err != nil {
			out.Close()
			return err
		}

		if err := out.Sync(); err != nil {
			out.Close()
			return err
		}

		return out.Close()
	})
	if err != nil {
		return &BackendError{Format: FormatZip, Err: err}
	}

	return nil
}
