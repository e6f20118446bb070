package backup

import (
	"path/filepath"
	"time"
)

// StagedDir returns {root}/{baseName}/{YYYY}/{YYYY.MM}. Directories are keyed
// by year and month only.
func StagedDir(root, baseName string, modTime time.Time) string {
	return filepath.Join(root, baseName, modTime.Format("2006"), modTime.Format("2006.01"))
}

// StagedName returns {baseName}_{YYYY.MM.DD_HH.MM}{ext}.
func StagedName(baseName string, modTime time.Time, ext string) string {
	return baseName + "_" + modTime.Format(TimestampLayout) + ext
}

func StagedPath(root string, class Classification, src SourceFile) string {
	return filepath.Join(
		StagedDir(root, class.BaseName, src.ModTime),
		StagedName(class.BaseName, src.ModTime, src.Extension),
	)
}

// partialPath is the hidden temporary name a file is written under before it
// is renamed into place.
func partialPath(path string) string {
	return filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".partial")
}
