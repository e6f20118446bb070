package backup

import (
	"context"
	"io/fs"
	"path/filepath"

	"github.com/pkg/errors"
)

// Discoverer walks a directory tree and yields allow-listed files. Every Walk
// starts over from the root and reads directories lazily.
type Discoverer struct {
	classifier *Classifier
	extensions []string
	exclude    []string
}

// NewDiscoverer creates a walker. Directories listed in exclude (and their
// subtrees) are never entered.
func NewDiscoverer(classifier *Classifier, extensions []string, exclude ...string) *Discoverer {
	cleaned := make([]string, 0, len(exclude))
	for _, dir := range exclude {
		if dir != "" {
			cleaned = append(cleaned, filepath.Clean(dir))
		}
	}

	return &Discoverer{
		classifier: classifier,
		extensions: extensions,
		exclude:    cleaned,
	}
}

// Walk calls visit for every allow-listed regular file under root. An error
// returned by visit stops the walk and is returned as is. Context
// cancellation is checked between files.
func (d *Discoverer) Walk(ctx context.Context, root string, visit func(Candidate) error) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			if path == root {
				return errors.Wrapf(err, "unable to walk %s", root)
			}
			// unreadable subtree, keep walking the rest
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.IsDir() {
			if path != root && d.excluded(path) {
				return filepath.SkipDir
			}
			return nil
		}

		if !entry.Type().IsRegular() || !hasAllowedExtension(entry.Name(), d.extensions) {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			// vanished between listing and stat
			return nil
		}

		class := d.classifier.Classify(path)
		class.IsInUse = d.classifier.IsInUse(path)

		return visit(Candidate{
			Source: sourceFileFromInfo(path, info),
			Class:  class,
		})
	})
}

func (d *Discoverer) excluded(path string) bool {
	clean := filepath.Clean(path)

	for _, dir := range d.exclude {
		if clean == dir {
			return true
		}
	}

	return false
}
