package backup

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type spaceKeeper interface {
	EnsureSpace(ctx context.Context, targetDir, candidate string) error
}

// Copier stages source files under the backup root.
type Copier struct {
	events     EventSink
	classifier *Classifier
	root       string
	space      spaceKeeper
}

func NewCopier(events EventSink, classifier *Classifier, root string, space spaceKeeper) *Copier {
	if events == nil {
		events = nopSink{}
	}

	return &Copier{
		events:     events,
		classifier: classifier,
		root:       root,
		space:      space,
	}
}

// Copy stages src and returns the staged path. The staged file carries the
// source access and modification times. A source whose name had a copy
// suffix is removed once the staged copy is in place.
func (c *Copier) Copy(ctx context.Context, src SourceFile) (string, error) {
	class := c.classifier.Classify(src.Path)
	target := StagedPath(c.root, class, src)
	dir := filepath.Dir(target)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "unable to create staging directory %s", dir)
	}

	if c.space != nil {
		if err := c.space.EnsureSpace(ctx, dir, src.Path); err != nil {
			return "", err
		}
	}

	if err := copyFile(src, target); err != nil {
		return "", err
	}

	if class.CopySuffixed {
		if err := os.Remove(src.Path); err != nil {
			return target, errors.Wrap(err, "unable to remove copy-suffixed source")
		}

		c.events.Emit(ctx, EventSourceRemoved, logrus.Fields{"source": src.Path, "staged": target})
	}

	return target, nil
}

func copyFile(src SourceFile, target string) error {
	in, err := os.Open(src.Path)
	if err != nil {
		return errors.Wrap(err, "unable to open source")
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return errors.Wrap(err, "unable to stat source")
	}

	tmp := partialPath(target)

	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return errors.Wrap(err, "unable to create staged file")
	}

	_, err = io.Copy(out, in)
	if err == nil {
		err = out.Sync()
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chtimes(tmp, src.AccessTime, src.ModTime)
	}
	if err == nil {
		err = os.Rename(tmp, target)
	}

	if err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, "unable to copy %s to %s", src.Path, target)
	}

	return nil
}
