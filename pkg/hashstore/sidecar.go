// Package hashstore keeps the last archived digest of every staged file in a
// flat sidecar file per identity: {root}/{identity}.{algorithm}.
package hashstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/yurykabanov/dbxbackuper/pkg/backup"
)

type Sidecar struct {
	root      string
	algorithm string
}

func NewSidecar(root string) *Sidecar {
	return &Sidecar{
		root:      root,
		algorithm: backup.HashAlgorithm,
	}
}

func (s *Sidecar) path(identity string) string {
	return filepath.Join(s.root, identity+"."+s.algorithm)
}

func (s *Sidecar) Get(ctx context.Context, identity string) (backup.HashRecord, bool, error) {
	path := s.path(identity)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return backup.HashRecord{}, false, nil
	}
	if err != nil {
		return backup.HashRecord{}, false, errors.Wrapf(err, "unable to read %s", path)
	}

	digest := strings.TrimSpace(string(data))
	if digest == "" {
		return backup.HashRecord{}, false, nil
	}

	record := backup.HashRecord{
		Identity:  identity,
		Algorithm: s.algorithm,
		Digest:    digest,
	}

	if info, err := os.Stat(path); err == nil {
		record.ModTime = info.ModTime()
	}

	return record, true, nil
}

// Set writes the digest next to the staging tree and stamps the sidecar with
// the staged file's times.
func (s *Sidecar) Set(ctx context.Context, record backup.HashRecord) error {
	if record.Algorithm != "" && record.Algorithm != s.algorithm {
		return errors.Errorf("unsupported hash algorithm %q", record.Algorithm)
	}

	if err := os.MkdirAll(s.root, 0755); err != nil {
		return errors.Wrap(err, "unable to create hash store directory")
	}

	path := s.path(record.Identity)
	tmp := filepath.Join(s.root, "."+filepath.Base(path)+".partial")

	if err := os.WriteFile(tmp, []byte(record.Digest), 0644); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "unable to write digest")
	}

	if !record.ModTime.IsZero() {
		atime := record.AccessTime
		if atime.IsZero() {
			atime = record.ModTime
		}

		if err := os.Chtimes(tmp, atime, record.ModTime); err != nil {
			_ = os.Remove(tmp)
			return errors.Wrap(err, "unable to set digest times")
		}
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "unable to move digest into place")
	}

	return nil
}
