package backup

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

type spaceProber interface {
	Free(ctx context.Context, path string) (uint64, error)
}

type archiveFile struct {
	path  string
	group string
	ts    time.Time
}

// Retention keeps the backup root above its free space floor by evicting the
// oldest archive of some identity, never the last one of a group.
type Retention struct {
	events     EventSink
	prober     spaceProber
	classifier *Classifier
	catalog    ArchiveCatalog

	root    string
	minFree uint64
	scope   string

	mu   sync.Mutex
	skip map[string]struct{}

	now func() time.Time
}

func NewRetention(
	events EventSink,
	prober spaceProber,
	classifier *Classifier,
	catalog ArchiveCatalog,
	root string,
	minFree uint64,
	scope string,
) *Retention {
	if events == nil {
		events = nopSink{}
	}
	if catalog == nil {
		catalog = NopCatalog()
	}
	if scope == "" {
		scope = RetentionScopeIdentity
	}

	return &Retention{
		events:     events,
		prober:     prober,
		classifier: classifier,
		catalog:    catalog,
		root:       root,
		minFree:    minFree,
		scope:      scope,
		skip:       make(map[string]struct{}),
		now:        time.Now,
	}
}

// Exclude puts an archive on the skip-list so it is never evicted nor counted
// as a group member.
func (r *Retention) Exclude(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.skip[filepath.Clean(path)] = struct{}{}
}

func (r *Retention) ResetExclusions() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.skip = make(map[string]struct{})
}

// EnsureSpace returns once free space at targetDir exceeds the size of
// candidate plus the configured floor, evicting archives as needed. It fails
// with ErrCannotFreeSpace when nothing is left to evict.
func (r *Retention) EnsureSpace(ctx context.Context, targetDir, candidate string) error {
	info, err := os.Stat(candidate)
	if err != nil {
		return errors.Wrap(err, "unable to stat space candidate")
	}

	required := uint64(info.Size()) + r.minFree

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		free, err := r.prober.Free(ctx, targetDir)
		if err != nil {
			return err
		}

		fields := logrus.Fields{"dir": targetDir, "free_bytes": free, "required_bytes": required}

		if free > required {
			r.events.Emit(ctx, EventSpaceSufficient, fields)
			return nil
		}

		r.events.Emit(ctx, EventSpaceInsufficient, fields)

		if _, err := r.EvictOldest(ctx, candidate); err != nil {
			return err
		}
	}
}

// EvictOldest deletes the oldest archive of the lexically first group that
// still has more than one member and returns its path.
func (r *Retention) EvictOldest(ctx context.Context, candidate string) (string, error) {
	scopeDir := r.scopeDir(candidate)

	files, err := r.archives(scopeDir)
	if err != nil {
		return "", err
	}

	groups := lo.GroupBy(files, func(f archiveFile) string { return f.group })

	keys := lo.Keys(groups)
	sort.Strings(keys)

	for _, key := range keys {
		members := groups[key]
		if len(members) < 2 {
			continue
		}

		oldest := lo.MinBy(members, func(a, b archiveFile) bool {
			if a.ts.Equal(b.ts) {
				return a.path < b.path
			}
			return a.ts.Before(b.ts)
		})

		if err := os.Remove(oldest.path); err != nil {
			return "", errors.Wrapf(err, "unable to evict %s", oldest.path)
		}

		r.events.Emit(ctx, EventArchiveEvicted, logrus.Fields{
			"archive":      oldest.path,
			"group":        key,
			"group_before": len(members),
		})

		if err := r.catalog.MarkEvicted(ctx, oldest.path, r.now()); err != nil {
			r.events.Emit(ctx, EventCatalogFailed, logrus.Fields{"archive": oldest.path, "error": err.Error()})
		}

		return oldest.path, nil
	}

	r.events.Emit(ctx, EventSpaceExhausted, logrus.Fields{"scope": scopeDir})

	return "", errors.Wrapf(ErrCannotFreeSpace, "no evictable archive under %s", scopeDir)
}

func (r *Retention) scopeDir(candidate string) string {
	if r.scope == RetentionScopeRoot {
		return r.root
	}

	return filepath.Join(r.root, r.classifier.Classify(candidate).BaseName)
}

func (r *Retention) archives(dir string) ([]archiveFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var files []archiveFile

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == dir && os.IsNotExist(err) {
				return filepath.SkipDir
			}
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !entry.Type().IsRegular() {
			return nil
		}

		if _, skipped := r.skip[filepath.Clean(path)]; skipped {
			return nil
		}

		group, ts, ok := ParseArchiveName(entry.Name())
		if !ok {
			return nil
		}

		files = append(files, archiveFile{path: path, group: group, ts: ts})

		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to list archives under %s", dir)
	}

	return files, nil
}
