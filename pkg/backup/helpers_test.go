package backup

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.Out = io.Discard

	return logger
}

// region recordingSink
type recordedEvent struct {
	code   EventCode
	fields logrus.Fields
}

type recordingSink struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (s *recordingSink) Emit(_ context.Context, code EventCode, fields logrus.Fields) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, recordedEvent{code: code, fields: fields})
}

func (s *recordingSink) count(code EventCode) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, e := range s.events {
		if e.code == code {
			n++
		}
	}

	return n
}

// endregion

// region fakeProber
type fakeProber struct {
	free  func(calls int) uint64
	calls int
}

func (p *fakeProber) Free(context.Context, string) (uint64, error) {
	p.calls++
	return p.free(p.calls), nil
}

func plentyOfSpace() *fakeProber {
	return &fakeProber{free: func(int) uint64 { return 1 << 50 }}
}

// endregion

// region memHashStore
type memHashStore struct {
	records map[string]HashRecord
	sets    int
}

func newMemHashStore() *memHashStore {
	return &memHashStore{records: make(map[string]HashRecord)}
}

func (s *memHashStore) Get(_ context.Context, identity string) (HashRecord, bool, error) {
	r, ok := s.records[identity]
	return r, ok, nil
}

func (s *memHashStore) Set(_ context.Context, record HashRecord) error {
	s.sets++
	s.records[record.Identity] = record
	return nil
}

// endregion

func writeFile(t *testing.T, path, content string, modTime time.Time) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	if !modTime.IsZero() {
		require.NoError(t, os.Chtimes(path, modTime, modTime))
	}
}

func listFiles(t *testing.T, root string) []string {
	t.Helper()

	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			rel, _ := filepath.Rel(root, path)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)

	return files
}
