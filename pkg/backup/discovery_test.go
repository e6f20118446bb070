package backup

import (
	"context"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverer_Walk(t *testing.T) {
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "sales.DBX"), "1", time.Time{})
	writeFile(t, filepath.Join(root, "nested", "stock.dbx"), "2", time.Time{})
	writeFile(t, filepath.Join(root, "nested", "stock.dbx.PRE"), "", time.Time{})
	writeFile(t, filepath.Join(root, "readme.txt"), "3", time.Time{})
	writeFile(t, filepath.Join(root, "backup", "sales", "sales_2025.06.01_14.22.dbx"), "4", time.Time{})

	d := NewDiscoverer(NewClassifier([]string{".PRE"}), []string{".dbx"}, filepath.Join(root, "backup"))

	found := map[string]Candidate{}
	err := d.Walk(context.Background(), root, func(c Candidate) error {
		rel, _ := filepath.Rel(root, c.Source.Path)
		found[filepath.ToSlash(rel)] = c
		return nil
	})
	require.NoError(t, err)

	var names []string
	for name := range found {
		names = append(names, name)
	}
	sort.Strings(names)

	assert.Equal(t, []string{"nested/stock.dbx", "sales.DBX"}, names)

	assert.False(t, found["sales.DBX"].Class.IsInUse)
	assert.Equal(t, ".DBX", found["sales.DBX"].Source.Extension)
	assert.Equal(t, int64(1), found["sales.DBX"].Source.Size)

	assert.True(t, found["nested/stock.dbx"].Class.IsInUse)
	assert.Equal(t, "stock", found["nested/stock.dbx"].Class.BaseName)
}

func TestDiscoverer_Walk_Restartable(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.dbx"), "1", time.Time{})
	writeFile(t, filepath.Join(root, "b.dbx"), "2", time.Time{})

	d := NewDiscoverer(NewClassifier(nil), []string{".dbx"})

	count := func() int {
		n := 0
		require.NoError(t, d.Walk(context.Background(), root, func(Candidate) error {
			n++
			return nil
		}))
		return n
	}

	assert.Equal(t, 2, count())
	assert.Equal(t, 2, count())
}

func TestDiscoverer_Walk_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.dbx"), "1", time.Time{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	visited := 0
	err := NewDiscoverer(NewClassifier(nil), []string{".dbx"}).Walk(ctx, root, func(Candidate) error {
		visited++
		return nil
	})

	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, 0, visited)
}

func TestDiscoverer_Walk_MissingRoot(t *testing.T) {
	err := NewDiscoverer(NewClassifier(nil), []string{".dbx"}).
		Walk(context.Background(), filepath.Join(t.TempDir(), "missing"), func(Candidate) error { return nil })

	assert.Error(t, err)
}
