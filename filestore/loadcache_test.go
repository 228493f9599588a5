package filestore

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInfo struct {
	fs.FileInfo
	mtime time.Time
}

func (f fakeInfo) ModTime() time.Time { return f.mtime }

func TestLoadCacheKeyedByMtime(t *testing.T) {
	mtime := baseTime
	var reads atomic.Int32

	c := NewLoadCache(
		WithStat(func(string) (fs.FileInfo, error) { return fakeInfo{mtime: mtime}, nil }),
		WithReader(func(path string) (*Table, error) {
			n := reads.Add(1)
			return &Table{Header: []string{"n"}, Rows: [][]string{{string(rune('0' + n))}}}, nil
		}),
	)

	first, err := c.Load("a.csv")
	require.NoError(t, err)
	second, err := c.Load("a.csv")
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int32(1), reads.Load())

	mtime = mtime.Add(time.Second)
	third, err := c.Load("a.csv")
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, "2", third.Rows[0][0])

	stats := c.Stats()
	assert.Equal(t, CacheStats{Entries: 1, Hits: 1, Misses: 2}, stats)
}

func TestLoadCacheSeparatePaths(t *testing.T) {
	c := NewLoadCache(
		WithStat(func(string) (fs.FileInfo, error) { return fakeInfo{mtime: baseTime}, nil }),
		WithReader(func(path string) (*Table, error) { return &Table{Header: []string{path}}, nil }),
	)

	a, err := c.Load("a.csv")
	require.NoError(t, err)
	b, err := c.Load("b.csv")
	require.NoError(t, err)

	assert.Equal(t, "a.csv", a.Header[0])
	assert.Equal(t, "b.csv", b.Header[0])
	assert.Equal(t, 2, c.Stats().Entries)
}

func TestLoadCacheMissingFileIsEmpty(t *testing.T) {
	c := NewLoadCache()

	tbl, err := c.Load(filepath.Join(t.TempDir(), "gone.csv"))
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())

	tbl, err = c.Load("")
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
}

func TestLoadCacheFileVanishesBeforeRead(t *testing.T) {
	c := NewLoadCache(
		WithStat(func(string) (fs.FileInfo, error) { return fakeInfo{mtime: baseTime}, nil }),
		WithReader(func(path string) (*Table, error) { return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist} }),
	)

	tbl, err := c.Load("raced.csv")
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestLoadCachePropagatesReadErrors(t *testing.T) {
	boom := errors.New("permission denied")
	c := NewLoadCache(
		WithStat(func(string) (fs.FileInfo, error) { return fakeInfo{mtime: baseTime}, nil }),
		WithReader(func(string) (*Table, error) { return nil, boom }),
	)

	_, err := c.Load("locked.csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "locked.csv", loadErr.Path)
}

func TestLoadCacheConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leo_2025-08_daily.csv")
	require.NoError(t, os.WriteFile(path, []byte(dailyCSV), 0o644))

	c := NewLoadCache()
	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tbl, err := c.Load(path)
			assert.NoError(t, err)
			assert.Equal(t, 4, tbl.Len())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, c.Stats().Entries)
}
