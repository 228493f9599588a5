package filestore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ReadFunc parses the file at path.
type ReadFunc func(path string) (*Table, error)

// StatFunc reports file metadata; os.Stat by default.
type StatFunc func(path string) (fs.FileInfo, error)

type cacheKey struct {
	path  string
	mtime int64
}

// CacheStats is a point-in-time view of the cache counters.
type CacheStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// LoadCache memoizes parsed files by (path, mtime). A changed mtime is a miss
// and evicts the stale entry for that path, so each path holds at most one
// live entry. There is no TTL and no size bound.
type LoadCache struct {
	mu      sync.Mutex
	entries map[cacheKey]*Table
	group   singleflight.Group

	read   ReadFunc
	stat   StatFunc
	logger *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// CacheOption configures a LoadCache.
type CacheOption func(*LoadCache)

// WithReader replaces the CSV parser.
func WithReader(read ReadFunc) CacheOption {
	return func(c *LoadCache) {
		c.read = read
	}
}

// WithStat replaces os.Stat.
func WithStat(stat StatFunc) CacheOption {
	return func(c *LoadCache) {
		c.stat = stat
	}
}

// WithCacheLogger sets the logger used for cache events.
func WithCacheLogger(logger *zap.Logger) CacheOption {
	return func(c *LoadCache) {
		c.logger = logger
	}
}

// NewLoadCache creates an empty cache reading CSV files from disk.
func NewLoadCache(opts ...CacheOption) *LoadCache {
	c := &LoadCache{
		entries: make(map[cacheKey]*Table),
		read:    ReadCSV,
		stat:    os.Stat,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load returns the parsed content of path, parsing it only when no entry
// matches its current mtime. A missing file is an empty table.
func (c *LoadCache) Load(path string) (*Table, error) {
	if path == "" {
		return &Table{}, nil
	}

	info, err := c.stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Table{}, nil
	}
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	key := cacheKey{path: path, mtime: info.ModTime().UnixNano()}

	c.mu.Lock()
	t, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		c.hits.Add(1)
		return t, nil
	}

	v, err, _ := c.group.Do(fmt.Sprintf("%s\x00%d", key.path, key.mtime), func() (any, error) {
		return c.fill(key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

func (c *LoadCache) fill(key cacheKey) (*Table, error) {
	c.misses.Add(1)

	t, err := c.read(key.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Table{}, nil
	}
	if err != nil {
		return nil, &LoadError{Path: key.path, Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.path == key.path && k.mtime != key.mtime {
			delete(c.entries, k)
			c.logger.Debug("evicted stale cache entry", zap.String("path", k.path))
		}
	}
	c.entries[key] = t
	c.logger.Debug("cached file", zap.String("path", key.path), zap.Int("rows", t.Len()))
	return t, nil
}

// Stats returns the current entry count and hit/miss counters.
func (c *LoadCache) Stats() CacheStats {
	c.mu.Lock()
	n := len(c.entries)
	c.mu.Unlock()
	return CacheStats{
		Entries: n,
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}
