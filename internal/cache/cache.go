// Package cache keeps resolved loop sections in memory so that re-scanning a
// library only opens files that changed.
package cache

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/simonhull/loopbar/loop"
)

const falsePositiveRate = 0.01

// Key identifies one version of a file.
type Key struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// KeyFor returns the key of a file from its stat info.
func KeyFor(path string, info os.FileInfo) Key {
	return Key{Path: path, Size: info.Size(), ModTime: info.ModTime()}
}

func (k Key) String() string {
	return k.Path + "|" + strconv.FormatInt(k.Size, 10) + "|" + strconv.FormatInt(k.ModTime.UnixNano(), 10)
}

type entry struct {
	key  Key
	info loop.Info
}

// Loader resolves the loop section of a file.
type Loader func(ctx context.Context, path string) (loop.Info, error)

// Stats counts cache lookups.
type Stats struct {
	Hits   uint64
	Misses uint64
	Len    int
}

// Cache is a bounded LRU of loop sections keyed by path. An entry is only
// returned while the file's size and modification time are unchanged.
//
// A bloom filter of every stored key answers most misses without touching
// the LRU. It is rebuilt on Purge.
type Cache struct {
	logger *zap.Logger
	size   int

	mu   sync.Mutex
	lru  *lru.Cache[string, entry]
	seen *bloom.BloomFilter

	hits, misses atomic.Uint64
}

// New returns a cache holding up to size entries.
func New(size int, logger *zap.Logger) (*Cache, error) {
	if size <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", size)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{
		logger: logger.Named("cache"),
		size:   size,
		seen:   bloom.NewWithEstimates(uint(size), falsePositiveRate),
	}
	l, err := lru.NewWithEvict(size, c.onEvict)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	c.lru = l
	return c, nil
}

func (c *Cache) onEvict(path string, _ entry) {
	c.logger.Debug("evicted", zap.String("path", path))
}

// Get returns the loop section stored for k.
func (c *Cache) Get(k Key) (loop.Info, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.seen.TestString(k.String()) {
		c.misses.Add(1)
		return loop.Info{}, false
	}
	e, ok := c.lru.Get(k.Path)
	if !ok || e.key.Size != k.Size || !e.key.ModTime.Equal(k.ModTime) {
		c.misses.Add(1)
		return loop.Info{}, false
	}
	c.hits.Add(1)
	return e.info, true
}

// Add stores info for k, replacing any older version of the same path.
func (c *Cache) Add(k Key, info loop.Info) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seen.AddString(k.String())
	c.lru.Add(k.Path, entry{key: k, info: info})
}

// Invalidate drops the entry for path.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(path)
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
	c.seen = bloom.NewWithEstimates(uint(c.size), falsePositiveRate)
}

// Stats returns lookup counters and the current size.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	n := c.lru.Len()
	c.mu.Unlock()
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Len: n}
}

// Resolve returns the loop section of path, calling load only when the file
// is new or changed since it was last cached.
func (c *Cache) Resolve(ctx context.Context, path string, load Loader) (loop.Info, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return loop.Info{}, fmt.Errorf("stat %s: %w", path, err)
	}
	k := KeyFor(path, stat)
	if info, ok := c.Get(k); ok {
		return info, nil
	}

	info, err := load(ctx, path)
	if err != nil {
		return loop.Info{}, err
	}
	c.Add(k, info)
	c.logger.Debug("resolved",
		zap.String("path", path),
		zap.Bool("valid", info.Valid),
		zap.Int64("size", k.Size))
	return info, nil
}
