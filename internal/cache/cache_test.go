package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/simonhull/loopbar/loop"
)

var (
	t0   = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	info = loop.Info{Valid: true, SampleRate: 44100, Start: 1, End: 2}
)

func newCache(t *testing.T, size int) *Cache {
	t.Helper()
	c, err := New(size, zaptest.NewLogger(t))
	require.NoError(t, err)
	return c
}

func TestNew_InvalidSize(t *testing.T) {
	_, err := New(0, nil)
	assert.Error(t, err)
}

func TestGet_ChangeInvalidates(t *testing.T) {
	c := newCache(t, 8)
	k := Key{Path: "/a.flac", Size: 100, ModTime: t0}
	c.Add(k, info)

	got, ok := c.Get(k)
	require.True(t, ok)
	assert.Equal(t, info, got)

	_, ok = c.Get(Key{Path: "/a.flac", Size: 101, ModTime: t0})
	assert.False(t, ok, "size change")

	_, ok = c.Get(Key{Path: "/a.flac", Size: 100, ModTime: t0.Add(time.Second)})
	assert.False(t, ok, "mtime change")

	_, ok = c.Get(Key{Path: "/b.flac", Size: 100, ModTime: t0})
	assert.False(t, ok, "other path")

	s := c.Stats()
	assert.Equal(t, uint64(1), s.Hits)
	assert.Equal(t, uint64(3), s.Misses)
	assert.Equal(t, 1, s.Len)
}

func TestAdd_ReplacesOlderVersion(t *testing.T) {
	c := newCache(t, 8)
	old := Key{Path: "/a.flac", Size: 100, ModTime: t0}
	updated := Key{Path: "/a.flac", Size: 120, ModTime: t0.Add(time.Minute)}

	c.Add(old, info)
	c.Add(updated, loop.Info{SampleRate: 44100})

	_, ok := c.Get(old)
	assert.False(t, ok)
	got, ok := c.Get(updated)
	require.True(t, ok)
	assert.False(t, got.Valid)
	assert.Equal(t, 1, c.Stats().Len)
}

func TestEviction(t *testing.T) {
	c := newCache(t, 2)
	keys := []Key{
		{Path: "/1", Size: 1, ModTime: t0},
		{Path: "/2", Size: 1, ModTime: t0},
		{Path: "/3", Size: 1, ModTime: t0},
	}
	for _, k := range keys {
		c.Add(k, info)
	}

	_, ok := c.Get(keys[0])
	assert.False(t, ok, "oldest entry evicted")
	_, ok = c.Get(keys[2])
	assert.True(t, ok)
	assert.Equal(t, 2, c.Stats().Len)
}

func TestInvalidateAndPurge(t *testing.T) {
	c := newCache(t, 8)
	a := Key{Path: "/a", Size: 1, ModTime: t0}
	b := Key{Path: "/b", Size: 1, ModTime: t0}
	c.Add(a, info)
	c.Add(b, info)

	c.Invalidate("/a")
	_, ok := c.Get(a)
	assert.False(t, ok)
	_, ok = c.Get(b)
	assert.True(t, ok)

	c.Purge()
	_, ok = c.Get(b)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Stats().Len)
}

func TestResolve(t *testing.T) {
	c := newCache(t, 8)
	path := filepath.Join(t.TempDir(), "bgm.flac")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	calls := 0
	load := func(context.Context, string) (loop.Info, error) {
		calls++
		return info, nil
	}

	ctx := context.Background()
	for range 3 {
		got, err := c.Resolve(ctx, path, load)
		require.NoError(t, err)
		assert.Equal(t, info, got)
	}
	assert.Equal(t, 1, calls)

	require.NoError(t, os.WriteFile(path, []byte("version two"), 0o644))
	_, err := c.Resolve(ctx, path, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "size change reloads")
}

func TestResolve_Errors(t *testing.T) {
	c := newCache(t, 8)
	ctx := context.Background()

	_, err := c.Resolve(ctx, filepath.Join(t.TempDir(), "missing"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.flac")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	boom := errors.New("boom")
	_, err = c.Resolve(ctx, path, func(context.Context, string) (loop.Info, error) {
		return loop.Info{}, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Stats().Len, "failures are not cached")
}

func TestKeyString(t *testing.T) {
	k := Key{Path: "/a", Size: 3, ModTime: time.Unix(0, 42)}
	assert.Equal(t, "/a|3|42", k.String())
}
