package assets

import (
	"os"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/sbenjam1n/assetgen/internal/rule"
)

type cacheKey struct {
	path    string
	size    int64
	modTime int64
}

type cachedFragment struct {
	kind     rule.Kind
	fragment string
}

// FragmentCache remembers extracted fragments of unchanged rule files. A
// file counts as unchanged while its size and modification time are the
// same. It is safe for concurrent use.
type FragmentCache struct {
	lru *lru.Cache[cacheKey, cachedFragment]
}

// NewFragmentCache holds at most size fragments.
func NewFragmentCache(size int) (*FragmentCache, error) {
	c, err := lru.New[cacheKey, cachedFragment](size)
	if err != nil {
		return nil, err
	}
	return &FragmentCache{lru: c}, nil
}

func keyFor(path string, info os.FileInfo) cacheKey {
	return cacheKey{path: path, size: info.Size(), modTime: info.ModTime().UnixNano()}
}

func (c *FragmentCache) get(k cacheKey) (cachedFragment, bool) {
	if c == nil {
		return cachedFragment{}, false
	}
	return c.lru.Get(k)
}

func (c *FragmentCache) put(k cacheKey, v cachedFragment) {
	if c == nil {
		return
	}
	c.lru.Add(k, v)
}

// Len is the number of cached fragments.
func (c *FragmentCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
