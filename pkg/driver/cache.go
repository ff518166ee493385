package driver

import (
	"sync"

	"github.com/zeebo/xxh3"

	"jscodemod/pkg/source"
)

// contentCache remembers the output for the last content seen at each path,
// keyed by an xxh3 hash of the content. Inline sources are never cached.
type contentCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	hash uint64
	out  *Output
}

func newContentCache() *contentCache {
	return &contentCache{entries: make(map[string]cacheEntry)}
}

func (c *contentCache) lookup(sf *source.SourceFile) (*Output, bool) {
	if !sf.IsFile() {
		return nil, false
	}
	c.mu.Lock()
	e, ok := c.entries[sf.Path]
	c.mu.Unlock()
	if !ok || e.hash != xxh3.HashString(sf.Content) {
		return nil, false
	}
	out := *e.out
	out.Source = sf
	out.Cached = true
	return &out, true
}

func (c *contentCache) store(sf *source.SourceFile, out *Output) {
	if !sf.IsFile() {
		return
	}
	c.mu.Lock()
	c.entries[sf.Path] = cacheEntry{hash: xxh3.HashString(sf.Content), out: out}
	c.mu.Unlock()
}
