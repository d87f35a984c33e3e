// Package uriutil resolves the file:// URIs the parser driver attaches to
// symbols, refs, and include-graph nodes into absolute filesystem paths.
package uriutil

import (
	"net/url"
	"path/filepath"
	"sync"

	"github.com/standardbeagle/bgindexd/internal/debug"
)

// Cache resolves URIs to absolute paths once per translation unit. Never
// shared across TUs: construct one per TU indexing pass.
type Cache struct {
	hintDir string

	mu    sync.Mutex
	cache map[string]string
}

// New constructs a Cache. hintPath is the TU's main-file absolute path,
// used to resolve URIs that carry a relative or missing path component.
func New(hintPath string) *Cache {
	return &Cache{
		hintDir: filepath.Dir(hintPath),
		cache:   make(map[string]string),
	}
}

// Resolve returns the absolute path for uri, memoizing the result. Returns
// "" and logs on parse/resolve failure; callers should skip the record.
func (c *Cache) Resolve(uri string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if abs, ok := c.cache[uri]; ok {
		return abs
	}

	abs := c.resolve(uri)
	c.cache[uri] = abs
	return abs
}

func (c *Cache) resolve(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		debug.LogIndexing("uriutil: failed to parse URI %q: %v\n", uri, err)
		return ""
	}

	path := u.Path
	if path == "" {
		path = u.Opaque
	}
	if path == "" {
		debug.LogIndexing("uriutil: URI %q has no path component\n", uri)
		return ""
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(c.hintDir, path)
	}

	return filepath.Clean(path)
}
