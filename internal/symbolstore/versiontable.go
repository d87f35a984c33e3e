// Package symbolstore holds the two shared, lock-guarded stores at the
// center of the update protocol: the shard-version table recording what's
// on disk per path, and the indexed symbols store from which queryable
// index generations are built.
package symbolstore

import (
	"sync"

	"github.com/standardbeagle/bgindexd/internal/digest"
)

// ShardVersion is what the indexer currently believes is true about one
// path's on-disk shard.
type ShardVersion struct {
	Digest    digest.Digest
	HadErrors bool
}

// VersionTable is the single process-wide map abs_path -> ShardVersion,
// guarded by a mutex. A path appears in the table iff the indexer has
// ever accepted a shard for it; entries are never removed.
type VersionTable struct {
	mu sync.Mutex
	m  map[string]ShardVersion
}

// NewVersionTable creates an empty table.
func NewVersionTable() *VersionTable {
	return &VersionTable{m: make(map[string]ShardVersion)}
}

// Get returns the current version for path, if any.
func (t *VersionTable) Get(path string) (ShardVersion, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.m[path]
	return v, ok
}

// Snapshot copies the whole table under the lock and returns it, so a
// long-running TU indexing pass can make stable "skip if unchanged"
// decisions without holding the lock.
func (t *VersionTable) Snapshot() map[string]ShardVersion {
	t.mu.Lock()
	defer t.mu.Unlock()
	snap := make(map[string]ShardVersion, len(t.m))
	for k, v := range t.m {
		snap[k] = v
	}
	return snap
}

// Update applies the freshness rule: it installs {newDigest, hadErrors}
// for path and returns true, unless the entry already exists with the
// same digest and is not the "previously broken, now fixed" case. In
// that case a concurrent update already produced an equal-or-newer
// version and this call is a no-op, returning false.
func (t *VersionTable) Update(path string, newDigest digest.Digest, hadErrors bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	old, existed := t.m[path]
	if existed && old.Digest == newDigest && !(old.HadErrors && !hadErrors) {
		return false
	}

	t.m[path] = ShardVersion{Digest: newDigest, HadErrors: hadErrors}
	return true
}
