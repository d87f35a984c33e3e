// Package shardstore is the external shard-store contract: a
// content-addressed, per-project persistence layer for IndexFileOut shards,
// keyed by absolute source path.
package shardstore

import "github.com/standardbeagle/bgindexd/internal/indexdata"

// Store is one project's shard store. Safe for concurrent Load/Store calls
// on distinct paths; concurrent Store on the same path is the caller's
// responsibility to serialize (the update protocol does this via the
// shard-versions lock).
type Store interface {
	// Load returns the last-stored shard for absPath, or ok=false if
	// absent or unreadable. A torn shard must be indistinguishable from
	// a missing one.
	Load(absPath string) (shard *indexdata.IndexFileOut, ok bool)

	// Store durably writes shard for absPath. Atomicity is recommended
	// but not required; a torn write must show up as unreadable on the
	// next Load, never as corrupt data.
	Store(absPath string, shard *indexdata.IndexFileOut) error

	// Close releases any resources (open database handles) held by the
	// store.
	Close() error
}

// Factory maps a project source root to a Store instance, opening and
// caching one store per root.
type Factory interface {
	StoreFor(projectRoot string) (Store, error)
}
