package symbolstore

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/bgindexd/internal/indexdata"
)

// Entry is one path's most recently indexed slabs.
type Entry struct {
	Path       string
	Symbols    indexdata.SymbolSlab
	Refs       indexdata.RefSlab
	Relations  indexdata.RelationSlab
	CountsRefs bool // true iff Path was indexed as a TU main file
}

// BuildKind selects how build_index trades query speed against build cost.
type BuildKind int

const (
	// Light is cheap and used for the per-TU immediate rebuild when no
	// periodic builder is running.
	Light BuildKind = iota
	// Heavy optimizes for query speed at higher build cost; used by the
	// periodic rebuilder and the shard loader's post-load rebuild.
	Heavy
)

// DupPolicy controls how build_index reconciles duplicate symbol ids
// across paths (e.g. a symbol attached to both its declaration and
// definition shard).
type DupPolicy int

const (
	// Merge keeps one record per duplicate symbol id, preferring the
	// canonical-declaration copy.
	Merge DupPolicy = iota
)

// Index is the opaque, immutable queryable index produced by BuildIndex.
// Query algorithms over it are out of scope for this system; the core only
// builds one and hands it to an IndexBuilder-supplied factory to publish.
type Index interface{}

// IndexBuilder turns a snapshot of entries into a queryable Index. Supplied
// by the downstream consumer; the core treats it as an opaque factory.
type IndexBuilder func(entries []Entry, kind BuildKind, dup DupPolicy) Index

// bucketCount is the number of shards in the path-keyed map. Must be a
// power of two so the bucket mask is a cheap AND.
const bucketCount = 64

type bucket struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// IndexedSymbols is the thread-safe collection of per-path slabs, sharded
// by path hash so unrelated paths update without contending on a single
// lock.
type IndexedSymbols struct {
	buckets []*bucket
	mask    uint64
	builder IndexBuilder
}

// NewIndexedSymbols creates a store that publishes generations via builder.
func NewIndexedSymbols(builder IndexBuilder) *IndexedSymbols {
	buckets := make([]*bucket, bucketCount)
	for i := range buckets {
		buckets[i] = &bucket{entries: make(map[string]Entry)}
	}
	return &IndexedSymbols{
		buckets: buckets,
		mask:    uint64(bucketCount - 1),
		builder: builder,
	}
}

func (s *IndexedSymbols) bucketFor(path string) *bucket {
	h := xxhash.Sum64String(path)
	return s.buckets[h&s.mask]
}

// Update atomically replaces path's entry.
func (s *IndexedSymbols) Update(path string, syms indexdata.SymbolSlab, refs indexdata.RefSlab, rels indexdata.RelationSlab, countsRefs bool) {
	b := s.bucketFor(path)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[path] = Entry{
		Path:       path,
		Symbols:    syms,
		Refs:       refs,
		Relations:  rels,
		CountsRefs: countsRefs,
	}
}

// Get returns the current entry for path, if any. Exposed for tests and
// diagnostics; the update protocol itself only ever calls Update.
func (s *IndexedSymbols) Get(path string) (Entry, bool) {
	b := s.bucketFor(path)
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.entries[path]
	return e, ok
}

// BuildIndex snapshots every entry across all buckets and constructs an
// immutable index via the configured builder.
func (s *IndexedSymbols) BuildIndex(kind BuildKind, dup DupPolicy) Index {
	var entries []Entry
	for _, b := range s.buckets {
		b.mu.Lock()
		for _, e := range b.entries {
			entries = append(entries, e)
		}
		b.mu.Unlock()
	}
	return s.builder(entries, kind, dup)
}

// EstimateMemoryUsage returns a rough byte estimate of everything held in
// the store, used to implement the downstream estimate_memory_usage() hook.
func (s *IndexedSymbols) EstimateMemoryUsage() int64 {
	var total int64
	for _, b := range s.buckets {
		b.mu.Lock()
		for _, e := range b.entries {
			total += int64(len(e.Path))
			for _, sym := range e.Symbols {
				total += int64(len(sym.Name) + len(sym.Signature) + len(sym.Documentation) + 64)
			}
			total += int64(len(e.Refs)) * 48
			total += int64(len(e.Relations)) * 32
		}
		b.mu.Unlock()
	}
	return total
}
