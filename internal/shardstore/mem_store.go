package shardstore

import (
	"sync"

	"github.com/standardbeagle/bgindexd/internal/indexdata"
)

// MemStore is an in-memory Store for tests. Safe for concurrent use.
type MemStore struct {
	mu     sync.RWMutex
	shards map[string]*indexdata.IndexFileOut

	// FailPaths, if non-nil, marks paths whose Store calls fail for as long
	// as they stay marked, simulating a ShardWriteError for
	// property/error-path tests.
	FailPaths map[string]bool
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{shards: make(map[string]*indexdata.IndexFileOut)}
}

func (s *MemStore) Load(absPath string) (*indexdata.IndexFileOut, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	shard, ok := s.shards[absPath]
	return shard, ok
}

func (s *MemStore) Store(absPath string, shard *indexdata.IndexFileOut) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailPaths[absPath] {
		return errStoreFailed{path: absPath}
	}
	s.shards[absPath] = shard
	return nil
}

func (s *MemStore) Close() error { return nil }

type errStoreFailed struct{ path string }

func (e errStoreFailed) Error() string { return "shardstore: simulated failure for " + e.path }

// MemFactory hands out a single shared MemStore regardless of project root,
// convenient for tests that only exercise one project at a time.
type MemFactory struct {
	mu    sync.Mutex
	store *MemStore
}

func NewMemFactory() *MemFactory {
	return &MemFactory{store: NewMemStore()}
}

func (f *MemFactory) StoreFor(projectRoot string) (Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.store, nil
}
