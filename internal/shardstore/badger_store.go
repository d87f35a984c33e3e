package shardstore

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/standardbeagle/bgindexd/internal/debug"
	"github.com/standardbeagle/bgindexd/internal/indexdata"
)

// BadgerFactory opens one embedded Badger database per project root,
// caching handles so repeated StoreFor calls for the same root are cheap.
type BadgerFactory struct {
	// BaseDir is where per-project databases live when a project doesn't
	// specify its own storage directory: BaseDir/<sha256(root)[:16]>.
	BaseDir string

	mu     sync.Mutex
	stores map[string]*BadgerStore
}

// NewBadgerFactory creates a factory rooted at baseDir.
func NewBadgerFactory(baseDir string) *BadgerFactory {
	return &BadgerFactory{BaseDir: baseDir, stores: make(map[string]*BadgerStore)}
}

// StoreFor returns the shard store for projectRoot, opening its database on
// first use.
func (f *BadgerFactory) StoreFor(projectRoot string) (Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if s, ok := f.stores[projectRoot]; ok {
		return s, nil
	}

	dir := filepath.Join(f.BaseDir, projectHash(projectRoot))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("shardstore: creating %s: %w", dir, err)
	}

	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("shardstore: opening badger db at %s: %w", dir, err)
	}

	s := &BadgerStore{db: db}
	f.stores[projectRoot] = s
	return s, nil
}

func projectHash(root string) string {
	sum := sha256.Sum256([]byte(root))
	return hex.EncodeToString(sum[:8])
}

// BadgerStore persists shards as gzip-compressed JSON in an embedded Badger
// database, keyed directly by absolute path.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore wraps an already-open Badger database.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

func (s *BadgerStore) Load(absPath string) (*indexdata.IndexFileOut, bool) {
	var compressed []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(absPath))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			compressed = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		if err != badger.ErrKeyNotFound {
			debug.LogShard("load failed for %s: %v\n", absPath, err)
		}
		return nil, false
	}

	shard, err := decodeShard(compressed)
	if err != nil {
		debug.LogShard("shard for %s unreadable, treating as absent: %v\n", absPath, err)
		return nil, false
	}
	return shard, true
}

func (s *BadgerStore) Store(absPath string, shard *indexdata.IndexFileOut) error {
	encoded, err := encodeShard(shard)
	if err != nil {
		return fmt.Errorf("shardstore: encoding shard for %s: %w", absPath, err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(absPath), encoded)
	})
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func encodeShard(shard *indexdata.IndexFileOut) ([]byte, error) {
	raw, err := json.Marshal(shard)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(raw); err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeShard(compressed []byte) (*indexdata.IndexFileOut, error) {
	gr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer gr.Close()

	raw, err := io.ReadAll(gr)
	if err != nil {
		return nil, err
	}

	var shard indexdata.IndexFileOut
	if err := json.Unmarshal(raw, &shard); err != nil {
		return nil, err
	}
	return &shard, nil
}
