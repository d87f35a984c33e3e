package shardstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/bgindexd/internal/indexdata"
)

func TestMemStoreLoadMissingReturnsFalse(t *testing.T) {
	s := NewMemStore()
	_, ok := s.Load("/nowhere.cpp")
	assert.False(t, ok)
}

func TestMemStoreStoreThenLoadRoundTrips(t *testing.T) {
	s := NewMemStore()
	shard := &indexdata.IndexFileOut{Symbols: indexdata.SymbolSlab{{ID: "x"}}}

	require.NoError(t, s.Store("/a.cpp", shard))

	got, ok := s.Load("/a.cpp")
	require.True(t, ok)
	assert.Equal(t, shard, got)
}

func TestMemStoreFailPathsSimulatesWriteFailure(t *testing.T) {
	s := NewMemStore()
	s.FailPaths = map[string]bool{"/broken.cpp": true}

	err := s.Store("/broken.cpp", &indexdata.IndexFileOut{})
	assert.Error(t, err)

	_, ok := s.Load("/broken.cpp")
	assert.False(t, ok, "a failed store must not leave a torn shard visible")
}

func TestMemFactoryReturnsSameStoreAcrossRoots(t *testing.T) {
	f := NewMemFactory()
	a, err := f.StoreFor("/proj-a")
	require.NoError(t, err)
	b, err := f.StoreFor("/proj-b")
	require.NoError(t, err)
	assert.Same(t, a, b)
}
