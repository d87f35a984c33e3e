package adminmcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/bgindexd/internal/bgindex"
	"github.com/standardbeagle/bgindexd/internal/fsvfs"
	"github.com/standardbeagle/bgindexd/internal/indexdata"
	"github.com/standardbeagle/bgindexd/internal/parserdriver"
	"github.com/standardbeagle/bgindexd/internal/shardstore"
	"github.com/standardbeagle/bgindexd/internal/symbolstore"
)

type nopCompileDB struct{}

func (nopCompileDB) GetCompileCommand(string) (indexdata.CompileCommand, bool) { return indexdata.CompileCommand{}, false }
func (nopCompileDB) Watch(context.Context, func([]string)) error              { return nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	bi := bgindex.New(bgindex.Deps{
		Workers:           2,
		PreventStarvation: true,
		CompileDB:         nopCompileDB{},
		StoreFactory:      shardstore.NewMemFactory(),
		Driver:            parserdriver.NewTreeSitterDriver(),
		FS:                fsvfs.NewMemFS(),
		IndexBuilder: func(entries []symbolstore.Entry, _ symbolstore.BuildKind, _ symbolstore.DupPolicy) symbolstore.Index {
			return len(entries)
		},
	})
	t.Cleanup(bi.Stop)
	return NewServer(bi, "bgindexd-admin-test", "0.0.0-test")
}

func call(t *testing.T, s *Server, handler func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)

	res, err := handler(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Arguments: raw},
	})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)

	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func TestHandleQueueStats(t *testing.T) {
	s := newTestServer(t)
	out := call(t, s, s.handleQueueStats, nil)
	assert.Equal(t, float64(0), out["queued"])
}

func TestHandleEstimateMemoryUsage(t *testing.T) {
	s := newTestServer(t)
	out := call(t, s, s.handleEstimateMemoryUsage, nil)
	_, ok := out["bytes"]
	assert.True(t, ok)
}

func TestHandleBlockUntilIdleWithTimeout(t *testing.T) {
	s := newTestServer(t)
	out := call(t, s, s.handleBlockUntilIdle, map[string]any{"timeout_ms": int64(50 * time.Millisecond.Milliseconds())})
	assert.Equal(t, true, out["idle"])
}

func TestHandleEnqueue(t *testing.T) {
	s := newTestServer(t)
	out := call(t, s, s.handleEnqueue, map[string]any{"files": []string{"/a.cpp", "/b.cpp"}})
	assert.Equal(t, float64(2), out["enqueued"])
}
