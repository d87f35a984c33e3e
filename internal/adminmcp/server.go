// Package adminmcp exposes a background indexer's operational surface
// (block_until_idle, estimate_memory_usage, queue depth, enqueue) as MCP
// tools, so an operator or another agent can drive and inspect the indexer
// over stdio.
package adminmcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/bgindexd/internal/bgindex"
	"github.com/standardbeagle/bgindexd/internal/debug"
)

// Server is the admin MCP surface over one BackgroundIndex.
type Server struct {
	bi     *bgindex.BackgroundIndex
	server *mcp.Server
}

// NewServer builds the MCP server and registers its tools. The caller runs
// it with Run.
func NewServer(bi *bgindex.BackgroundIndex, name, version string) *Server {
	s := &Server{bi: bi}
	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: version,
	}, nil)
	s.registerTools()
	return s
}

// Run serves the admin surface over stdio until ctx is cancelled or the
// transport closes.
func (s *Server) Run(ctx context.Context) error {
	debug.LogIndexing("adminmcp: serving admin tools over stdio\n")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "block_until_idle",
		Description: "Wait until the background indexer's queue is empty and no worker is mid-task, or until timeout_ms elapses.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"timeout_ms": {
					Type:        "integer",
					Description: "Maximum time to wait, in milliseconds. 0 or omitted waits indefinitely.",
				},
			},
		},
	}, s.handleBlockUntilIdle)

	s.server.AddTool(&mcp.Tool{
		Name:        "estimate_memory_usage",
		Description: "Report the background indexer's estimated in-memory footprint, in bytes.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}, s.handleEstimateMemoryUsage)

	s.server.AddTool(&mcp.Tool{
		Name:        "queue_stats",
		Description: "Report the number of indexing tasks currently queued.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}, s.handleQueueStats)

	s.server.AddTool(&mcp.Tool{
		Name:        "enqueue",
		Description: "Enqueue a set of changed files for reindexing, the same entry point a file watcher uses.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"files": {
					Type:        "array",
					Items:       &jsonschema.Schema{Type: "string"},
					Description: "Absolute paths of files that changed on disk.",
				},
			},
			Required: []string{"files"},
		},
	}, s.handleEnqueue)
}

type blockUntilIdleParams struct {
	TimeoutMs int64 `json:"timeout_ms"`
}

func (s *Server) handleBlockUntilIdle(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p blockUntilIdleParams
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
			return errorResult("block_until_idle", err), nil
		}
	}

	timeout := time.Duration(p.TimeoutMs) * time.Millisecond
	idle := s.bi.BlockUntilIdle(timeout)
	return jsonResult(map[string]any{"idle": idle})
}

func (s *Server) handleEstimateMemoryUsage(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]any{"bytes": s.bi.EstimateMemoryUsage()})
}

func (s *Server) handleQueueStats(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]any{"queued": s.bi.QueueDepth()})
}

type enqueueParams struct {
	Files []string `json:"files"`
}

func (s *Server) handleEnqueue(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p enqueueParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return errorResult("enqueue", err), nil
	}
	s.bi.Enqueue(p.Files)
	return jsonResult(map[string]any{"enqueued": len(p.Files)})
}

func jsonResult(data any) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(content)}},
	}, nil
}

func errorResult(operation string, err error) *mcp.CallToolResult {
	content, _ := json.Marshal(map[string]any{
		"success":   false,
		"operation": operation,
		"error":     err.Error(),
	})
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(content)}},
		IsError: true,
	}
}
