// Package bgindex is the orchestrator: it wires the priority queue,
// shard-version table, indexed-symbols store, shard store factory, parser
// driver, and compilation database into a background indexer, and exposes
// the small surface real callers use to drive and query it.
package bgindex

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/standardbeagle/bgindexd/internal/compiledb"
	"github.com/standardbeagle/bgindexd/internal/fsvfs"
	"github.com/standardbeagle/bgindexd/internal/indexdata"
	"github.com/standardbeagle/bgindexd/internal/parserdriver"
	"github.com/standardbeagle/bgindexd/internal/queue"
	"github.com/standardbeagle/bgindexd/internal/shardstore"
	"github.com/standardbeagle/bgindexd/internal/symbolstore"
)

// Deps are the external collaborators a BackgroundIndex is built from,
// plus the injectable IndexBuilder that turns a symbol snapshot into a
// queryable Index without this package ever touching a query algorithm
// itself.
type Deps struct {
	Workers           int
	RebuildPeriod     time.Duration // 0 disables the periodic rebuilder
	PreventStarvation bool

	CompileDB    compiledb.CompilationDatabase
	StoreFactory shardstore.Factory
	Driver       parserdriver.Driver
	FS           fsvfs.FS
	IndexBuilder symbolstore.IndexBuilder

	// Filter additionally restricts which paths ever get indexed (e.g.
	// "inside the project root"), independent of the freshness check
	// index() applies on top of it. Defaults to parserdriver.AllowAll.
	Filter parserdriver.FileFilter
}

// indexHolder lets a symbolstore.Index (itself interface{}) be stored in an
// atomic.Pointer, which requires a concrete pointee type.
type indexHolder struct {
	idx symbolstore.Index
}

// BackgroundIndex is the top-level type: construct with New, feed it file
// changes with Enqueue, and read the always-consistent published index
// through Index.
type BackgroundIndex struct {
	queue    *queue.Queue
	versions *symbolstore.VersionTable
	symbols  *symbolstore.IndexedSymbols

	storeFactory shardstore.Factory
	driver       parserdriver.Driver
	fsys         fsvfs.FS
	compileDB    compiledb.CompilationDatabase
	filter       parserdriver.FileFilter

	published atomic.Pointer[indexHolder]

	rebuildPeriod  time.Duration
	symbolsUpdated atomic.Bool
	stopCh         chan struct{}
	rebuilderWG    sync.WaitGroup
}

// New constructs a BackgroundIndex and, if RebuildPeriod > 0, starts the
// periodic rebuilder goroutine.
func New(d Deps) *BackgroundIndex {
	filter := d.Filter
	if filter == nil {
		filter = parserdriver.AllowAll
	}

	bi := &BackgroundIndex{
		queue:         queue.New(d.Workers),
		versions:      symbolstore.NewVersionTable(),
		symbols:       symbolstore.NewIndexedSymbols(d.IndexBuilder),
		storeFactory:  d.StoreFactory,
		driver:        d.Driver,
		fsys:          d.FS,
		compileDB:     d.CompileDB,
		filter:        filter,
		rebuildPeriod: d.RebuildPeriod,
		stopCh:        make(chan struct{}),
	}

	if d.PreventStarvation {
		bi.queue.PreventThreadStarvationInTests()
	}

	if bi.rebuildPeriod > 0 {
		bi.rebuilderWG.Add(1)
		go bi.runRebuilder()
	}

	return bi
}

// Enqueue is the only entry point real callers use: it wraps a
// load-shards pass in a Normal-priority task so an interactive edit
// jumps ahead of any queued bulk reindex.
func (bi *BackgroundIndex) Enqueue(changedFiles []string) {
	if len(changedFiles) == 0 {
		return
	}
	files := append([]string(nil), changedFiles...)
	bi.queue.Enqueue(queue.Normal, func() {
		bi.loadShards(files)
	})
}

// enqueueCmd is the second, internal-only entry point: a single TU
// indexing pass, always Background-priority.
func (bi *BackgroundIndex) enqueueCmd(cmd indexdata.CompileCommand, store shardstore.Store) {
	bi.queue.Enqueue(queue.Background, func() {
		bi.runIndex(cmd, store)
	})
}

// BlockUntilIdle waits for the queue's idle predicate: no queued tasks,
// no worker mid-execution. timeout <= 0 waits indefinitely.
func (bi *BackgroundIndex) BlockUntilIdle(timeout time.Duration) bool {
	return bi.queue.BlockUntilIdle(timeout)
}

// PreventThreadStarvationInTests disables the Background-task yield on
// this index's own queue; other BackgroundIndex instances are not
// affected. Tests only.
func (bi *BackgroundIndex) PreventThreadStarvationInTests() {
	bi.queue.PreventThreadStarvationInTests()
}

// EstimateMemoryUsage reports the approximate resident size of the
// indexed-symbols store, for admin and capacity-planning use.
func (bi *BackgroundIndex) EstimateMemoryUsage() int64 {
	return bi.symbols.EstimateMemoryUsage()
}

// QueueDepth reports the number of tasks currently queued, not counting
// tasks a worker is actively executing. Exposed for admin/observability
// surfaces.
func (bi *BackgroundIndex) QueueDepth() int {
	return bi.queue.Len()
}

// Index returns the currently published, self-consistent generation of the
// queryable index, or nil if nothing has been published yet.
func (bi *BackgroundIndex) Index() symbolstore.Index {
	h := bi.published.Load()
	if h == nil {
		return nil
	}
	return h.idx
}

func (bi *BackgroundIndex) publish(idx symbolstore.Index) {
	bi.published.Store(&indexHolder{idx: idx})
}

func (bi *BackgroundIndex) publishLight() {
	bi.publish(bi.symbols.BuildIndex(symbolstore.Light, symbolstore.Merge))
}

func (bi *BackgroundIndex) publishHeavy() {
	bi.publish(bi.symbols.BuildIndex(symbolstore.Heavy, symbolstore.Merge))
}

func (bi *BackgroundIndex) rebuilderRunning() bool {
	return bi.rebuildPeriod > 0
}

// Stop is a cooperative shutdown: the rebuilder and every worker observe
// the stop signal on their next iteration and exit; in-flight tasks are
// not interrupted. Stop blocks until all of them return.
func (bi *BackgroundIndex) Stop() {
	close(bi.stopCh)
	bi.rebuilderWG.Wait()
	bi.queue.Stop()
}
