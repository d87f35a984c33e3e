package bgindex

import (
	"math/rand"

	"github.com/standardbeagle/bgindexd/internal/debug"
	"github.com/standardbeagle/bgindexd/internal/digest"
	bgerrors "github.com/standardbeagle/bgindexd/internal/errors"
	"github.com/standardbeagle/bgindexd/internal/indexdata"
	"github.com/standardbeagle/bgindexd/internal/shardstore"
	"github.com/standardbeagle/bgindexd/internal/uriutil"
)

// depResult is one entry of loadShard's return value: an absolute path
// reachable from a TU, and whether it needs re-indexing.
type depResult struct {
	path  string
	needs bool
}

type pendingTU struct {
	cmd   indexdata.CompileCommand
	store shardstore.Store
}

// loadShards is the Normal-priority task body enqueued by Enqueue: for
// each changed file with a known compile command, walk its on-disk shard
// graph, then enqueue a Background-priority reindex for every TU that
// came back stale, in a freshly randomized order so contention spreads
// across dependent translation units instead of hammering one at a time.
func (bi *BackgroundIndex) loadShards(changedFiles []string) {
	loadedShards := make(map[string]bool)
	enqueuedTUs := make(map[string]bool)
	var pending []pendingTU
	var storeErrs []error

	for _, f := range changedFiles {
		cmd, ok := bi.compileDB.GetCompileCommand(f)
		if !ok {
			continue
		}

		store, err := bi.storeFactory.StoreFor(cmd.Directory)
		if err != nil {
			storeErrs = append(storeErrs, bgerrors.NewTransientIOError(f, "store_for", err))
			continue
		}

		abs := resolveAbs(cmd)
		deps := bi.loadShard(abs, store, loadedShards)

		needsReindex := false
		for _, d := range deps {
			if d.needs {
				needsReindex = true
				break
			}
		}

		if needsReindex && !enqueuedTUs[abs] {
			enqueuedTUs[abs] = true
			pending = append(pending, pendingTU{cmd: cmd, store: store})
		}
	}

	if agg := bgerrors.NewMultiError(storeErrs); agg != nil {
		debug.LogIndexing("bgindex: %d file(s) had no shard store: %v\n", len(storeErrs), agg)
	}

	rand.Shuffle(len(pending), func(i, j int) { pending[i], pending[j] = pending[j], pending[i] })
	for _, p := range pending {
		bi.enqueueCmd(p.cmd, p.store)
	}

	bi.publishHeavy()
}

// loadShard walks the shard graph already on disk breadth-first from main,
// installing every shard whose own node it can find and reporting, for
// main and every dependency it reached, whether the on-disk content still
// matches what's recorded.
func (bi *BackgroundIndex) loadShard(main string, store shardstore.Store, loadedShards map[string]bool) []depResult {
	type qitem struct {
		path  string
		needs bool
	}

	queue := []qitem{{path: main, needs: true}}
	needsByPath := make(map[string]bool)
	var order []string

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if loadedShards[cur.path] {
			if _, seen := needsByPath[cur.path]; !seen {
				needsByPath[cur.path] = false
				order = append(order, cur.path)
			}
			continue
		}
		loadedShards[cur.path] = true
		order = append(order, cur.path)

		shard, ok := store.Load(cur.path)
		if !ok || len(shard.Sources) == 0 {
			needsByPath[cur.path] = true
			continue
		}

		cache := uriutil.New(cur.path)
		var selfNode *indexdata.IncludeGraphNode
		for uri, node := range shard.Sources {
			abs := cache.Resolve(uri)
			if abs == "" {
				continue
			}
			if abs == cur.path {
				n := node
				selfNode = &n
			}
			if !loadedShards[abs] {
				queue = append(queue, qitem{path: abs, needs: true})
			}
		}

		needs := true
		if selfNode != nil {
			if onDisk, err := digest.File(bi.fsys, cur.path); err == nil && onDisk == selfNode.Digest {
				needs = false
			}
		}
		needsByPath[cur.path] = needs

		if selfNode != nil {
			bi.versions.Update(cur.path, selfNode.Digest, selfNode.Flags.Has(indexdata.FlagHadErrors))
			bi.symbols.Update(cur.path, shard.Symbols, shard.Refs, shard.Relations, selfNode.Flags.Has(indexdata.FlagIsTU))
		}
	}

	results := make([]depResult, 0, len(order))
	for _, p := range order {
		results = append(results, depResult{path: p, needs: needsByPath[p]})
	}
	return results
}
