package bgindex

import (
	"path/filepath"

	"github.com/standardbeagle/bgindexd/internal/debug"
	"github.com/standardbeagle/bgindexd/internal/digest"
	bgerrors "github.com/standardbeagle/bgindexd/internal/errors"
	"github.com/standardbeagle/bgindexd/internal/indexdata"
	"github.com/standardbeagle/bgindexd/internal/parserdriver"
	"github.com/standardbeagle/bgindexd/internal/shardstore"
	"github.com/standardbeagle/bgindexd/internal/symbolstore"
	"github.com/standardbeagle/bgindexd/internal/uriutil"
)

// resolveAbs implements step 1 of index(): a compile command's filename,
// resolved to an absolute path against its directory if necessary.
func resolveAbs(cmd indexdata.CompileCommand) string {
	f := cmd.Filename
	if !filepath.IsAbs(f) {
		f = filepath.Join(cmd.Directory, f)
	}
	return filepath.Clean(f)
}

// freshnessFilter builds the file filter from step 4: skip (return false)
// iff abs digests successfully and the snapshot holds a matching digest
// with had_errors == false. It also honors the caller-supplied Filter, so
// a path outside the indexed project never gets walked regardless of its
// freshness.
func (bi *BackgroundIndex) freshnessFilter(snapshot map[string]symbolstore.ShardVersion) parserdriver.FileFilter {
	return func(abs string) bool {
		if !bi.filter(abs) {
			return false
		}
		d, err := digest.File(bi.fsys, abs)
		if err != nil {
			return true
		}
		v, ok := snapshot[abs]
		if ok && v.Digest == d && !v.HadErrors {
			return false
		}
		return true
	}
}

// runIndex is the Background-priority task body: run index() and log
// whatever comes back, without propagating the error to a caller.
func (bi *BackgroundIndex) runIndex(cmd indexdata.CompileCommand, store shardstore.Store) {
	if err := bi.index(cmd, store); err != nil {
		debug.LogIndexing("bgindex: indexing %s failed: %v\n", cmd.Filename, err)
	}
}

// index parses one translation unit, partitions the results across the
// shards they belong to, and updates the in-memory symbol snapshot.
func (bi *BackgroundIndex) index(cmd indexdata.CompileCommand, store shardstore.Store) error {
	abs := resolveAbs(cmd)
	cmd.Filename = abs

	if _, err := digest.File(bi.fsys, abs); err != nil {
		return err
	}

	snapshot := bi.versions.Snapshot()
	filter := bi.freshnessFilter(snapshot)

	result, hadErrors, err := bi.driver.Parse(cmd, bi.fsys, filter)
	if err != nil {
		return err
	}

	if hadErrors {
		for uri, node := range result.Sources {
			node.Flags |= indexdata.FlagHadErrors
			result.Sources[uri] = node
		}
	}

	bi.update(abs, result, snapshot, store, hadErrors)

	if bi.rebuilderRunning() {
		bi.symbolsUpdated.Store(true)
	} else {
		bi.publishLight()
	}

	return nil
}

// shardBuild accumulates the slabs attached to one file-to-rewrite while
// partitioning a TU's results.
type shardBuild struct {
	digest    digest.Digest
	node      indexdata.IncludeGraphNode
	symbols   indexdata.SymbolSlab
	refs      indexdata.RefSlab
	relations indexdata.RelationSlab
}

// update decides which files need a rewritten shard, attaches every
// symbol/ref/relation to the right shard, persists each one, and finally
// applies the freshness-checked in-memory update under the shard-versions
// lock.
func (bi *BackgroundIndex) update(main string, result indexdata.IndexFileIn, snapshot map[string]symbolstore.ShardVersion, store shardstore.Store, hadErrors bool) {
	cache := uriutil.New(main)

	shards := make(map[string]*shardBuild)
	for uri, node := range result.Sources {
		abs := cache.Resolve(uri)
		if abs == "" {
			debug.LogIndexing("bgindex: dropping unresolvable source URI %q (treated as transient)\n", uri)
			continue
		}

		old, existed := snapshot[abs]
		stale := !existed || old.Digest != node.Digest || (old.HadErrors && !hadErrors)
		if stale {
			shards[abs] = &shardBuild{digest: node.Digest, node: node}
		}
	}

	// symToDeclPath records, for every symbol attached via its canonical
	// declaration, which file-to-rewrite it landed in; relations attach
	// to that same shard.
	symToDeclPath := make(map[indexdata.SymbolID]string)

	for _, sym := range result.Symbols {
		if sym.CanonicalDeclaration != nil {
			declPath := cache.Resolve(sym.CanonicalDeclaration.FileURI)
			if sb, ok := shards[declPath]; ok {
				sb.symbols = append(sb.symbols, sym)
				symToDeclPath[sym.ID] = declPath
			}
		}

		// A definition attaches independently of the declaration check
		// above: a symbol can have a definition with no separate
		// declaration site (e.g. a function defined inline with no
		// forward declaration), and it must still land in that shard.
		if sym.Definition != nil && (sym.CanonicalDeclaration == nil || sym.Definition.FileURI != sym.CanonicalDeclaration.FileURI) {
			defPath := cache.Resolve(sym.Definition.FileURI)
			if sb, ok := shards[defPath]; ok {
				sb.symbols = append(sb.symbols, sym)
			}
		}
	}

	for _, ref := range result.Refs {
		path := cache.Resolve(ref.Location.FileURI)
		if sb, ok := shards[path]; ok {
			sb.refs = append(sb.refs, ref)
		}
	}

	for _, rel := range result.Relations {
		declPath, ok := symToDeclPath[rel.Subject]
		if !ok {
			continue // subject never attached to a shard, so the relation is dropped
		}
		if sb, ok := shards[declPath]; ok {
			sb.relations = append(sb.relations, rel)
		}
	}

	for abs, sb := range shards {
		sources := indexdata.IncludeGraph{sb.node.URI: sb.node}
		for _, incURI := range sb.node.DirectIncludes {
			if _, ok := sources[incURI]; !ok {
				sources[incURI] = indexdata.IncludeGraphNode{URI: incURI}
			}
		}

		out := &indexdata.IndexFileOut{
			Symbols:   sb.symbols,
			Refs:      sb.refs,
			Relations: sb.relations,
			Sources:   sources,
		}
		if abs == main {
			cmdCopy := result.Cmd
			out.Cmd = &cmdCopy
		}

		if err := store.Store(abs, out); err != nil {
			swErr := bgerrors.NewShardWriteError(abs, err)
			debug.LogShard("bgindex: failed to store shard for %s: %v\n", abs, swErr)
		}
	}

	for abs, sb := range shards {
		nodeHadErrors := sb.node.Flags.Has(indexdata.FlagHadErrors)
		if !bi.versions.Update(abs, sb.digest, nodeHadErrors) {
			continue // a concurrent update already installed the same or a newer version
		}
		bi.symbols.Update(abs, sb.symbols, sb.refs, sb.relations, abs == main)
	}
}
