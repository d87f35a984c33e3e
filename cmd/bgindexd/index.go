package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/bgindexd/internal/symbolstore"
)

// nameIndex is the default, minimal Index: a name -> shard entries lookup.
// Real query/ranking algorithms over it are out of scope for this system;
// this only proves the IndexBuilder contract end to end for the CLI.
type nameIndex map[string][]symbolstore.Entry

func defaultIndexBuilder(entries []symbolstore.Entry, _ symbolstore.BuildKind, _ symbolstore.DupPolicy) symbolstore.Index {
	idx := make(nameIndex)
	for _, e := range entries {
		for _, sym := range e.Symbols {
			idx[sym.Name] = append(idx[sym.Name], e)
		}
	}
	return idx
}

var indexCommand = &cli.Command{
	Name:  "index",
	Usage: "index every source file named by the compile database, then exit",
	Action: func(c *cli.Context) error {
		bi, cfg, db, err := buildBackgroundIndex(c)
		if err != nil {
			return err
		}
		defer bi.Stop()

		sources := db.Sources()
		fmt.Printf("indexing %d source(s) under %s\n", len(sources), cfg.Project.Root)

		bi.Enqueue(sources)
		if !bi.BlockUntilIdle(30 * time.Minute) {
			return fmt.Errorf("timed out waiting for indexing to finish")
		}

		idx, _ := bi.Index().(nameIndex)
		fmt.Printf("done: %d distinct symbol name(s), ~%d bytes resident\n", len(idx), bi.EstimateMemoryUsage())
		return nil
	},
}
