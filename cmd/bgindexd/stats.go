package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
)

var statsCommand = &cli.Command{
	Name:  "stats",
	Usage: "load existing shards (reindexing only what changed) and report a summary",
	Action: func(c *cli.Context) error {
		bi, cfg, db, err := buildBackgroundIndex(c)
		if err != nil {
			return err
		}
		defer bi.Stop()

		bi.Enqueue(db.Sources())
		if !bi.BlockUntilIdle(5 * time.Minute) {
			return fmt.Errorf("timed out waiting for shard load to settle")
		}

		idx, _ := bi.Index().(nameIndex)
		fmt.Printf("project root:    %s\n", cfg.Project.Root)
		fmt.Printf("sources known:   %d\n", len(db.Sources()))
		fmt.Printf("symbol names:    %d\n", len(idx))
		fmt.Printf("queue depth:     %d\n", bi.QueueDepth())
		fmt.Printf("estimated bytes: %d\n", bi.EstimateMemoryUsage())
		return nil
	},
}
