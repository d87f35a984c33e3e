package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

var watchCommand = &cli.Command{
	Name:  "watch",
	Usage: "index the project, then keep reindexing as files change until interrupted",
	Action: func(c *cli.Context) error {
		bi, cfg, db, err := buildBackgroundIndex(c)
		if err != nil {
			return err
		}
		defer bi.Stop()

		bi.Enqueue(db.Sources())

		ctx, cancel := signalContext()
		defer cancel()

		fmt.Printf("watching %s for changes (ctrl-c to stop)\n", cfg.Project.Root)
		if err := db.Watch(ctx, bi.Enqueue); err != nil && ctx.Err() == nil {
			return fmt.Errorf("watch: %w", err)
		}
		return nil
	},
}
