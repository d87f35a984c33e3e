package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/bgindexd/internal/adminmcp"
	"github.com/standardbeagle/bgindexd/internal/version"
)

var serveAdminCommand = &cli.Command{
	Name:  "serve-admin",
	Usage: "watch the project and serve the admin MCP surface over stdio until interrupted",
	Action: func(c *cli.Context) error {
		bi, cfg, db, err := buildBackgroundIndex(c)
		if err != nil {
			return err
		}
		defer bi.Stop()

		bi.Enqueue(db.Sources())

		ctx, cancel := signalContext()
		defer cancel()

		admin := adminmcp.NewServer(bi, "bgindexd-admin", version.Version)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return db.Watch(gctx, bi.Enqueue)
		})
		g.Go(func() error {
			return admin.Run(gctx)
		})

		fmt.Printf("serving admin MCP tools for %s over stdio (ctrl-c to stop)\n", cfg.Project.Root)
		if err := g.Wait(); err != nil && gctx.Err() == nil {
			return fmt.Errorf("serve-admin: %w", err)
		}
		return nil
	},
}
