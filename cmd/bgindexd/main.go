package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/bgindexd/internal/config"
	"github.com/standardbeagle/bgindexd/internal/version"
)

// loadConfigWithOverrides loads project configuration and applies the
// global CLI flag overrides shared by every subcommand.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		root = cwd
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root path %q: %w", root, err)
	}

	cfg, err := config.Load(absRoot)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	cfg.Project.Root = absRoot

	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}
	if workers := c.Int("workers"); workers > 0 {
		cfg.Queue.ThreadPoolSize = workers
	}

	cfg.EnrichExclusionsWithBuildArtifacts()
	return cfg, nil
}

// globalFlags are shared by every subcommand.
var globalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "root",
		Aliases: []string{"r"},
		Usage:   "project root directory",
		Value:   ".",
	},
	&cli.StringFlag{
		Name:    "compile-commands",
		Aliases: []string{"p"},
		Usage:   "path to compile_commands.json",
		Value:   "compile_commands.json",
	},
	&cli.StringSliceFlag{
		Name:  "include",
		Usage: "override include globs (e.g. --include '**/*.cpp')",
	},
	&cli.StringSliceFlag{
		Name:  "exclude",
		Usage: "additional exclude globs",
	},
	&cli.IntFlag{
		Name:  "workers",
		Usage: "override background worker count (0 = from config)",
	},
}

func main() {
	app := &cli.App{
		Name:                   "bgindexd",
		Usage:                  "background source-code indexer",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags:                  globalFlags,
		Commands: []*cli.Command{
			indexCommand,
			watchCommand,
			statsCommand,
			serveAdminCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
