package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/bgindexd/internal/bgindex"
	"github.com/standardbeagle/bgindexd/internal/compiledb"
	"github.com/standardbeagle/bgindexd/internal/config"
	"github.com/standardbeagle/bgindexd/internal/fsvfs"
	"github.com/standardbeagle/bgindexd/internal/parserdriver"
	"github.com/standardbeagle/bgindexd/internal/shardstore"
)

// buildBackgroundIndex wires one BackgroundIndex from CLI flags: it loads
// the project config, opens the on-disk compile database and shard store,
// and compiles the project's Include/Exclude/.gitignore scoping into the
// Filter every indexing pass consults.
func buildBackgroundIndex(c *cli.Context) (*bgindex.BackgroundIndex, *config.Config, *compiledb.JSONCompileDB, error) {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return nil, nil, nil, err
	}

	ccPath := c.String("compile-commands")
	if !filepath.IsAbs(ccPath) {
		ccPath = filepath.Join(cfg.Project.Root, ccPath)
	}
	db, err := compiledb.LoadJSONCompileDB(ccPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading compile database: %w", err)
	}

	filter, err := cfg.BuildFileFilter()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("building file filter: %w", err)
	}

	storageDir := cfg.Index.StorageDir
	if storageDir == "" {
		storageDir = filepath.Join(cfg.Project.Root, ".bgindex")
	}

	bi := bgindex.New(bgindex.Deps{
		Workers:           cfg.Queue.ThreadPoolSize,
		RebuildPeriod:     time.Duration(cfg.Queue.BuildIndexPeriod) * time.Millisecond,
		PreventStarvation: cfg.Queue.PreventStarvation,
		CompileDB:         db,
		StoreFactory:      shardstore.NewBadgerFactory(storageDir),
		Driver:            parserdriver.NewTreeSitterDriver(),
		FS:                fsvfs.NewOSFS(cfg.Project.Root),
		IndexBuilder:      defaultIndexBuilder,
		Filter:            filter,
	})

	return bi, cfg, db, nil
}
