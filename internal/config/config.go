// Package config loads the background indexer's project and runtime
// configuration from a KDL file, applying smart defaults where fields
// are omitted.
package config

import (
	"os"
	"runtime"
)

// Config is the full configuration for a background indexer instance.
type Config struct {
	Version int
	Project Project
	Index   Index
	Queue   Queue
	Include []string
	Exclude []string
}

// Project describes the source tree the indexer maintains a shard store for.
type Project struct {
	Root string
	Name string
}

// Index controls file discovery and freshness policy.
type Index struct {
	MaxFileSize      int64
	FollowSymlinks   bool
	RespectGitignore bool
	WatchMode        bool
	WatchDebounceMs  int
	StorageDir       string // shard-store directory; defaults to <Root>/.bgindex
}

// Queue controls the priority queue / worker pool and periodic rebuilder.
type Queue struct {
	ThreadPoolSize    int  // number of background workers; 0 = auto (NumCPU-1, at least 1)
	BuildIndexPeriod  int  // milliseconds; 0 disables the periodic rebuilder
	PreventStarvation bool // test hook, defaults false
}

// Load reads configuration for rootDir, falling back to defaults if no
// ".bgindex.kdl" file is present.
func Load(rootDir string) (*Config, error) {
	if rootDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			cwd = "."
		}
		rootDir = cwd
	}

	cfg, err := LoadKDL(rootDir)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = Default(rootDir)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EnrichExclusionsWithBuildArtifacts scans the project root for
// language-specific build config files (package.json, Cargo.toml, ...) and
// appends any output directories they declare to Exclude, deduplicating
// against what is already present.
func (c *Config) EnrichExclusionsWithBuildArtifacts() {
	detector := NewBuildArtifactDetector(c.Project.Root)
	detected := detector.DetectOutputDirectories()
	if len(detected) == 0 {
		return
	}
	c.Exclude = DeduplicatePatterns(append(c.Exclude, detected...))
}

// Default returns the built-in configuration for a project rooted at root.
func Default(root string) *Config {
	return &Config{
		Version: 1,
		Project: Project{Root: root},
		Index: Index{
			MaxFileSize:      10 * 1024 * 1024,
			FollowSymlinks:   false,
			RespectGitignore: true,
			WatchMode:        true,
			WatchDebounceMs:  300,
			StorageDir:       "",
		},
		Queue: Queue{
			ThreadPoolSize:    runtime.NumCPU(),
			BuildIndexPeriod:  5000,
			PreventStarvation: false,
		},
		Include: []string{"**/*.c", "**/*.h", "**/*.cc", "**/*.cpp", "**/*.hpp", "**/*.go"},
		Exclude: []string{
			"**/.git/**",
			"**/node_modules/**",
			"**/vendor/**",
			"**/build/**",
			"**/dist/**",
			"**/*.min.js",
		},
	}
}
