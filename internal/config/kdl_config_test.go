package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKDL_Defaults(t *testing.T) {
	cfg, err := parseKDL("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, int64(10*1024*1024), cfg.Index.MaxFileSize)
	assert.True(t, cfg.Index.RespectGitignore)
	assert.True(t, cfg.Index.WatchMode)
}

func TestParseKDL_ProjectAndIndex(t *testing.T) {
	kdlContent := `
project {
    root "."
    name "widget"
}
index {
    max_file_size "5MB"
    follow_symlinks true
    watch_debounce_ms 500
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)
	assert.Equal(t, "widget", cfg.Project.Name)
	assert.Equal(t, int64(5*1024*1024), cfg.Index.MaxFileSize)
	assert.True(t, cfg.Index.FollowSymlinks)
	assert.Equal(t, 500, cfg.Index.WatchDebounceMs)
}

func TestParseKDL_QueueConfig(t *testing.T) {
	kdlContent := `
queue {
    thread_pool_size 4
    build_index_period_ms 2000
    prevent_starvation true
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Queue.ThreadPoolSize)
	assert.Equal(t, 2000, cfg.Queue.BuildIndexPeriod)
	assert.True(t, cfg.Queue.PreventStarvation)
}

func TestParseKDL_IncludeExclude(t *testing.T) {
	kdlContent := `
include "**/*.cc" "**/*.hh"
exclude "**/vendor/**"
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)
	assert.Contains(t, cfg.Include, "**/*.cc")
	assert.Contains(t, cfg.Include, "**/*.hh")
	assert.Equal(t, []string{"**/vendor/**"}, cfg.Exclude)
}

func TestParseKDL_MaxFileSizeInteger(t *testing.T) {
	cfg, err := parseKDL(`index { max_file_size 2048 }`)
	require.NoError(t, err)
	assert.Equal(t, int64(2048), cfg.Index.MaxFileSize)
}

func TestParseSize(t *testing.T) {
	cases := map[string]int64{
		"10B":   10,
		"1KB":   1024,
		"2MB":   2 * 1024 * 1024,
		"1GB":   1024 * 1024 * 1024,
		"512":   512,
	}
	for in, want := range cases {
		got, err := parseSize(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
