package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFileFilterIncludeExclude(t *testing.T) {
	root := t.TempDir()
	cfg := &Config{
		Project: Project{Root: root},
		Include: []string{"**/*.cpp"},
		Exclude: []string{"**/vendor/**"},
	}

	filter, err := cfg.BuildFileFilter()
	require.NoError(t, err)

	assert.True(t, filter(filepath.Join(root, "src", "a.cpp")))
	assert.False(t, filter(filepath.Join(root, "src", "a.go")))
	assert.False(t, filter(filepath.Join(root, "vendor", "a.cpp")))
}

func TestBuildFileFilterRejectsPathsOutsideRoot(t *testing.T) {
	root := t.TempDir()
	cfg := &Config{Project: Project{Root: root}}

	filter, err := cfg.BuildFileFilter()
	require.NoError(t, err)

	assert.False(t, filter(filepath.Join(filepath.Dir(root), "elsewhere.cpp")))
}

func TestBuildFileFilterHonorsGitignore(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("build/\n"), 0o644))

	cfg := &Config{
		Project: Project{Root: root},
		Index:   Index{RespectGitignore: true},
	}

	filter, err := cfg.BuildFileFilter()
	require.NoError(t, err)

	assert.False(t, filter(filepath.Join(root, "build", "out.cpp")))
	assert.True(t, filter(filepath.Join(root, "src", "a.cpp")))
}

func TestBuildFileFilterNoIncludeMeansEverythingNotExcluded(t *testing.T) {
	root := t.TempDir()
	cfg := &Config{Project: Project{Root: root}}

	filter, err := cfg.BuildFileFilter()
	require.NoError(t, err)

	assert.True(t, filter(filepath.Join(root, "anything.xyz")))
}
