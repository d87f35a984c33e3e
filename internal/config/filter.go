package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// BuildFileFilter compiles a project's Include/Exclude glob lists and, if
// RespectGitignore is set, its root .gitignore into a single predicate over
// absolute paths: true means the path is in scope for indexing.
//
// Patterns are matched against the path relative to Project.Root using
// doublestar, which (unlike filepath.Match) understands "**" for
// arbitrary-depth directory wildcards.
func (c *Config) BuildFileFilter() (func(absPath string) bool, error) {
	root := c.Project.Root

	var gi *GitignoreParser
	if c.Index.RespectGitignore {
		gi = NewGitignoreParser()
		if err := gi.LoadGitignore(root); err != nil {
			return nil, err
		}
	}

	include := append([]string(nil), c.Include...)
	exclude := append([]string(nil), c.Exclude...)

	return func(absPath string) bool {
		rel, err := filepath.Rel(root, absPath)
		if err != nil {
			return false
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, "../") || rel == ".." {
			return false
		}

		if gi != nil {
			info, statErr := os.Stat(absPath)
			isDir := statErr == nil && info.IsDir()
			if gi.ShouldIgnore(rel, isDir) {
				return false
			}
		}

		for _, pat := range exclude {
			if ok, _ := doublestar.Match(pat, rel); ok {
				return false
			}
		}

		if len(include) == 0 {
			return true
		}
		for _, pat := range include {
			if ok, _ := doublestar.Match(pat, rel); ok {
				return true
			}
		}
		return false
	}, nil
}
