package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL attempts to load configuration from a ".bgindex.kdl" file in
// projectRoot. Returns (nil, nil) when no such file exists.
func LoadKDL(projectRoot string) (*Config, error) {
	kdlPath := filepath.Join(projectRoot, ".bgindex.kdl")

	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read .bgindex.kdl: %w", err)
	}

	cfg, err := parseKDL(string(content))
	if err != nil {
		return nil, err
	}

	if cfg.Project.Root != "" {
		var absRoot string
		if filepath.IsAbs(cfg.Project.Root) {
			absRoot = cfg.Project.Root
		} else {
			absRoot = filepath.Join(projectRoot, cfg.Project.Root)
		}
		cfg.Project.Root = filepath.Clean(absRoot)
	} else {
		absRoot, err := filepath.Abs(projectRoot)
		if err == nil {
			cfg.Project.Root = absRoot
		} else {
			cfg.Project.Root = projectRoot
		}
	}

	if cfg.Index.StorageDir != "" && !filepath.IsAbs(cfg.Index.StorageDir) {
		cfg.Index.StorageDir = filepath.Join(cfg.Project.Root, cfg.Index.StorageDir)
	}

	return cfg, nil
}

func parseKDL(content string) (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	cfg := Default(cwd)

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "index":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_file_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Index.MaxFileSize = int64(v)
					}
					if s, ok := firstStringArg(cn); ok {
						if sz, err := parseSize(s); err == nil {
							cfg.Index.MaxFileSize = sz
						}
					}
				case "follow_symlinks":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Index.FollowSymlinks = b
					}
				case "respect_gitignore":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Index.RespectGitignore = b
					}
				case "watch_mode":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Index.WatchMode = b
					}
				case "watch_debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Index.WatchDebounceMs = v
					}
				case "storage_dir":
					if s, ok := firstStringArg(cn); ok {
						cfg.Index.StorageDir = s
					}
				}
			}
		case "queue":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "thread_pool_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Queue.ThreadPoolSize = v
					}
				case "build_index_period_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Queue.BuildIndexPeriod = v
					}
				case "prevent_starvation":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Queue.PreventStarvation = b
					}
				}
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			cfg.Exclude = collectStringArgs(n)
		}
	}

	cfg.EnrichExclusionsWithBuildArtifacts()

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseSize handles size strings like "10MB", "500KB", "1GB".
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		multiplier = 1
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return 0, err
	}

	return num * multiplier, nil
}
