// Package compiledb is the external "compilation database" collaborator:
// it maps a source path to its compile command and notifies the indexer
// when files change.
package compiledb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/standardbeagle/bgindexd/internal/indexdata"
)

// CompilationDatabase resolves a path to its compile command, and lets a
// caller subscribe to batches of changed files.
type CompilationDatabase interface {
	GetCompileCommand(path string) (indexdata.CompileCommand, bool)
	Watch(ctx context.Context, callback func(changedFiles []string)) error
}

// entry mirrors one object in a clang compile_commands.json file.
type entry struct {
	Directory string   `json:"directory"`
	File      string   `json:"file"`
	Command   string   `json:"command,omitempty"`
	Arguments []string `json:"arguments,omitempty"`
	Output    string   `json:"output,omitempty"`
}

// JSONCompileDB is a CompilationDatabase backed by a compile_commands.json
// file, reloadable when the file changes on disk.
type JSONCompileDB struct {
	path string

	mu       sync.RWMutex
	commands map[string]indexdata.CompileCommand
}

// LoadJSONCompileDB parses jsonPath (a compile_commands.json file) into a
// path -> CompileCommand map keyed by absolute filename.
func LoadJSONCompileDB(jsonPath string) (*JSONCompileDB, error) {
	db := &JSONCompileDB{path: jsonPath}
	if err := db.reload(); err != nil {
		return nil, err
	}
	return db, nil
}

func (db *JSONCompileDB) reload() error {
	raw, err := os.ReadFile(db.path)
	if err != nil {
		return fmt.Errorf("compiledb: reading %s: %w", db.path, err)
	}

	var entries []entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("compiledb: parsing %s: %w", db.path, err)
	}

	commands := make(map[string]indexdata.CompileCommand, len(entries))
	for _, e := range entries {
		abs := e.File
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(e.Directory, abs)
		}
		abs = filepath.Clean(abs)

		args := e.Arguments
		if len(args) == 0 && e.Command != "" {
			args = strings.Fields(e.Command)
		}

		commands[abs] = indexdata.CompileCommand{
			Filename:  abs,
			Directory: e.Directory,
			Args:      args,
		}
	}

	db.mu.Lock()
	db.commands = commands
	db.mu.Unlock()
	return nil
}

// GetCompileCommand returns the compile command for the given absolute
// path, if the database has one.
func (db *JSONCompileDB) GetCompileCommand(path string) (indexdata.CompileCommand, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	cmd, ok := db.commands[path]
	return cmd, ok
}

// Sources returns every path currently in the database, for building the
// initial changed-files list at startup.
func (db *JSONCompileDB) Sources() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]string, 0, len(db.commands))
	for p := range db.commands {
		out = append(out, p)
	}
	return out
}

// Watch delegates to a FileWatcher rooted at the database's own directory
// tree, reloading the database whenever compile_commands.json itself
// changes and forwarding every batch of changed source files.
func (db *JSONCompileDB) Watch(ctx context.Context, callback func(changedFiles []string)) error {
	w, err := NewFileWatcher(filepath.Dir(db.path), func(changed []string) {
		for _, p := range changed {
			if filepath.Clean(p) == filepath.Clean(db.path) {
				if err := db.reload(); err != nil {
					continue
				}
			}
		}
		callback(changed)
	})
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
