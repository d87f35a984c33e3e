// Package errors defines the typed error hierarchy the background indexer
// uses to distinguish transient conditions (retry the file later) from
// permanent ones (drop the file, keep indexing everything else).
package errors

import (
	"fmt"
	"time"
)

// ErrorType classifies an error for logging and retry decisions.
type ErrorType string

const (
	// ErrorTypeTransientIO covers I/O failures expected to clear on their
	// own: a file briefly locked by another process, a filesystem hiccup.
	// The file stays eligible for re-indexing on the next enqueue.
	ErrorTypeTransientIO ErrorType = "transient_io"

	// ErrorTypeParserSetup covers failures to construct a parse job at all
	// (missing compile command, unreadable driver, bad flags).
	ErrorTypeParserSetup ErrorType = "parser_setup"

	// ErrorTypeParserExecution covers failures during parsing itself, distinct
	// from a translation unit that merely has compiler diagnostics
	// (HadErrors); that case is not an error, see indexdata.IndexFileOut.
	ErrorTypeParserExecution ErrorType = "parser_execution"

	// ErrorTypeShardWrite covers failures to persist a shard to the store.
	ErrorTypeShardWrite ErrorType = "shard_write"

	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeInternal ErrorType = "internal"
)

// IndexingError is the base error shape shared by every typed error below:
// a classified operation on a specific file, wrapping an underlying cause.
type IndexingError struct {
	Type        ErrorType
	FilePath    string
	Operation   string
	Underlying  error
	Timestamp   time.Time
	Recoverable bool
}

func (e *IndexingError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Type, e.Operation, e.FilePath, e.Underlying)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Type, e.Operation, e.Underlying)
}

func (e *IndexingError) Unwrap() error {
	return e.Underlying
}

// IsRecoverable reports whether the enqueuing caller should retry the file.
func (e *IndexingError) IsRecoverable() bool {
	return e.Recoverable
}

// TransientIOError wraps a filesystem read failure encountered while
// indexing or loading a shard for path. Per spec these are logged and
// skipped, not fatal to the worker.
type TransientIOError struct {
	*IndexingError
}

// NewTransientIOError builds a TransientIOError for the given file and
// underlying cause. Always recoverable: the file remains a candidate for
// re-indexing on the next enqueue.
func NewTransientIOError(path, op string, err error) *TransientIOError {
	return &TransientIOError{&IndexingError{
		Type:        ErrorTypeTransientIO,
		FilePath:    path,
		Operation:   op,
		Underlying:  err,
		Timestamp:   time.Now(),
		Recoverable: true,
	}}
}

// ParserSetupError means the parser driver could not even begin work on
// path: no compile command, unreadable file, bad arguments.
type ParserSetupError struct {
	*IndexingError
}

func NewParserSetupError(path string, err error) *ParserSetupError {
	return &ParserSetupError{&IndexingError{
		Type:        ErrorTypeParserSetup,
		FilePath:    path,
		Operation:   "parser_setup",
		Underlying:  err,
		Timestamp:   time.Now(),
		Recoverable: false,
	}}
}

// ParserExecutionError means the parser driver crashed or aborted while
// producing an IndexFileIn for path. Distinct from a translation unit that
// merely had compiler diagnostics attached (HadErrors is not an error).
type ParserExecutionError struct {
	*IndexingError
}

func NewParserExecutionError(path string, err error) *ParserExecutionError {
	return &ParserExecutionError{&IndexingError{
		Type:        ErrorTypeParserExecution,
		FilePath:    path,
		Operation:   "parse",
		Underlying:  err,
		Timestamp:   time.Now(),
		Recoverable: false,
	}}
}

// ShardWriteError means a shard was computed but could not be persisted to
// the shard store. The in-memory symbol tables are still updated, so
// queries see the fresh data while the store keeps its previous contents.
type ShardWriteError struct {
	*IndexingError
}

func NewShardWriteError(path string, err error) *ShardWriteError {
	return &ShardWriteError{&IndexingError{
		Type:        ErrorTypeShardWrite,
		FilePath:    path,
		Operation:   "shard_write",
		Underlying:  err,
		Timestamp:   time.Now(),
		Recoverable: true,
	}}
}

// ConfigError represents a configuration validation failure.
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError aggregates independent failures from a fan-out operation
// (e.g. loading several shard dependencies) without losing any of them.
type MultiError struct {
	Errors []error
}

// NewMultiError filters nils and wraps what remains. Returns nil if every
// element was nil.
func NewMultiError(errs []error) error {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

func (e *MultiError) Unwrap() []error {
	return e.Errors
}
