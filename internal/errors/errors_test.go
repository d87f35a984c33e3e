package errors

import (
	"errors"
	"testing"
	"time"
)

func TestTransientIOError(t *testing.T) {
	underlying := errors.New("device busy")
	err := NewTransientIOError("/path/to/file", "read", underlying)

	if err.Type != ErrorTypeTransientIO {
		t.Errorf("Expected Type to be ErrorTypeTransientIO, got %v", err.Type)
	}

	if err.FilePath != "/path/to/file" {
		t.Errorf("Expected FilePath to be '/path/to/file', got %s", err.FilePath)
	}

	if err.Operation != "read" {
		t.Errorf("Expected Operation to be 'read', got %s", err.Operation)
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	if !err.IsRecoverable() {
		t.Errorf("Expected TransientIOError to be recoverable")
	}

	expectedMsg := "transient_io read failed for /path/to/file: device busy"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestParserSetupError(t *testing.T) {
	underlying := errors.New("no compile command")
	err := NewParserSetupError("/path/to/file.cpp", underlying)

	if err.Type != ErrorTypeParserSetup {
		t.Errorf("Expected Type to be ErrorTypeParserSetup, got %v", err.Type)
	}

	if err.FilePath != "/path/to/file.cpp" {
		t.Errorf("Expected FilePath to be '/path/to/file.cpp', got %s", err.FilePath)
	}

	if err.IsRecoverable() {
		t.Errorf("Expected ParserSetupError to be non-recoverable")
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}
}

func TestParserExecutionError(t *testing.T) {
	underlying := errors.New("segfault in parser")
	err := NewParserExecutionError("/path/to/file.cpp", underlying)

	if err.Type != ErrorTypeParserExecution {
		t.Errorf("Expected Type to be ErrorTypeParserExecution, got %v", err.Type)
	}

	if err.Operation != "parse" {
		t.Errorf("Expected Operation to be 'parse', got %s", err.Operation)
	}

	if err.IsRecoverable() {
		t.Errorf("Expected ParserExecutionError to be non-recoverable")
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}
}

func TestShardWriteError(t *testing.T) {
	underlying := errors.New("disk full")
	err := NewShardWriteError("/path/to/file.cpp", underlying)

	if err.Type != ErrorTypeShardWrite {
		t.Errorf("Expected Type to be ErrorTypeShardWrite, got %v", err.Type)
	}

	if !err.IsRecoverable() {
		t.Errorf("Expected ShardWriteError to be recoverable")
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := "shard_write shard_write failed for /path/to/file.cpp: disk full"
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestConfigError(t *testing.T) {
	underlying := errors.New("invalid value")
	err := NewConfigError("field_name", "invalid_value", underlying)

	if err.Field != "field_name" {
		t.Errorf("Expected Field to be 'field_name', got %s", err.Field)
	}

	if err.Value != "invalid_value" {
		t.Errorf("Expected Value to be 'invalid_value', got %s", err.Value)
	}

	if !errors.Is(err, underlying) {
		t.Errorf("Expected error to unwrap to underlying error")
	}

	expectedMsg := `config error for field field_name (value invalid_value): invalid value`
	if err.Error() != expectedMsg {
		t.Errorf("Expected error message %q, got %q", expectedMsg, err.Error())
	}
}

func TestMultiError(t *testing.T) {
	err1 := errors.New("error 1")
	err2 := errors.New("error 2")
	err3 := errors.New("error 3")

	multiErr := NewMultiError([]error{err1, err2, err3})
	me, ok := multiErr.(*MultiError)
	if !ok {
		t.Fatalf("Expected *MultiError, got %T", multiErr)
	}

	if len(me.Errors) != 3 {
		t.Errorf("Expected 3 errors, got %d", len(me.Errors))
	}

	expectedMsg := "3 errors: [error 1 error 2 error 3]"
	if me.Error() != expectedMsg {
		t.Errorf("Expected message %q, got %q", expectedMsg, me.Error())
	}

	singleErr := NewMultiError([]error{err1})
	if singleErr.Error() != "error 1" {
		t.Errorf("Expected 'error 1', got %q", singleErr.Error())
	}

	if emptyErr := NewMultiError([]error{}); emptyErr != nil {
		t.Errorf("Expected nil for an all-nil/empty error slice, got %v", emptyErr)
	}

	nilFiltered := NewMultiError([]error{err1, nil, err2, nil}).(*MultiError)
	if len(nilFiltered.Errors) != 2 {
		t.Errorf("Expected 2 errors after filtering nil, got %d", len(nilFiltered.Errors))
	}

	unwrapped := me.Unwrap()
	if len(unwrapped) != 3 {
		t.Errorf("Expected 3 unwrapped errors, got %d", len(unwrapped))
	}
}

func TestTimestamp(t *testing.T) {
	err := NewTransientIOError("/path/to/file", "read", errors.New("test"))
	if err.Timestamp.IsZero() {
		t.Errorf("Expected non-zero timestamp")
	}

	now := time.Now()
	if err.Timestamp.After(now) || now.Sub(err.Timestamp) > time.Second {
		t.Errorf("Timestamp seems incorrect: %v", err.Timestamp)
	}
}

func BenchmarkTransientIOError(b *testing.B) {
	underlying := errors.New("underlying error")
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		err := NewTransientIOError("/path/to/file", "read", underlying)
		_ = err.Error()
	}
}
