package config

import (
	"errors"
	"fmt"
	"runtime"

	bgerrors "github.com/standardbeagle/bgindexd/internal/errors"
)

// Validator validates configuration and sets smart defaults.
type Validator struct{}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults.
// Returns an error if validation fails.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateProjectConfig(&cfg.Project); err != nil {
		return bgerrors.NewConfigError("project", "", err)
	}

	if err := v.validateIndexConfig(&cfg.Index); err != nil {
		return bgerrors.NewConfigError("index", "", err)
	}

	if err := v.validateQueueConfig(&cfg.Queue); err != nil {
		return bgerrors.NewConfigError("queue", "", err)
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateProjectConfig(project *Project) error {
	if project.Root == "" {
		return errors.New("project root cannot be empty")
	}
	return nil
}

func (v *Validator) validateIndexConfig(index *Index) error {
	if index.MaxFileSize <= 0 {
		return fmt.Errorf("MaxFileSize must be positive, got %d", index.MaxFileSize)
	}

	if index.MaxFileSize > 100*1024*1024 {
		return fmt.Errorf("MaxFileSize should not exceed 100MB, got %d", index.MaxFileSize)
	}

	if index.WatchDebounceMs < 0 {
		return fmt.Errorf("WatchDebounceMs cannot be negative, got %d", index.WatchDebounceMs)
	}

	return nil
}

func (v *Validator) validateQueueConfig(q *Queue) error {
	if q.ThreadPoolSize < 0 {
		return fmt.Errorf("ThreadPoolSize cannot be negative, got %d", q.ThreadPoolSize)
	}

	if q.BuildIndexPeriod < 0 {
		return fmt.Errorf("BuildIndexPeriod cannot be negative, got %d", q.BuildIndexPeriod)
	}

	return nil
}

// setSmartDefaults applies smart defaults based on system capabilities.
func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Queue.ThreadPoolSize == 0 {
		numCPU := runtime.NumCPU()
		cfg.Queue.ThreadPoolSize = max(1, numCPU-1)
	}

	if cfg.Index.StorageDir == "" {
		cfg.Index.StorageDir = cfg.Project.Root + "/.bgindex"
	}

	if cfg.Index.WatchDebounceMs == 0 {
		cfg.Index.WatchDebounceMs = 300
	}
}

// ValidateConfig is a convenience function for quick validation.
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.ValidateAndSetDefaults(cfg)
}
