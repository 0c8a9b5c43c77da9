package model

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is the sentinel every ConfigError unwraps to.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError reports a configuration-level contract violation detected
// before any computation runs.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfig }

// NewConfigError builds a ConfigError with a formatted reason.
func NewConfigError(field, format string, args ...any) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
