package sample

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrInvalidConfig = errors.New("invalid sampling config")
)

// ConfigError reports a configuration option outside its valid range.
type ConfigError struct {
	Option string // Option name as it appears in config files (e.g. "top_p")
	Value  any    // Rejected value
	Reason string // Constraint that was violated
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid sampling config: %s = %v (%s)", e.Option, e.Value, e.Reason)
}

// Unwrap returns ErrInvalidConfig so callers can match with errors.Is.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}
