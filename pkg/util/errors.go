// Package util provides logging helpers and common error types.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across packages
var (
	ErrAlreadyExists    = errors.New("resource already exists")
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrSetup            = errors.New("setup failed")
)

// SetupError represents a fatal topology or configuration problem detected
// before any verification has run.
type SetupError struct {
	Stage    string // "build", "provision", "load-config", "start"
	Artifact string // node, file, or instance the failure refers to
	Err      error
}

func (e *SetupError) Error() string {
	if e.Artifact != "" {
		return fmt.Sprintf("setup: %s %s: %v", e.Stage, e.Artifact, e.Err)
	}
	return fmt.Sprintf("setup: %s: %v", e.Stage, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// NewSetupError creates a setup error for the given stage and artifact.
func NewSetupError(stage, artifact string, err error) *SetupError {
	return &SetupError{Stage: stage, Artifact: artifact, Err: err}
}

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}
