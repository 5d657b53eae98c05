// Package command implements a validate-then-execute pipeline for units of
// business logic. A command declares the shape of its inputs as a static
// schema, the pipeline validates raw inputs against it, and domain logic
// runs only when validation passed. Expected failures land in an outcome
// ledger instead of being returned as errors; only unexpected failures and
// configuration defects surface as errors.
package command

import (
	"context"
	"errors"
)

// Command is a single-execution unit of business logic. Name identifies the
// command (used for logging, metrics, and sub-command error namespacing),
// Schema returns the type-level input schema, and Execute runs the domain
// logic once validation has passed.
//
// Execute returns the domain result, or an error to abort: a halt signal
// obtained from the run's Halt helpers for expected failures, or any other
// error for unexpected ones.
type Command interface {
	Name() string
	Schema() Schema
	Execute(ctx context.Context, run *Run) (any, error)
}

// Validator is an optional hook for cross-field or externally-dependent
// checks the static schema cannot express. It runs after schema validation
// and defaulting, before Execute, and may record input or runtime errors on
// the run directly.
type Validator interface {
	Validate(ctx context.Context, run *Run) error
}

// Transactional marks a command whose Execute must run inside the runner's
// transaction provider. Running such a command on a runner without a
// provider installed is a configuration error.
type Transactional interface {
	RunsInTransaction() bool
}

// ErrNilSchema is returned when a command's Schema() yields nil. The schema
// must be discoverable at the type level before any validation runs; a nil
// schema is a configuration defect, rejected before the pipeline starts and
// never recorded in the outcome.
var ErrNilSchema = errors.New("command: schema is nil")

// errHalt is the internal control-flow signal distinguishing "stop, an error
// was already recorded" from an unexpected failure. It is caught exactly
// once, at the top of the run pipeline, and never escapes to callers.
var errHalt = errors.New("command: execution halted")

// Logger is the minimal logging surface the pipeline needs. The zap-backed
// logger in internal/common/logger satisfies it.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}
