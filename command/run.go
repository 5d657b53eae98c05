package command

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"cmdkit/guard"
	"cmdkit/outcome"
	"cmdkit/txn"
)

// Run is one execution of a command. It holds the raw inputs as supplied by
// the caller (never mutated), a guarded working copy that accumulates
// applied defaults, and exactly one owned outcome. A Run executes at most
// once; calling Run twice, or reading the outcome before completion, is a
// programming error and panics.
type Run struct {
	id     string
	cmd    Command
	runner *Runner

	raw    map[string]any
	inputs *guard.Map
	oc     *outcome.Outcome

	started   atomic.Bool
	completed atomic.Bool
}

func newRun(runner *Runner, cmd Command, inputs Inputs) *Run {
	return &Run{
		id:     uuid.NewString(),
		cmd:    cmd,
		runner: runner,
		raw:    guard.Copy(inputs).Raw(),
		inputs: guard.Copy(inputs),
		oc:     outcome.New(),
	}
}

// ID returns the unique identifier of this run, used in logs and audit
// records.
func (r *Run) ID() string { return r.id }

// Run executes the pipeline: schema check, the four structural validation
// passes, defaulting, the optional Validate hook, then Execute. Expected
// failures are recorded in the outcome and Run returns nil; unexpected
// failures are recorded as unknown runtime entries and also returned.
// The outcome is readable whenever Run has returned, by any path.
func (r *Run) Run(ctx context.Context) (err error) {
	if !r.started.CompareAndSwap(false, true) {
		panic("command: Run invoked twice on the same instance")
	}

	start := time.Now()
	defer func() {
		r.completed.Store(true)
		r.runner.observeCompleted(ctx, r, time.Since(start))
	}()
	r.runner.observeStarted(ctx, r)

	schema := r.cmd.Schema()
	if schema == nil {
		return ErrNilSchema
	}

	r.runValidation(schema)
	if !r.oc.Success() {
		r.logFailure("input validation failed")
		return nil
	}

	if v, ok := r.cmd.(Validator); ok {
		if err := v.Validate(ctx, r); err != nil {
			return r.settle(err)
		}
		if !r.oc.Success() {
			r.logFailure("custom validation failed")
			return nil
		}
	}

	result, err := r.execute(ctx)
	if err != nil {
		return r.settle(err)
	}

	r.oc.SetResult(result)
	return nil
}

func (r *Run) execute(ctx context.Context) (any, error) {
	if tc, ok := r.cmd.(Transactional); ok && tc.RunsInTransaction() {
		if r.runner.txn == nil {
			return nil, txn.ErrNoProvider
		}
		return r.runner.txn.InTransaction(ctx, func(ctx context.Context) (any, error) {
			return r.cmd.Execute(ctx, r)
		})
	}
	return r.cmd.Execute(ctx, r)
}

// settle absorbs the halt signal (the error was already recorded) and turns
// anything else into a recorded unknown runtime entry that is still returned
// to the caller, so an unexpected failure is never mistaken for a clean
// failed outcome.
func (r *Run) settle(err error) error {
	if errors.Is(err, errHalt) {
		r.logFailure("execution halted")
		return nil
	}
	if errors.Is(err, txn.ErrNoProvider) || errors.Is(err, ErrNilSchema) {
		return err
	}
	r.oc.AddRuntimeError(outcome.KeyUnknown, err.Error())
	r.runner.log.Error("unexpected execution error", map[string]interface{}{
		"command": r.cmd.Name(),
		"runId":   r.id,
		"error":   err.Error(),
	})
	return err
}

func (r *Run) logFailure(msg string) {
	r.runner.log.Debug(msg, map[string]interface{}{
		"command": r.cmd.Name(),
		"runId":   r.id,
		"errors":  r.oc.SymbolicErrors(),
	})
}

// Outcome returns the owned outcome. It panics if the run has not completed:
// reading results mid-flight is a usage error, not a validation error.
func (r *Run) Outcome() *outcome.Outcome {
	if !r.completed.Load() {
		panic("command: Outcome read before the run completed")
	}
	return r.oc
}

// Input returns the working value of a declared input. After validation every
// schema key is present (supplied or defaulted); reading an undeclared,
// unsupplied key panics.
func (r *Run) Input(name string) any {
	return r.inputs.Get(name)
}

// LookupInput returns the working value and whether it was set.
func (r *Run) LookupInput(name string) (any, bool) {
	return r.inputs.Lookup(name)
}

// InputValues returns a defensive copy of the current working inputs.
func (r *Run) InputValues() map[string]any {
	return r.inputs.Raw()
}

// AddInputError records an input error without halting. Intended for
// Validate hooks that accumulate several violations before returning.
func (r *Run) AddInputError(category string, key outcome.Key, message string) {
	r.oc.AddInputError(category, key, message)
}

// AddRuntimeError records a runtime error without halting.
func (r *Run) AddRuntimeError(key outcome.Key, message string) {
	r.oc.AddRuntimeError(key, message)
}

// Halt records an input error and returns the halt signal. Return the result
// from Execute or Validate to abort the run with a clean failed outcome:
//
//	return nil, run.Halt("user_id", outcome.KeyNotFound, "user does not exist")
func (r *Run) Halt(category string, key outcome.Key, message string) error {
	r.oc.AddInputError(category, key, message)
	return errHalt
}

// HaltRuntime records a runtime error and returns the halt signal.
func (r *Run) HaltRuntime(key outcome.Key, message string) error {
	r.oc.AddRuntimeError(key, message)
	return errHalt
}
