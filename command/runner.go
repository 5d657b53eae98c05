package command

import (
	"context"
	"time"

	"cmdkit/outcome"
	"cmdkit/txn"
)

// Observer is notified around each run. Implementations include the
// prometheus metrics observer, the otel meter observer, and the
// elasticsearch audit sink.
type Observer interface {
	RunStarted(ctx context.Context, name, runID string)
	RunCompleted(ctx context.Context, name, runID string, oc *outcome.Outcome, elapsed time.Duration)
}

// Runner executes commands with an injected logger, transaction provider,
// and observers. Dependencies are explicit at construction; there is no
// ambient global configuration.
type Runner struct {
	log       Logger
	txn       txn.Provider
	observers []Observer
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger installs the runner's logger.
func WithLogger(log Logger) Option {
	return func(r *Runner) { r.log = log }
}

// WithTransactionProvider installs the boundary used by commands that
// implement Transactional.
func WithTransactionProvider(p txn.Provider) Option {
	return func(r *Runner) { r.txn = p }
}

// WithObserver appends an observer. Observers fire in registration order.
func WithObserver(obs Observer) Option {
	return func(r *Runner) { r.observers = append(r.observers, obs) }
}

// NewRunner builds a Runner. Without options it logs nowhere, has no
// transaction provider, and no observers.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{log: nopLogger{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewRun constructs a run for cmd without starting it.
func (rn *Runner) NewRun(cmd Command, inputs Inputs) *Run {
	return newRun(rn, cmd, inputs)
}

// Run executes cmd with the given raw inputs and returns its outcome. The
// returned error is non-nil only for configuration defects and unexpected
// execution failures; expected failures yield a nil error and an
// unsuccessful outcome.
func (rn *Runner) Run(ctx context.Context, cmd Command, inputs Inputs) (*outcome.Outcome, error) {
	run := rn.NewRun(cmd, inputs)
	err := run.Run(ctx)
	return run.Outcome(), err
}

// RunAndAssertSuccess executes cmd and returns the bare result. Any failed
// outcome collapses into a single error whose message is exactly the
// outcome's error sentence.
func (rn *Runner) RunAndAssertSuccess(ctx context.Context, cmd Command, inputs Inputs) (any, error) {
	oc, err := rn.Run(ctx, cmd, inputs)
	if err != nil {
		return nil, err
	}
	if !oc.Success() {
		return nil, &FailureError{Outcome: oc}
	}
	result, _ := oc.Result()
	return result, nil
}

func (rn *Runner) observeStarted(ctx context.Context, r *Run) {
	for _, obs := range rn.observers {
		obs.RunStarted(ctx, r.cmd.Name(), r.id)
	}
}

func (rn *Runner) observeCompleted(ctx context.Context, r *Run, elapsed time.Duration) {
	for _, obs := range rn.observers {
		obs.RunCompleted(ctx, r.cmd.Name(), r.id, r.oc, elapsed)
	}
}

// FailureError carries a failed outcome through an error value. Its message
// is the outcome's aggregated error sentence.
type FailureError struct {
	Outcome *outcome.Outcome
}

func (e *FailureError) Error() string {
	return e.Outcome.ErrorSentence()
}

var defaultRunner = NewRunner()

// Execute runs cmd on a default runner with no logger, observers, or
// transaction provider, and returns its outcome.
func Execute(ctx context.Context, cmd Command, inputs Inputs) (*outcome.Outcome, error) {
	return defaultRunner.Run(ctx, cmd, inputs)
}

// RunAndAssertSuccess executes cmd on the default runner and returns the
// bare result or a FailureError.
func RunAndAssertSuccess(ctx context.Context, cmd Command, inputs Inputs) (any, error) {
	return defaultRunner.RunAndAssertSuccess(ctx, cmd, inputs)
}
