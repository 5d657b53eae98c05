// Package txn defines the transactional boundary a command may opt into.
// The command pipeline only invokes a provider; it never implements
// rollback semantics itself.
package txn

import (
	"context"
	"errors"
)

// ErrNoProvider is returned when a command opts into a transactional run but
// no provider is installed on the runner.
var ErrNoProvider = errors.New("txn: no transaction provider installed")

// Provider runs a unit of work under a rollback-capable boundary. The work's
// error causes a rollback and is returned unchanged; otherwise the boundary
// commits and the work's result is returned.
type Provider interface {
	InTransaction(ctx context.Context, work func(ctx context.Context) (any, error)) (any, error)
}
