package command

import (
	"context"

	"cmdkit/outcome"
)

// RunSubCommand constructs and runs a child command on the parent's runner.
// If the child fails, every entry in its ledger is copied into the parent's
// ledger with the symbolic key re-namespaced as "<ChildName>:<key>" and the
// category preserved, so a child's runtime failures are runtime failures for
// the parent. The parent decides whether to continue; the child's outcome is
// returned for inspection. The error is non-nil only when the child failed
// unexpectedly.
func (r *Run) RunSubCommand(ctx context.Context, child Command, inputs Inputs) (*outcome.Outcome, error) {
	sub := r.runner.NewRun(child, inputs)
	err := sub.Run(ctx)
	oc := sub.Outcome()
	if !oc.Success() {
		r.adoptChildErrors(child.Name(), oc)
	}
	return oc, err
}

// MustRunSubCommand runs a child command and halts the parent when the child
// fails. On success it returns the child's result; on expected child failure
// it returns the halt signal (child errors already copied); an unexpected
// child error is returned unchanged so the parent's pipeline records and
// re-raises it.
func (r *Run) MustRunSubCommand(ctx context.Context, child Command, inputs Inputs) (any, error) {
	oc, err := r.RunSubCommand(ctx, child, inputs)
	if err != nil {
		return nil, err
	}
	if !oc.Success() {
		return nil, errHalt
	}
	result, _ := oc.Result()
	return result, nil
}

func (r *Run) adoptChildErrors(childName string, oc *outcome.Outcome) {
	for category, entries := range oc.Errors() {
		for _, entry := range entries {
			r.oc.AddInputError(category,
				outcome.Key(childName+":"+string(entry.Key)), entry.Message)
		}
	}
}
