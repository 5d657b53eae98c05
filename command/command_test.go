package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmdkit/outcome"
	"cmdkit/txn"
)

// ==========================
// Test Helper Commands
// ==========================

// stubCommand is a configurable command for pipeline tests. The validate
// hook is only wired when set, and the transactional flag defaults to off.
type stubCommand struct {
	name          string
	schema        Schema
	execute       func(ctx context.Context, run *Run) (any, error)
	validate      func(ctx context.Context, run *Run) error
	transactional bool
}

func (c *stubCommand) Name() string   { return c.name }
func (c *stubCommand) Schema() Schema { return c.schema }

func (c *stubCommand) Execute(ctx context.Context, run *Run) (any, error) {
	if c.execute == nil {
		return nil, nil
	}
	return c.execute(ctx, run)
}

func (c *stubCommand) Validate(ctx context.Context, run *Run) error {
	if c.validate == nil {
		return nil
	}
	return c.validate(ctx, run)
}

func (c *stubCommand) RunsInTransaction() bool { return c.transactional }

func greetCommand() *stubCommand {
	return &stubCommand{
		name: "Greet",
		schema: Schema{
			"name": {Type: KindString, Required: true},
		},
		execute: func(ctx context.Context, run *Run) (any, error) {
			return run.Input("name"), nil
		},
	}
}

// ==========================
// End-to-End Pipeline Tests
// ==========================

func TestRun_Success(t *testing.T) {
	oc, err := Execute(context.Background(), greetCommand(), Inputs{"name": "Ada"})

	require.NoError(t, err)
	assert.True(t, oc.Success())

	result, ok := oc.Result()
	require.True(t, ok)
	assert.Equal(t, "Ada", result)
}

func TestRun_MissingRequiredInput(t *testing.T) {
	oc, err := Execute(context.Background(), greetCommand(), Inputs{})

	require.NoError(t, err)
	assert.False(t, oc.Success())

	errs := oc.Errors()
	require.Len(t, errs["name"], 1)
	assert.Equal(t, outcome.KeyMissing, errs["name"][0].Key)
	assert.Equal(t, "name is missing", errs["name"][0].Message)

	_, ok := oc.Result()
	assert.False(t, ok)
}

func TestRun_BlankRequiredInput(t *testing.T) {
	oc, err := Execute(context.Background(), greetCommand(), Inputs{"name": ""})

	require.NoError(t, err)
	require.Len(t, oc.Errors()["name"], 1)
	assert.Equal(t, outcome.KeyBlank, oc.Errors()["name"][0].Key)
}

func TestRun_MissingRegardlessOfDefault(t *testing.T) {
	cmd := &stubCommand{
		name: "WithDefault",
		schema: Schema{
			"tier": {Type: KindString, Required: true, Default: "free", HasDefault: true},
		},
	}

	oc, err := Execute(context.Background(), cmd, Inputs{})

	require.NoError(t, err)
	require.Len(t, oc.Errors()["tier"], 1)
	assert.Equal(t, outcome.KeyMissing, oc.Errors()["tier"][0].Key)
}

func TestRun_UnsupportedInputs_Exhaustive(t *testing.T) {
	oc, err := Execute(context.Background(), greetCommand(), Inputs{
		"name":  "Ada",
		"first": 1,
		"other": 2,
	})

	require.NoError(t, err)
	assert.False(t, oc.Success())

	errs := oc.Errors()
	require.Len(t, errs["first"], 1)
	require.Len(t, errs["other"], 1)
	assert.Equal(t, outcome.KeyUnsupported, errs["first"][0].Key)
	assert.Equal(t, outcome.KeyUnsupported, errs["other"][0].Key)
	assert.NotContains(t, errs, "name")
}

func TestRun_EnumValidation(t *testing.T) {
	cmd := &stubCommand{
		name: "Ticket",
		schema: Schema{
			"status": {Type: KindEnum, OneOf: []any{"open", "closed"}},
		},
	}

	tests := []struct {
		name     string
		inputs   Inputs
		success  bool
		contains string
	}{
		{
			name:    "member value accepted",
			inputs:  Inputs{"status": "open"},
			success: true,
		},
		{
			name:    "absent enum not checked",
			inputs:  Inputs{},
			success: true,
		},
		{
			name:     "non-member rejected with ordered values",
			inputs:   Inputs{"status": "archived"},
			success:  false,
			contains: "open, closed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oc, err := Execute(context.Background(), cmd, tt.inputs)
			require.NoError(t, err)
			assert.Equal(t, tt.success, oc.Success())
			if !tt.success {
				entries := oc.Errors()["status"]
				require.Len(t, entries, 1)
				assert.Equal(t, outcome.KeyInvalid, entries[0].Key)
				assert.Contains(t, entries[0].Message, tt.contains)
				assert.Contains(t, entries[0].Message, "archived")
			}
		})
	}
}

func TestRun_ShortCircuitsBetweenPasses(t *testing.T) {
	// A blank required input is a blank error, never a missing one, and an
	// unsupported key stops the later passes entirely.
	cmd := &stubCommand{
		name: "Strict",
		schema: Schema{
			"name": {Type: KindString, Required: true},
		},
	}

	oc, err := Execute(context.Background(), cmd, Inputs{"bogus": 1})
	require.NoError(t, err)
	assert.Contains(t, oc.Errors(), "bogus")
	assert.NotContains(t, oc.Errors(), "name")

	oc, err = Execute(context.Background(), cmd, Inputs{"name": "  "})
	require.NoError(t, err)
	entries := oc.Errors()["name"]
	require.Len(t, entries, 1)
	assert.Equal(t, outcome.KeyBlank, entries[0].Key)
}

// ==========================
// Defaulting Tests
// ==========================

func TestRun_DefaultsApplied(t *testing.T) {
	cmd := &stubCommand{
		name: "Defaulted",
		schema: Schema{
			"name": {Type: KindString, Required: true},
			"tier": {Type: KindString, Default: "free", HasDefault: true},
			"note": {Type: KindString, AllowBlank: true},
		},
		execute: func(ctx context.Context, run *Run) (any, error) {
			return run.InputValues(), nil
		},
	}

	oc, err := Execute(context.Background(), cmd, Inputs{"name": "Ada"})
	require.NoError(t, err)
	require.True(t, oc.Success())

	result, _ := oc.Result()
	values := result.(map[string]any)
	assert.Equal(t, "Ada", values["name"])
	assert.Equal(t, "free", values["tier"])
	assert.Nil(t, values["note"])
	assert.Contains(t, values, "note")
}

func TestRun_DefaultsNeverOverwriteSuppliedValues(t *testing.T) {
	cmd := &stubCommand{
		name: "Falsy",
		schema: Schema{
			"count":   {Type: KindNumber, Default: 10, HasDefault: true, AllowBlank: true},
			"enabled": {Type: KindBool, Default: true, HasDefault: true, AllowBlank: true},
		},
		execute: func(ctx context.Context, run *Run) (any, error) {
			return run.InputValues(), nil
		},
	}

	oc, err := Execute(context.Background(), cmd, Inputs{"count": 0, "enabled": false})
	require.NoError(t, err)

	result, _ := oc.Result()
	values := result.(map[string]any)
	assert.Equal(t, 0, values["count"])
	assert.Equal(t, false, values["enabled"])
}

func TestRun_DefaultsAppliedEvenOnValidationFailure(t *testing.T) {
	cmd := &stubCommand{
		name: "FailedDefaults",
		schema: Schema{
			"name": {Type: KindString, Required: true},
			"tier": {Type: KindString, Default: "free", HasDefault: true},
		},
	}

	runner := NewRunner()
	run := runner.NewRun(cmd, Inputs{})
	require.NoError(t, run.Run(context.Background()))

	assert.False(t, run.Outcome().Success())
	v, ok := run.LookupInput("tier")
	require.True(t, ok)
	assert.Equal(t, "free", v)
}

// ==========================
// Hook and Halting Tests
// ==========================

func TestRun_ValidateHook_RecordsErrorsWithoutHalt(t *testing.T) {
	executed := false
	cmd := &stubCommand{
		name:   "CrossField",
		schema: Schema{"from": {}, "to": {}},
		validate: func(ctx context.Context, run *Run) error {
			run.AddInputError("to", outcome.KeyInvalid, "to must be after from")
			run.AddInputError("from", outcome.KeyInvalid, "from is out of range")
			return nil
		},
		execute: func(ctx context.Context, run *Run) (any, error) {
			executed = true
			return nil, nil
		},
	}

	oc, err := Execute(context.Background(), cmd, Inputs{"from": "b", "to": "a"})

	require.NoError(t, err)
	assert.False(t, oc.Success())
	assert.False(t, executed, "execute must not run after validation errors")
	assert.Len(t, oc.InputErrors(), 2)
}

func TestRun_HaltStopsExecution(t *testing.T) {
	reached := false
	cmd := &stubCommand{
		name:   "Halting",
		schema: Schema{"user_id": {Type: KindString, Required: true}},
		execute: func(ctx context.Context, run *Run) (any, error) {
			if run.Input("user_id") == "ghost" {
				return nil, run.HaltRuntime(outcome.KeyNotFound, "user not found")
			}
			reached = true
			return "ok", nil
		},
	}

	oc, err := Execute(context.Background(), cmd, Inputs{"user_id": "ghost"})

	require.NoError(t, err, "a halt is an expected failure, not an error")
	assert.False(t, reached)
	assert.False(t, oc.Success())
	assert.True(t, oc.NotFound())

	_, ok := oc.Result()
	assert.False(t, ok, "result stays unset after a halt")
}

func TestRun_HaltWithInputCategory(t *testing.T) {
	cmd := &stubCommand{
		name:   "HaltInput",
		schema: Schema{"user_id": {Type: KindString, Required: true}},
		execute: func(ctx context.Context, run *Run) (any, error) {
			return nil, run.Halt("user_id", outcome.KeyNotFound, "user does not exist")
		},
	}

	oc, err := Execute(context.Background(), cmd, Inputs{"user_id": "u1"})

	require.NoError(t, err)
	entries := oc.Errors()["user_id"]
	require.Len(t, entries, 1)
	assert.Equal(t, outcome.KeyNotFound, entries[0].Key)
}

func TestRun_UnexpectedError_RecordedAndReturned(t *testing.T) {
	boom := errors.New("connection reset")
	cmd := &stubCommand{
		name:   "Exploding",
		schema: Schema{},
		execute: func(ctx context.Context, run *Run) (any, error) {
			return nil, boom
		},
	}

	runner := NewRunner()
	run := runner.NewRun(cmd, Inputs{})
	err := run.Run(context.Background())

	require.ErrorIs(t, err, boom, "unexpected errors must reach the caller")

	oc := run.Outcome()
	assert.False(t, oc.Success(), "outcome readable and failed after re-raise")
	rt := oc.RuntimeErrors()
	require.Len(t, rt, 1)
	assert.Equal(t, outcome.KeyUnknown, rt[0].Key)
	assert.Equal(t, "connection reset", rt[0].Message)
}

func TestRun_UnexpectedValidateError_RecordedAndReturned(t *testing.T) {
	boom := errors.New("lookup service down")
	cmd := &stubCommand{
		name:     "BadHook",
		schema:   Schema{},
		validate: func(ctx context.Context, run *Run) error { return boom },
	}

	oc, err := Execute(context.Background(), cmd, Inputs{})

	require.ErrorIs(t, err, boom)
	assert.False(t, oc.Success())
}

// ==========================
// Lifecycle Misuse Tests
// ==========================

func TestRun_SecondInvocationPanics(t *testing.T) {
	run := NewRunner().NewRun(greetCommand(), Inputs{"name": "Ada"})
	require.NoError(t, run.Run(context.Background()))

	require.Panics(t, func() { _ = run.Run(context.Background()) })
}

func TestRun_OutcomeBeforeCompletionPanics(t *testing.T) {
	run := NewRunner().NewRun(greetCommand(), Inputs{"name": "Ada"})

	require.Panics(t, func() { run.Outcome() })
}

func TestRun_NilSchemaRejected(t *testing.T) {
	cmd := &stubCommand{name: "Misconfigured", schema: nil}

	runner := NewRunner()
	run := runner.NewRun(cmd, Inputs{})
	err := run.Run(context.Background())

	require.ErrorIs(t, err, ErrNilSchema)
	assert.True(t, run.Outcome().Success(), "configuration defects are not outcome errors")
}

// ==========================
// Raw Input Isolation Tests
// ==========================

func TestRun_RawInputsNeverMutated(t *testing.T) {
	raw := Inputs{"name": "Ada"}
	cmd := &stubCommand{
		name: "Mutator",
		schema: Schema{
			"name": {Type: KindString, Required: true},
			"tier": {Type: KindString, Default: "free", HasDefault: true},
		},
		execute: func(ctx context.Context, run *Run) (any, error) {
			return nil, nil
		},
	}

	_, err := Execute(context.Background(), cmd, raw)
	require.NoError(t, err)

	assert.Equal(t, Inputs{"name": "Ada"}, raw, "defaults must not leak into caller inputs")
}

// ==========================
// Transactional Opt-In Tests
// ==========================

type recordingProvider struct {
	calls int
}

func (p *recordingProvider) InTransaction(ctx context.Context, work func(ctx context.Context) (any, error)) (any, error) {
	p.calls++
	return work(ctx)
}

func TestRun_TransactionalCommand_UsesProvider(t *testing.T) {
	provider := &recordingProvider{}
	cmd := &stubCommand{
		name:          "Transactional",
		schema:        Schema{},
		transactional: true,
		execute: func(ctx context.Context, run *Run) (any, error) {
			return "done", nil
		},
	}

	runner := NewRunner(WithTransactionProvider(provider))
	oc, err := runner.Run(context.Background(), cmd, Inputs{})

	require.NoError(t, err)
	assert.True(t, oc.Success())
	assert.Equal(t, 1, provider.calls)
}

func TestRun_TransactionalCommand_WithoutProvider(t *testing.T) {
	cmd := &stubCommand{name: "Orphan", schema: Schema{}, transactional: true}

	runner := NewRunner()
	oc, err := runner.Run(context.Background(), cmd, Inputs{})

	require.ErrorIs(t, err, txn.ErrNoProvider)
	assert.True(t, oc.Success(), "configuration defects are not outcome errors")
}

// ==========================
// RunAndAssertSuccess Tests
// ==========================

func TestRunAndAssertSuccess(t *testing.T) {
	result, err := RunAndAssertSuccess(context.Background(), greetCommand(), Inputs{"name": "Ada"})

	require.NoError(t, err)
	assert.Equal(t, "Ada", result)
}

func TestRunAndAssertSuccess_FailureSentence(t *testing.T) {
	_, err := RunAndAssertSuccess(context.Background(), greetCommand(), Inputs{})

	require.Error(t, err)
	assert.Equal(t, "name is missing.", err.Error())

	var failure *FailureError
	require.ErrorAs(t, err, &failure)
	assert.False(t, failure.Outcome.Success())
}

func TestRunAndAssertSuccess_MultipleMessages(t *testing.T) {
	cmd := &stubCommand{
		name: "Multi",
		schema: Schema{
			"name":  {Type: KindString, Required: true},
			"email": {Type: KindString, Required: true},
		},
	}

	_, err := RunAndAssertSuccess(context.Background(), cmd, Inputs{})

	require.Error(t, err)
	assert.Equal(t, "email is missing, and name is missing.", err.Error())
}
