// Package registeruser creates a user row inside a transaction and issues a
// session for it through the session command.
package registeruser

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"cmdkit/command"
	"cmdkit/internal/commands/cachesession"
	"cmdkit/jsonhook"
	"cmdkit/outcome"
	"cmdkit/txn"
)

const Name = "RegisterUser"

var schema = command.Schema{
	"name":  {Type: command.KindString, Required: true},
	"email": {Type: command.KindString, Required: true},
	"tier": {
		Type:       command.KindEnum,
		OneOf:      []any{"free", "pro", "enterprise"},
		Default:    "free",
		HasDefault: true,
	},
	"referrer": {Type: command.KindString, AllowBlank: true},
}

// inputDocument adds shape checks the static schema cannot express.
const inputDocument = `{
	"type": "object",
	"properties": {
		"name":  {"type": "string", "maxLength": 120},
		"email": {"type": "string", "format": "email"}
	}
}`

type Command struct {
	sessions *cachesession.Command
}

func New(sessions *cachesession.Command) *Command {
	return &Command{sessions: sessions}
}

func (c *Command) Name() string           { return Name }
func (c *Command) Schema() command.Schema { return schema }

func (c *Command) RunsInTransaction() bool { return true }

func (c *Command) Validate(ctx context.Context, run *command.Run) error {
	return jsonhook.Check(run, inputDocument)
}

func (c *Command) Execute(ctx context.Context, run *command.Run) (any, error) {
	tx, ok := txn.TxFrom(ctx)
	if !ok {
		return nil, fmt.Errorf("register user: no transaction in context")
	}

	name := run.Input("name").(string)
	email := run.Input("email").(string)
	tier := run.Input("tier").(string)

	var exists bool
	err := tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", email,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check existing email: %w", err)
	}
	if exists {
		return nil, run.Halt("email", outcome.KeyInvalid, "email is already registered")
	}

	userID := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		"INSERT INTO users (id, name, email, tier) VALUES ($1, $2, $3, $4)",
		userID, name, email, tier,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	session, err := run.MustRunSubCommand(ctx, c.sessions, command.Inputs{
		"user_id": userID,
	})
	if err != nil {
		return nil, err
	}

	return &Output{
		UserID:  userID,
		Tier:    tier,
		Session: session.(*cachesession.Output),
	}, nil
}
