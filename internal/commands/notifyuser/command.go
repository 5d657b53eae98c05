// Package notifyuser delivers a message to a user over email or a broadcast
// topic. Delivery goes through a Notifier so the AWS clients stay out of
// the command's tests.
package notifyuser

import (
	"context"
	"fmt"

	"cmdkit/command"
	"cmdkit/outcome"
)

const Name = "NotifyUser"

const (
	ChannelEmail = "email"
	ChannelTopic = "topic"
)

var schema = command.Schema{
	"user_id": {Type: command.KindString, Required: true},
	"channel": {
		Type:       command.KindEnum,
		OneOf:      []any{ChannelEmail, ChannelTopic},
		Default:    ChannelEmail,
		HasDefault: true,
	},
	"subject": {Type: command.KindString, Required: true},
	"message": {Type: command.KindString, Required: true},
	"recipient": {
		Type:       command.KindString,
		AllowBlank: true,
		Default:    "",
		HasDefault: true,
	},
}

// Notifier sends one message over one channel and reports the provider's
// message ID.
type Notifier interface {
	SendEmail(ctx context.Context, to, subject, body string) (string, error)
	PublishTopic(ctx context.Context, subject, body string) (string, error)
}

type Command struct {
	notifier Notifier
}

func New(notifier Notifier) *Command {
	return &Command{notifier: notifier}
}

func (c *Command) Name() string           { return Name }
func (c *Command) Schema() command.Schema { return schema }

// Validate enforces the channel-dependent rule the static schema cannot:
// email delivery needs a recipient address.
func (c *Command) Validate(ctx context.Context, run *command.Run) error {
	if run.Input("channel") == ChannelEmail && run.Input("recipient") == "" {
		run.AddInputError("recipient", outcome.KeyMissing, "recipient is missing")
	}
	return nil
}

func (c *Command) Execute(ctx context.Context, run *command.Run) (any, error) {
	userID := run.Input("user_id").(string)
	channel := run.Input("channel").(string)
	subject := run.Input("subject").(string)
	message := run.Input("message").(string)

	var messageID string
	var err error
	switch channel {
	case ChannelEmail:
		messageID, err = c.notifier.SendEmail(ctx, run.Input("recipient").(string), subject, message)
	case ChannelTopic:
		messageID, err = c.notifier.PublishTopic(ctx, subject, message)
	}
	if err != nil {
		return nil, fmt.Errorf("deliver %s notification for %s: %w", channel, userID, err)
	}

	return &Output{
		UserID:    userID,
		Channel:   channel,
		MessageID: messageID,
	}, nil
}
