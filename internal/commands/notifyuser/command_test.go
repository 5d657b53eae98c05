package notifyuser

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmdkit/command"
	"cmdkit/outcome"
)

// ==========================
// Test Helpers
// ==========================

type fakeNotifier struct {
	emails []sentEmail
	topics []sentTopic
	err    error
}

type sentEmail struct {
	to, subject, body string
}

type sentTopic struct {
	subject, body string
}

func (f *fakeNotifier) SendEmail(ctx context.Context, to, subject, body string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.emails = append(f.emails, sentEmail{to: to, subject: subject, body: body})
	return "msg-ses-1", nil
}

func (f *fakeNotifier) PublishTopic(ctx context.Context, subject, body string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.topics = append(f.topics, sentTopic{subject: subject, body: body})
	return "msg-sns-1", nil
}

// ==========================
// Notification Tests
// ==========================

func TestNotifyUser_EmailIsTheDefaultChannel(t *testing.T) {
	notifier := &fakeNotifier{}
	oc, err := command.Execute(context.Background(), New(notifier), command.Inputs{
		"user_id":   "u-1",
		"subject":   "Welcome",
		"message":   "Your account is ready.",
		"recipient": "ada@example.com",
	})

	require.NoError(t, err)
	require.True(t, oc.Success())

	result, _ := oc.Result()
	out := result.(*Output)
	assert.Equal(t, ChannelEmail, out.Channel)
	assert.Equal(t, "msg-ses-1", out.MessageID)

	require.Len(t, notifier.emails, 1)
	assert.Equal(t, "ada@example.com", notifier.emails[0].to)
	assert.Empty(t, notifier.topics)
}

func TestNotifyUser_TopicBroadcastNeedsNoRecipient(t *testing.T) {
	notifier := &fakeNotifier{}
	oc, err := command.Execute(context.Background(), New(notifier), command.Inputs{
		"user_id": "u-1",
		"channel": ChannelTopic,
		"subject": "Maintenance",
		"message": "Scheduled downtime tonight.",
	})

	require.NoError(t, err)
	require.True(t, oc.Success())

	result, _ := oc.Result()
	assert.Equal(t, "msg-sns-1", result.(*Output).MessageID)
	require.Len(t, notifier.topics, 1)
	assert.Equal(t, "Maintenance", notifier.topics[0].subject)
}

func TestNotifyUser_EmailWithoutRecipientFailsValidation(t *testing.T) {
	notifier := &fakeNotifier{}
	oc, err := command.Execute(context.Background(), New(notifier), command.Inputs{
		"user_id": "u-1",
		"channel": ChannelEmail,
		"subject": "Welcome",
		"message": "Your account is ready.",
	})

	require.NoError(t, err)
	assert.False(t, oc.Success())
	assert.Equal(t, map[string][]outcome.Key{
		"recipient": {outcome.KeyMissing},
	}, oc.SymbolicErrors())
	assert.Empty(t, notifier.emails)
}

func TestNotifyUser_RejectsUnknownChannel(t *testing.T) {
	oc, err := command.Execute(context.Background(), New(&fakeNotifier{}), command.Inputs{
		"user_id": "u-1",
		"channel": "carrier-pigeon",
		"subject": "Welcome",
		"message": "Your account is ready.",
	})

	require.NoError(t, err)
	assert.Equal(t,
		"carrier-pigeon is not a valid channel, must be one of: email, topic.",
		oc.ErrorSentence())
}

func TestNotifyUser_DeliveryFailureIsUnexpected(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("throttled")}
	oc, err := command.Execute(context.Background(), New(notifier), command.Inputs{
		"user_id":   "u-1",
		"subject":   "Welcome",
		"message":   "Your account is ready.",
		"recipient": "ada@example.com",
	})

	require.Error(t, err)
	assert.False(t, oc.Success())

	runtime := oc.RuntimeErrors()
	require.Len(t, runtime, 1)
	assert.Equal(t, outcome.KeyUnknown, runtime[0].Key)
	assert.Contains(t, runtime[0].Message, "throttled")
}
