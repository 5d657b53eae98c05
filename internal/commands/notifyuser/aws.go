package notifyuser

import (
	"context"

	"cmdkit/internal/common/aws"
)

// AWSNotifier delivers email through SES and topic broadcasts through SNS.
type AWSNotifier struct {
	ses       *aws.SESClient
	sns       *aws.SNSClient
	fromEmail string
	topicARN  string
}

func NewAWSNotifier(ses *aws.SESClient, sns *aws.SNSClient, fromEmail, topicARN string) *AWSNotifier {
	return &AWSNotifier{ses: ses, sns: sns, fromEmail: fromEmail, topicARN: topicARN}
}

func (n *AWSNotifier) SendEmail(ctx context.Context, to, subject, body string) (string, error) {
	return n.ses.SendPlainEmail(ctx, n.fromEmail, to, subject, body)
}

func (n *AWSNotifier) PublishTopic(ctx context.Context, subject, body string) (string, error) {
	return n.sns.PublishMessage(ctx, n.topicARN, subject, body)
}
