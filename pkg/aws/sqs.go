package aws

import (
	"context"
	"fmt"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SQSSender sends messages to a single queue. FIFO queues (URL ending in
// ".fifo") get a message group and deduplication id per message.
type SQSSender struct {
	client   *sqs.Client
	queueURL string
	fifo     bool
}

// NewSQSSender creates a new SQS sender for the given queue URL
func NewSQSSender(cfg sdkaws.Config, queueURL string) *SQSSender {
	return &SQSSender{
		client:   sqs.NewFromConfig(cfg),
		queueURL: queueURL,
		fifo:     strings.HasSuffix(queueURL, ".fifo"),
	}
}

// SendMessage sends a single message to the queue. groupID orders messages
// of one user on FIFO queues; dedupID suppresses duplicates there.
func (c *SQSSender) SendMessage(ctx context.Context, body, eventType, groupID, dedupID string) error {
	input := &sqs.SendMessageInput{
		QueueUrl:    sdkaws.String(c.queueURL),
		MessageBody: sdkaws.String(body),
	}
	if eventType != "" {
		input.MessageAttributes = map[string]types.MessageAttributeValue{
			"event_type": {DataType: sdkaws.String("String"), StringValue: sdkaws.String(eventType)},
		}
	}
	if c.fifo {
		input.MessageGroupId = sdkaws.String(groupID)
		input.MessageDeduplicationId = sdkaws.String(dedupID)
	}

	if _, err := c.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// GetQueueURL retrieves the URL for a queue name
func GetQueueURL(ctx context.Context, cfg sdkaws.Config, queueName string) (string, error) {
	client := sqs.NewFromConfig(cfg)
	result, err := client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{
		QueueName: &queueName,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get queue URL: %w", err)
	}
	return *result.QueueUrl, nil
}
