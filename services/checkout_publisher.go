package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
	awspkg "github.com/yashrajoria/E-Commerce-backend/storefront/pkg/aws"
)

// CheckoutPublisher hands a checkout event to the order pipeline.
type CheckoutPublisher interface {
	PublishCheckout(ctx context.Context, event models.CheckoutEvent) error
}

// SNSCheckoutPublisher publishes checkout events to an SNS topic.
type SNSCheckoutPublisher struct {
	client   awspkg.SNSPublisher
	topicArn string
}

func NewSNSCheckoutPublisher(client awspkg.SNSPublisher, topicArn string) *SNSCheckoutPublisher {
	return &SNSCheckoutPublisher{client: client, topicArn: topicArn}
}

func (p *SNSCheckoutPublisher) PublishCheckout(ctx context.Context, event models.CheckoutEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode checkout event: %w", err)
	}
	return p.client.Publish(ctx, p.topicArn, payload, event.Event)
}

// MessageSender is satisfied by awspkg.SQSSender.
type MessageSender interface {
	SendMessage(ctx context.Context, body, eventType, groupID, dedupID string) error
}

// SQSCheckoutPublisher sends checkout events straight to the order queue.
// On FIFO queues events are grouped by user and deduplicated by order id.
type SQSCheckoutPublisher struct {
	sender MessageSender
}

func NewSQSCheckoutPublisher(sender MessageSender) *SQSCheckoutPublisher {
	return &SQSCheckoutPublisher{sender: sender}
}

func (p *SQSCheckoutPublisher) PublishCheckout(ctx context.Context, event models.CheckoutEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode checkout event: %w", err)
	}
	return p.sender.SendMessage(ctx, string(payload), event.Event, event.UserID, event.OrderID)
}
