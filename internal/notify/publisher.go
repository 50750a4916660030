package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/revcart/storefront-gateway/internal/platform"
)

// Publisher wraps an SQS client and the order-events queue URL.
type Publisher struct {
	SQS      platform.SQSAPI
	QueueURL string
}

// NewPublisher returns a Publisher bound to a queue URL.
func NewPublisher(sqsClient platform.SQSAPI, queueURL string) *Publisher {
	return &Publisher{
		SQS:      sqsClient,
		QueueURL: queueURL,
	}
}

// PublishOrderEvent sends ev to the order-events queue. The event id and type
// ride along as message attributes so consumers can filter without decoding
// the body.
func (p *Publisher) PublishOrderEvent(ctx context.Context, ev OrderEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	payload := string(body)

	input := &sqs.SendMessageInput{
		QueueUrl:    &p.QueueURL,
		MessageBody: &payload,
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"event_id": {
				DataType:    awsString("String"),
				StringValue: &ev.EventID,
			},
			"event_type": {
				DataType:    awsString("String"),
				StringValue: &ev.EventType,
			},
		},
	}

	if _, err := p.SQS.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
