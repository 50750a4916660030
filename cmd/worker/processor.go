package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"

	"github.com/revcart/storefront-gateway/internal/notify"
	"github.com/revcart/storefront-gateway/internal/platform"
)

// Processor turns order events from the queue into notification records.
type Processor struct {
	store *notify.Store
	log   *logrus.Logger
}

// NewProcessor creates a worker processor with AWS clients injected.
func NewProcessor(clients *platform.AWSClients, notificationsTable string, log *logrus.Logger) *Processor {
	return &Processor{
		store: notify.NewStore(clients.DynamoDB, notificationsTable),
		log:   log,
	}
}

// Handle receives an SQS batch event and processes each message.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			// Return error: Lambda will retry. If failed too many times, the
			// message goes to the DLQ.
			p.log.WithError(err).Error("worker error")
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var ev notify.OrderEvent
	if err := json.Unmarshal([]byte(rec.Body), &ev); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}
	if ev.EventID == "" {
		return fmt.Errorf("event without event_id: %s", rec.Body)
	}

	p.log.WithFields(logrus.Fields{
		"event_id":   ev.EventID,
		"event_type": ev.EventType,
		"order_id":   ev.OrderID,
	}).Info("processing order event")

	n := notify.Notification{
		NotificationID: ev.EventID,
		UserID:         ev.UserID,
		Type:           ev.EventType,
		Message:        buildMessage(ev),
		Read:           false,
		CreatedAt:      ev.OccurredAt,
	}

	err := p.store.Record(ctx, n)
	if errors.Is(err, notify.ErrAlreadyRecorded) {
		// SQS is at-least-once; a redelivered event is already in the table.
		p.log.WithField("event_id", ev.EventID).Info("duplicate event, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	return nil
}

// buildMessage renders the feed wording for an event.
func buildMessage(ev notify.OrderEvent) string {
	switch ev.EventType {
	case notify.EventOrderPlaced:
		return fmt.Sprintf("Your order #%d has been placed. Total: %s.", ev.OrderID, ev.Amount)
	case notify.EventPaymentDone:
		return fmt.Sprintf("Payment of %s for order #%d was confirmed.", ev.Amount, ev.OrderID)
	case notify.EventOrderCanceled:
		return fmt.Sprintf("Your order #%d has been cancelled.", ev.OrderID)
	default:
		return fmt.Sprintf("Update on your order #%d.", ev.OrderID)
	}
}
