package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/revcart/storefront-gateway/internal/notify"
	"github.com/revcart/storefront-gateway/internal/platform"
)

func main() {
	log := platform.NewLogger()

	clients, err := platform.NewAWSClients(context.Background())
	if err != nil {
		log.WithError(err).Fatal("failed to init aws clients")
	}

	p := NewProcessor(clients, os.Getenv("NOTIFICATIONS_TABLE"), log)

	// If RUN_LOCAL=true, simulate a single SQS event for local testing.
	if os.Getenv("RUN_LOCAL") == "true" {
		testBody := os.Getenv("LOCAL_SQS_BODY")
		if testBody == "" {
			body, _ := json.Marshal(notify.OrderEvent{
				EventID:    "local-event-1",
				EventType:  notify.EventOrderPlaced,
				OrderID:    1,
				UserID:     "local-user",
				Amount:     "9.99",
				OccurredAt: time.Now().UTC(),
			})
			testBody = string(body)
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{
				{Body: testBody},
			},
		}
		if err := p.Handle(context.Background(), event); err != nil {
			log.WithError(err).Fatal("local handler error")
		}
		return
	}

	lambda.Start(p.Handle)
}
