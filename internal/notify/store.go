// Package notify carries order events from checkout to the customer-facing
// notification feed: an SQS publisher on the producing side and a DynamoDB
// record store written by the worker.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/revcart/storefront-gateway/internal/platform"
)

// userIndex is the GSI projecting notifications by user.
const userIndex = "user_id-index"

// ErrAlreadyRecorded means a notification with the same id already exists;
// redelivered queue messages hit this and are safe to swallow.
var ErrAlreadyRecorded = errors.New("notification already recorded")

// Store persists notification records.
type Store struct {
	client    platform.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

func NewStore(client platform.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Record writes n if no notification with the same id exists yet. Returns
// ErrAlreadyRecorded on a duplicate, which makes worker redeliveries
// idempotent.
func (s *Store) Record(ctx context.Context, n Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.nowFunc().UTC()
	}
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(notification_id)"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException" {
			return ErrAlreadyRecorded
		}
		return fmt.Errorf("put notification: %w", err)
	}
	return nil
}

// ListForUser returns the user's notifications, newest first per the index
// sort order.
func (s *Store) ListForUser(ctx context.Context, userID string) ([]Notification, error) {
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.tableName,
		IndexName:              awsString(userIndex),
		KeyConditionExpression: awsString("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: awsBool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}

	notifications := make([]Notification, 0, len(out.Items))
	for _, item := range out.Items {
		var n Notification
		if err := attributevalue.UnmarshalMap(item, &n); err != nil {
			return nil, fmt.Errorf("unmarshal notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

// MarkRead flags one notification as read.
func (s *Store) MarkRead(ctx context.Context, notificationID string) error {
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"notification_id": &types.AttributeValueMemberS{Value: notificationID},
		},
		UpdateExpression: awsString("SET #r = :true"),
		ExpressionAttributeNames: map[string]string{
			"#r": "read",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":true": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		return fmt.Errorf("update notification: %w", err)
	}
	return nil
}


func awsBool(b bool) *bool         { return &b }
