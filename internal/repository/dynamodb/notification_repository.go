package dynamodb

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const defaultRetention = 24 * time.Hour

// API is the subset of the DynamoDB client the repository needs.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

type notificationRecord struct {
	ID          string `dynamodbav:"id"`
	ProcessedAt string `dynamodbav:"processed_at"`
	ExpiresAt   int64  `dynamodbav:"expires_at"`
}

// NotificationRepository remembers which webhook notifications already went
// downstream. Items expire through the table TTL on expires_at.
type NotificationRepository struct {
	client    API
	tableName string
	retention time.Duration
	now       func() time.Time
}

func NewNotificationRepository(client API, tableName string) *NotificationRepository {
	return &NotificationRepository{
		client:    client,
		tableName: tableName,
		retention: defaultRetention,
		now:       time.Now,
	}
}

// MarkProcessed stores key with a conditional put. It returns false when the
// key was already there.
func (r *NotificationRepository) MarkProcessed(ctx context.Context, key string) (bool, error) {
	now := r.now().UTC()
	item, err := attributevalue.MarshalMap(notificationRecord{
		ID:          key,
		ProcessedAt: now.Format(time.RFC3339),
		ExpiresAt:   now.Add(r.retention).Unix(),
	})
	if err != nil {
		return false, err
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var conditionErr *types.ConditionalCheckFailedException
		if errors.As(err, &conditionErr) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Forget deletes key so the next notification for it is processed again.
func (r *NotificationRepository) Forget(ctx context.Context, key string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: key},
		},
	})
	return err
}
