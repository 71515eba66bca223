package sns

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/dzn7/apihook/internal/domain"
)

const eventTypePaymentStatusChanged = "payment_status_changed"

// Publisher is the subset of the SNS API we use.
type Publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Client struct {
	snsClient Publisher
	topicARN  string
}

func NewClient(cfg aws.Config, topicARN string) *Client {
	return NewClientWithAPI(sns.NewFromConfig(cfg), topicARN)
}

func NewClientWithAPI(api Publisher, topicARN string) *Client {
	return &Client{
		snsClient: api,
		topicARN:  topicARN,
	}
}

// PublishOutcome fans a classified payment status out to the order and
// kitchen consumers subscribed to the topic.
func (c *Client) PublishOutcome(ctx context.Context, event domain.OutcomeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = c.snsClient.Publish(ctx, &sns.PublishInput{
		Message:  aws.String(string(payload)),
		TopicArn: aws.String(c.topicARN),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(eventTypePaymentStatusChanged),
			},
			"outcome": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(event.Status)),
			},
		},
	})

	return err
}
