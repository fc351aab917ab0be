package sqs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/BarkinBalci/click-vote-service/internal/awsclient"
	envConfig "github.com/BarkinBalci/click-vote-service/internal/config"
	"github.com/BarkinBalci/click-vote-service/internal/domain"
)

// API is the subset of the SQS client used by Client
type API interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Client represents an SQS client
type Client struct {
	api      API
	queueURL string
	log      *zap.Logger
}

// New wraps an existing SQS API for queueURL
func New(api API, queueURL string, log *zap.Logger) *Client {
	return &Client{
		api:      api,
		queueURL: queueURL,
		log:      log,
	}
}

// NewClient creates a new SQS client
func NewClient(ctx context.Context, sqsConfig envConfig.SQS, log *zap.Logger) (*Client, error) {
	cfg, err := awsclient.LoadConfig(ctx, sqsConfig.Region, sqsConfig.Endpoint, log)
	if err != nil {
		return nil, err
	}

	var clientOpts []func(*sqs.Options)
	if sqsConfig.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *sqs.Options) {
			o.BaseEndpoint = aws.String(sqsConfig.Endpoint)
		})
	}

	log.Info("SQS client created",
		zap.String("region", sqsConfig.Region),
		zap.String("queue_url", sqsConfig.QueueURL))

	return New(sqs.NewFromConfig(cfg, clientOpts...), sqsConfig.QueueURL, log), nil
}

// ReceiveMessages receives messages from SQS
func (c *Client) ReceiveMessages(ctx context.Context, input *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error) {
	return c.api.ReceiveMessage(ctx, input)
}

// DeleteMessage deletes a message from SQS
func (c *Client) DeleteMessage(ctx context.Context, input *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error) {
	return c.api.DeleteMessage(ctx, input)
}

// QueueURL returns the configured queue URL
func (c *Client) QueueURL() string {
	return c.queueURL
}

// PublishClick publishes a recorded click to SQS
func (c *Client) PublishClick(ctx context.Context, event *domain.ClickEvent) error {
	bodyJSON, err := json.Marshal(event)
	if err != nil {
		c.log.Error("Failed to marshal click",
			zap.String("event_id", event.EventID),
			zap.Error(err))
		return fmt.Errorf("failed to marshal click: %w", err)
	}

	_, err = c.api.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(c.queueURL),
		MessageBody: aws.String(string(bodyJSON)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"ButtonID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.ButtonID),
			},
			"CampaignID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.CampaignID),
			},
		},
	})
	if err != nil {
		c.log.Error("Failed to send message to SQS",
			zap.String("event_id", event.EventID),
			zap.String("button_id", event.ButtonID),
			zap.Error(err))
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	c.log.Debug("Click published to SQS",
		zap.String("event_id", event.EventID),
		zap.String("button_id", event.ButtonID))

	return nil
}
