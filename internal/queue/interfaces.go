package queue

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/BarkinBalci/click-vote-service/internal/domain"
)

// ClickPublisher defines the interface for publishing recorded clicks to a queue
type ClickPublisher interface {
	PublishClick(ctx context.Context, event *domain.ClickEvent) error
}

// QueueConsumer defines the interface for consuming messages from a queue
type QueueConsumer interface {
	ReceiveMessages(ctx context.Context, input *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, input *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error)
	QueueURL() string
}
