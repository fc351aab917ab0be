package consumer

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/BarkinBalci/click-vote-service/internal/queue"
)

// ReceiverConfig configures the SQS receiver
type ReceiverConfig struct {
	MaxMessages     int32
	WaitTimeSeconds int32
	// ErrorBackoff is the pause after a failed receive
	ErrorBackoff time.Duration
}

// Receiver long-polls the queue and forwards raw messages
type Receiver struct {
	consumer queue.QueueConsumer
	config   ReceiverConfig
	log      *zap.Logger
}

// NewReceiver creates a new SQS receiver
func NewReceiver(consumer queue.QueueConsumer, config ReceiverConfig, log *zap.Logger) *Receiver {
	if config.ErrorBackoff <= 0 {
		config.ErrorBackoff = time.Second
	}
	return &Receiver{
		consumer: consumer,
		config:   config,
		log:      log,
	}
}

// Start receives until ctx is cancelled, then closes out
func (r *Receiver) Start(ctx context.Context, out chan<- types.Message) {
	defer close(out)

	for ctx.Err() == nil {
		result, err := r.consumer.ReceiveMessages(ctx, &awssqs.ReceiveMessageInput{
			QueueUrl:              aws.String(r.consumer.QueueURL()),
			MaxNumberOfMessages:   r.config.MaxMessages,
			WaitTimeSeconds:       r.config.WaitTimeSeconds,
			MessageAttributeNames: []string{"All"},
		})
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			r.log.Error("Error receiving messages from SQS", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(r.config.ErrorBackoff):
			}
			continue
		}

		if len(result.Messages) == 0 {
			continue
		}

		r.log.Debug("Received messages from SQS", zap.Int("message_count", len(result.Messages)))

		for _, msg := range result.Messages {
			select {
			case <-ctx.Done():
				r.log.Info("Receiver shutting down while forwarding messages")
				return
			case out <- msg:
			}
		}
	}

	r.log.Info("Receiver shutting down")
}
