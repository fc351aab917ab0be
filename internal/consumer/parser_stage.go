package consumer

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/BarkinBalci/click-vote-service/internal/queue"
)

// ParserStage turns raw messages into envelopes. Messages that cannot be
// parsed are deleted so they do not block the queue.
type ParserStage struct {
	consumer queue.QueueConsumer
	parser   MessageParser
	log      *zap.Logger
}

// NewParserStage creates a new parser stage
func NewParserStage(consumer queue.QueueConsumer, parser MessageParser, log *zap.Logger) *ParserStage {
	return &ParserStage{
		consumer: consumer,
		parser:   parser,
		log:      log,
	}
}

// Start parses until in is closed or ctx is cancelled, then closes out
func (p *ParserStage) Start(ctx context.Context, in <-chan types.Message, out chan<- *Envelope) {
	defer close(out)

	for {
		select {
		case <-ctx.Done():
			p.log.Info("Parser stage shutting down")
			return
		case msg, ok := <-in:
			if !ok {
				p.log.Info("Parser stage input channel closed")
				return
			}

			envelope := p.parseMessage(ctx, msg)
			if envelope == nil {
				continue
			}

			select {
			case <-ctx.Done():
				return
			case out <- envelope:
			}
		}
	}
}

func (p *ParserStage) parseMessage(ctx context.Context, msg types.Message) *Envelope {
	messageID := aws.ToString(msg.MessageId)

	click, err := p.parser.Parse([]byte(aws.ToString(msg.Body)))
	if err != nil {
		p.log.Warn("Dropping malformed click message",
			zap.String("message_id", messageID),
			zap.Error(err))
		_ = p.deleteMessage(ctx, msg)
		return nil
	}

	ack := func(ctx context.Context) error {
		return p.deleteMessage(ctx, msg)
	}

	// The message becomes visible again once its visibility timeout lapses.
	nack := func(ctx context.Context) error {
		p.log.Debug("Leaving message for redelivery", zap.String("message_id", messageID))
		return nil
	}

	return NewEnvelope(click, ack, nack)
}

func (p *ParserStage) deleteMessage(ctx context.Context, msg types.Message) error {
	_, err := p.consumer.DeleteMessage(ctx, &awssqs.DeleteMessageInput{
		QueueUrl:      aws.String(p.consumer.QueueURL()),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		p.log.Error("Failed to delete message",
			zap.String("message_id", aws.ToString(msg.MessageId)),
			zap.Error(err))
		return err
	}
	return nil
}
