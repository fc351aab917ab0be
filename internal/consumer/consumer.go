package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/BarkinBalci/click-vote-service/internal/config"
	"github.com/BarkinBalci/click-vote-service/internal/queue"
	"github.com/BarkinBalci/click-vote-service/internal/repository"
)

const stageBufferSize = 100

// Consumer runs the receive, parse and batch-write stages that copy published
// clicks into the analytics repository
type Consumer struct {
	receiver    *Receiver
	parser      *ParserStage
	batchWriter *BatchWriter
}

// NewConsumer creates a new consumer pipeline
func NewConsumer(cfg config.Consumer, queueConsumer queue.QueueConsumer, repo repository.ClickRepository, log *zap.Logger) *Consumer {
	receiver := NewReceiver(queueConsumer, ReceiverConfig{
		MaxMessages:     10,
		WaitTimeSeconds: 20,
	}, log.Named("receiver"))

	parser := NewParserStage(queueConsumer, NewJSONClickParser(), log.Named("parser"))

	batchWriter := NewBatchWriter(repo, BatchWriterConfig{
		MaxBatchSize: cfg.BatchSizeMax,
		FlushTimeout: time.Duration(cfg.BatchTimeoutSec) * time.Second,
	}, log.Named("writer"))

	return &Consumer{
		receiver:    receiver,
		parser:      parser,
		batchWriter: batchWriter,
	}
}

// Start runs the pipeline until ctx is cancelled and every stage has drained
func (c *Consumer) Start(ctx context.Context) {
	messages := make(chan types.Message, stageBufferSize)
	envelopes := make(chan *Envelope, stageBufferSize)

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		c.receiver.Start(ctx, messages)
	}()

	go func() {
		defer wg.Done()
		c.parser.Start(ctx, messages, envelopes)
	}()

	go func() {
		defer wg.Done()
		c.batchWriter.Start(ctx, envelopes)
	}()

	wg.Wait()
}
