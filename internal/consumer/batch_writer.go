package consumer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BarkinBalci/click-vote-service/internal/domain"
	"github.com/BarkinBalci/click-vote-service/internal/repository"
)

// BatchWriterConfig configures the batch writer
type BatchWriterConfig struct {
	MaxBatchSize int
	FlushTimeout time.Duration
}

// BatchWriter buffers envelopes and writes them to the repository in batches.
// A batch is acked only when every click in it was inserted.
type BatchWriter struct {
	repository repository.ClickRepository
	config     BatchWriterConfig
	log        *zap.Logger
}

// NewBatchWriter creates a new batch writer
func NewBatchWriter(repo repository.ClickRepository, config BatchWriterConfig, log *zap.Logger) *BatchWriter {
	return &BatchWriter{
		repository: repo,
		config:     config,
		log:        log,
	}
}

// Start batches until in is closed or ctx is cancelled, flushing what is buffered
func (w *BatchWriter) Start(ctx context.Context, in <-chan *Envelope) {
	ticker := time.NewTicker(w.config.FlushTimeout)
	defer ticker.Stop()

	batch := make([]*Envelope, 0, w.config.MaxBatchSize)
	flush := func(reason string) {
		if len(batch) == 0 {
			return
		}
		w.log.Debug("Flushing batch",
			zap.String("reason", reason),
			zap.Int("envelope_count", len(batch)))
		w.processBatch(ctx, batch)
		batch = make([]*Envelope, 0, w.config.MaxBatchSize)
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Batch writer shutting down")
			flush("shutdown")
			return

		case envelope, ok := <-in:
			if !ok {
				w.log.Info("Batch writer input channel closed")
				flush("input closed")
				return
			}

			batch = append(batch, envelope)
			if len(batch) >= w.config.MaxBatchSize {
				flush("size")
				ticker.Reset(w.config.FlushTimeout)
			}

		case <-ticker.C:
			flush("timeout")
		}
	}
}

// processBatch inserts the batch and acks it, or nacks it for redelivery
func (w *BatchWriter) processBatch(ctx context.Context, envelopes []*Envelope) {
	clicks := uniqueClicks(envelopes)

	insertedCount, err := w.repository.InsertBatch(ctx, clicks)
	if err != nil {
		w.log.Error("Failed to insert batch",
			zap.Error(err),
			zap.Int("click_count", len(clicks)))
		w.settle(ctx, envelopes, (*Envelope).Nack, "nack")
		return
	}

	if insertedCount != len(clicks) {
		w.log.Warn("Partial insert success",
			zap.Int("inserted", insertedCount),
			zap.Int("expected", len(clicks)))
		w.settle(ctx, envelopes, (*Envelope).Nack, "nack")
		return
	}

	w.log.Info("Inserted clicks", zap.Int("count", insertedCount))
	w.settle(ctx, envelopes, (*Envelope).Ack, "ack")
}

func (w *BatchWriter) settle(ctx context.Context, envelopes []*Envelope, fn func(*Envelope, context.Context) error, action string) {
	for _, env := range envelopes {
		if err := fn(env, ctx); err != nil {
			w.log.Error("Failed to settle envelope",
				zap.String("action", action),
				zap.String("event_id", env.Click.EventID),
				zap.Error(err))
		}
	}
}

// uniqueClicks drops redelivered copies of the same event within one batch
func uniqueClicks(envelopes []*Envelope) []*domain.ClickEvent {
	seen := make(map[string]bool, len(envelopes))
	clicks := make([]*domain.ClickEvent, 0, len(envelopes))
	for _, env := range envelopes {
		if seen[env.Click.EventID] {
			continue
		}
		seen[env.Click.EventID] = true
		clicks = append(clicks, env.Click)
	}
	return clicks
}
