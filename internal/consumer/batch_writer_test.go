package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/BarkinBalci/click-vote-service/internal/domain"
)

func clickCount(n int) interface{} {
	return mock.MatchedBy(func(clicks []*domain.ClickEvent) bool {
		return len(clicks) == n
	})
}

func TestBatchWriter_Start_BatchSizeThreshold(t *testing.T) {
	mockRepo := new(MockClickRepository)
	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 3, FlushTimeout: time.Hour}, zap.NewNop())
	counter := &settleCounter{}

	mockRepo.On("InsertBatch", mock.Anything, clickCount(3)).Return(3, nil).Once()

	in := make(chan *Envelope, 3)
	for _, id := range []string{"e1", "e2", "e3"} {
		in <- counter.envelope(id)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		writer.Start(ctx, in)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		acks, _ := counter.counts()
		return acks == 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	mockRepo.AssertExpectations(t)
}

func TestBatchWriter_Start_TimeoutFlush(t *testing.T) {
	mockRepo := new(MockClickRepository)
	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 100, FlushTimeout: 20 * time.Millisecond}, zap.NewNop())
	counter := &settleCounter{}

	mockRepo.On("InsertBatch", mock.Anything, clickCount(2)).Return(2, nil).Once()

	in := make(chan *Envelope, 2)
	in <- counter.envelope("e1")
	in <- counter.envelope("e2")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go writer.Start(ctx, in)

	assert.Eventually(t, func() bool {
		acks, _ := counter.counts()
		return acks == 2
	}, time.Second, 5*time.Millisecond)
}

func TestBatchWriter_Start_InsertFailureNacks(t *testing.T) {
	mockRepo := new(MockClickRepository)
	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 2, FlushTimeout: time.Hour}, zap.NewNop())
	counter := &settleCounter{}

	mockRepo.On("InsertBatch", mock.Anything, mock.Anything).Return(0, errors.New("clickhouse down"))

	in := make(chan *Envelope, 2)
	in <- counter.envelope("e1")
	in <- counter.envelope("e2")
	close(in)

	writer.Start(context.Background(), in)

	acks, nacks := counter.counts()
	assert.Equal(t, 0, acks)
	assert.Equal(t, 2, nacks)
}

func TestBatchWriter_Start_PartialInsertNacks(t *testing.T) {
	mockRepo := new(MockClickRepository)
	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 10, FlushTimeout: time.Hour}, zap.NewNop())
	counter := &settleCounter{}

	mockRepo.On("InsertBatch", mock.Anything, clickCount(3)).Return(2, nil)

	in := make(chan *Envelope, 3)
	for _, id := range []string{"e1", "e2", "e3"} {
		in <- counter.envelope(id)
	}
	close(in)

	writer.Start(context.Background(), in)

	acks, nacks := counter.counts()
	assert.Equal(t, 0, acks)
	assert.Equal(t, 3, nacks)
}

func TestBatchWriter_Start_RedeliveredCopiesCollapsed(t *testing.T) {
	mockRepo := new(MockClickRepository)
	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 10, FlushTimeout: time.Hour}, zap.NewNop())
	counter := &settleCounter{}

	mockRepo.On("InsertBatch", mock.Anything, clickCount(2)).Return(2, nil).Once()

	in := make(chan *Envelope, 3)
	in <- counter.envelope("e1")
	in <- counter.envelope("e1")
	in <- counter.envelope("e2")
	close(in)

	writer.Start(context.Background(), in)

	acks, nacks := counter.counts()
	assert.Equal(t, 3, acks)
	assert.Equal(t, 0, nacks)
	mockRepo.AssertExpectations(t)
}

func TestBatchWriter_Start_EmptyBatchNotFlushed(t *testing.T) {
	mockRepo := new(MockClickRepository)
	writer := NewBatchWriter(mockRepo, BatchWriterConfig{MaxBatchSize: 10, FlushTimeout: 5 * time.Millisecond}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	writer.Start(ctx, make(chan *Envelope))

	mockRepo.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
}
