package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/mock"

	"github.com/BarkinBalci/click-vote-service/internal/domain"
	"github.com/BarkinBalci/click-vote-service/internal/repository"
)

const testQueueURL = "https://sqs.eu-central-1.amazonaws.com/123/clicks"

var testClickTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// MockQueueConsumer is a mock implementation of queue.QueueConsumer
type MockQueueConsumer struct {
	mock.Mock
}

func (m *MockQueueConsumer) ReceiveMessages(ctx context.Context, input *sqs.ReceiveMessageInput) (*sqs.ReceiveMessageOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.ReceiveMessageOutput), args.Error(1)
}

func (m *MockQueueConsumer) DeleteMessage(ctx context.Context, input *sqs.DeleteMessageInput) (*sqs.DeleteMessageOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.DeleteMessageOutput), args.Error(1)
}

func (m *MockQueueConsumer) QueueURL() string {
	args := m.Called()
	return args.String(0)
}

// MockClickRepository is a mock implementation of repository.ClickRepository
type MockClickRepository struct {
	mock.Mock
}

func (m *MockClickRepository) InsertBatch(ctx context.Context, events []*domain.ClickEvent) (int, error) {
	args := m.Called(ctx, events)
	return args.Int(0), args.Error(1)
}

func (m *MockClickRepository) InitSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockClickRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockClickRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockClickRepository) GetMetrics(ctx context.Context, query repository.MetricsQuery) (*repository.MetricsResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.MetricsResult), args.Error(1)
}

// MockMessageParser is a mock implementation of MessageParser
type MockMessageParser struct {
	mock.Mock
}

func (m *MockMessageParser) Parse(body []byte) (*domain.ClickEvent, error) {
	args := m.Called(body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClickEvent), args.Error(1)
}

func testClick(eventID string) *domain.ClickEvent {
	return &domain.ClickEvent{
		EventID:    eventID,
		ActorID:    "user-1",
		ButtonID:   "unsubscribe",
		CampaignID: domain.NoCampaign,
		Timestamp:  testClickTime,
	}
}

// settleCounter records acks and nacks of test envelopes
type settleCounter struct {
	mu    sync.Mutex
	acks  int
	nacks int
}

func (c *settleCounter) envelope(eventID string) *Envelope {
	return NewEnvelope(testClick(eventID),
		func(context.Context) error {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.acks++
			return nil
		},
		func(context.Context) error {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.nacks++
			return nil
		})
}

func (c *settleCounter) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.acks, c.nacks
}
