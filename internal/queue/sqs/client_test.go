package sqs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BarkinBalci/click-vote-service/internal/domain"
)

// MockAPI is a mock implementation of the SQS API
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.SendMessageOutput), args.Error(1)
}

func (m *MockAPI) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.ReceiveMessageOutput), args.Error(1)
}

func (m *MockAPI) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.DeleteMessageOutput), args.Error(1)
}

func testClick() *domain.ClickEvent {
	return &domain.ClickEvent{
		EventID:    "evt-1",
		ActorID:    "user-1",
		ButtonID:   "unsubscribe",
		TargetURL:  "https://example.com",
		CampaignID: "abc12345",
		Timestamp:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestClient_PublishClick_Success(t *testing.T) {
	mockAPI := new(MockAPI)
	client := New(mockAPI, "http://localhost:9324/queue/clicks", zap.NewNop())

	mockAPI.On("SendMessage", mock.Anything, mock.MatchedBy(func(in *sqs.SendMessageInput) bool {
		var body domain.ClickEvent
		if err := json.Unmarshal([]byte(aws.ToString(in.MessageBody)), &body); err != nil {
			return false
		}
		return aws.ToString(in.QueueUrl) == "http://localhost:9324/queue/clicks" &&
			body.EventID == "evt-1" &&
			body.ActorID == "user-1" &&
			aws.ToString(in.MessageAttributes["ButtonID"].StringValue) == "unsubscribe"
	})).Return(&sqs.SendMessageOutput{}, nil)

	err := client.PublishClick(context.Background(), testClick())

	require.NoError(t, err)
	mockAPI.AssertExpectations(t)
}

func TestClient_PublishClick_SendError(t *testing.T) {
	mockAPI := new(MockAPI)
	client := New(mockAPI, "queue", zap.NewNop())

	mockAPI.On("SendMessage", mock.Anything, mock.Anything).Return(nil, errors.New("queue does not exist"))

	err := client.PublishClick(context.Background(), testClick())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send message to SQS")
}

func TestClient_QueueURL(t *testing.T) {
	client := New(new(MockAPI), "queue-url", zap.NewNop())
	assert.Equal(t, "queue-url", client.QueueURL())
}
