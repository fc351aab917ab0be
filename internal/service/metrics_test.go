package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BarkinBalci/click-vote-service/internal/domain"
	"github.com/BarkinBalci/click-vote-service/internal/dto"
	"github.com/BarkinBalci/click-vote-service/internal/repository"
)

func TestMetricsService_GetMetrics_Success(t *testing.T) {
	mockRepo := new(MockClickRepository)
	service := NewMetricsService(mockRepo, zap.NewNop())

	req := &dto.GetMetricsRequest{
		ButtonID: "unsubscribe",
		From:     1723475612,
		To:       1723562012,
	}

	mockRepo.On("GetMetrics", mock.Anything, repository.MetricsQuery{
		ButtonID: "unsubscribe",
		From:     1723475612,
		To:       1723562012,
	}).Return(&repository.MetricsResult{TotalCount: 5000, UniqueActors: 2500}, nil)

	response, err := service.GetMetrics(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "unsubscribe", response.ButtonID)
	assert.Equal(t, uint64(5000), response.TotalCount)
	assert.Equal(t, uint64(2500), response.UniqueActors)
	assert.Empty(t, response.Groups)
	mockRepo.AssertExpectations(t)
}

func TestMetricsService_GetMetrics_WithGroupBy(t *testing.T) {
	mockRepo := new(MockClickRepository)
	service := NewMetricsService(mockRepo, zap.NewNop())

	req := &dto.GetMetricsRequest{
		ButtonID: "unsubscribe",
		From:     1723475612,
		To:       1723562012,
		GroupBy:  "campaign",
	}

	mockRepo.On("GetMetrics", mock.Anything, mock.MatchedBy(func(q repository.MetricsQuery) bool {
		return q.GroupBy == "campaign"
	})).Return(&repository.MetricsResult{
		TotalCount:   3,
		UniqueActors: 2,
		Groups: []repository.MetricsGroupResult{
			{GroupValue: "abc12345", TotalCount: 2},
			{GroupValue: "none", TotalCount: 1},
		},
	}, nil)

	response, err := service.GetMetrics(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "campaign", response.GroupBy)
	require.Len(t, response.Groups, 2)
	assert.Equal(t, "abc12345", response.Groups[0].GroupValue)
	assert.Equal(t, uint64(2), response.Groups[0].TotalCount)
}

func TestMetricsService_GetMetrics_InvalidTimeRange(t *testing.T) {
	mockRepo := new(MockClickRepository)
	service := NewMetricsService(mockRepo, zap.NewNop())

	_, err := service.GetMetrics(context.Background(), &dto.GetMetricsRequest{
		ButtonID: "unsubscribe",
		From:     1723562012,
		To:       1723475612,
	})

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, err.Error(), "from timestamp must be less than or equal to to timestamp")
	mockRepo.AssertNotCalled(t, "GetMetrics")
}

func TestMetricsService_GetMetrics_InvalidGroupBy(t *testing.T) {
	mockRepo := new(MockClickRepository)
	service := NewMetricsService(mockRepo, zap.NewNop())

	_, err := service.GetMetrics(context.Background(), &dto.GetMetricsRequest{
		ButtonID: "unsubscribe",
		From:     1723475612,
		To:       1723562012,
		GroupBy:  "channel",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid group_by value")
	mockRepo.AssertNotCalled(t, "GetMetrics")
}

func TestMetricsService_GetMetrics_HourlyGroupingTooLargeRange(t *testing.T) {
	mockRepo := new(MockClickRepository)
	service := NewMetricsService(mockRepo, zap.NewNop())

	_, err := service.GetMetrics(context.Background(), &dto.GetMetricsRequest{
		ButtonID: "unsubscribe",
		From:     0,
		To:       91 * 24 * 3600,
		GroupBy:  "hour",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "time range too large for hourly grouping")
}

func TestMetricsService_GetMetrics_RepositoryError(t *testing.T) {
	mockRepo := new(MockClickRepository)
	service := NewMetricsService(mockRepo, zap.NewNop())

	mockRepo.On("GetMetrics", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := service.GetMetrics(context.Background(), &dto.GetMetricsRequest{
		ButtonID: "unsubscribe",
		From:     1723475612,
		To:       1723562012,
		GroupBy:  "day",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get metrics from repository")
}
