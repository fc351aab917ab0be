package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/BarkinBalci/click-vote-service/internal/domain"
	"github.com/BarkinBalci/click-vote-service/internal/dto"
	"github.com/BarkinBalci/click-vote-service/internal/repository"
)

const maxHourlyRangeSeconds = 90 * 24 * 3600

var validGroupBy = map[string]bool{"campaign": true, "hour": true, "day": true}

// MetricsService answers reporting queries against the analytics mirror
type MetricsService struct {
	repository repository.ClickRepository
	log        *zap.Logger
}

// NewMetricsService creates a new metrics service
func NewMetricsService(repo repository.ClickRepository, log *zap.Logger) *MetricsService {
	return &MetricsService{
		repository: repo,
		log:        log,
	}
}

// GetMetrics retrieves aggregated click metrics from the repository
func (s *MetricsService) GetMetrics(ctx context.Context, req *dto.GetMetricsRequest) (*dto.GetMetricsResponse, error) {
	if req.From > req.To {
		s.log.Warn("Invalid time range for metrics",
			zap.Int64("from", req.From),
			zap.Int64("to", req.To),
			zap.String("button_id", req.ButtonID))
		return nil, domain.NewValidationError("from timestamp must be less than or equal to to timestamp")
	}

	if req.GroupBy != "" {
		if !validGroupBy[req.GroupBy] {
			s.log.Warn("Invalid group_by value", zap.String("group_by", req.GroupBy))
			return nil, domain.NewValidationError("invalid group_by value: %s (supported: campaign, hour, day)", req.GroupBy)
		}

		rangeSeconds := req.To - req.From
		if req.GroupBy == "hour" && rangeSeconds > maxHourlyRangeSeconds {
			return nil, domain.NewValidationError("time range too large for hourly grouping (max 90 days, got %d days)", rangeSeconds/(24*3600))
		}
	}

	query := repository.MetricsQuery{
		ButtonID: req.ButtonID,
		From:     req.From,
		To:       req.To,
		GroupBy:  req.GroupBy,
	}

	s.log.Info("Querying metrics",
		zap.String("button_id", req.ButtonID),
		zap.Int64("from", req.From),
		zap.Int64("to", req.To),
		zap.String("group_by", req.GroupBy))

	result, err := s.repository.GetMetrics(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics from repository: %w", err)
	}

	response := &dto.GetMetricsResponse{
		ButtonID:     req.ButtonID,
		From:         req.From,
		To:           req.To,
		TotalCount:   result.TotalCount,
		UniqueActors: result.UniqueActors,
		GroupBy:      req.GroupBy,
	}
	if len(result.Groups) > 0 {
		response.Groups = make([]dto.MetricsGroupData, 0, len(result.Groups))
		for _, group := range result.Groups {
			response.Groups = append(response.Groups, dto.MetricsGroupData{
				GroupValue: group.GroupValue,
				TotalCount: group.TotalCount,
			})
		}
	}

	return response, nil
}
