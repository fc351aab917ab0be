package service

import (
	"context"

	"github.com/BarkinBalci/click-vote-service/internal/dto"
)

// RecorderServicer defines the interface for click recording and per-user history
type RecorderServicer interface {
	Record(ctx context.Context, actorID string, req *dto.LogClickRequest) (*dto.LogClickResponse, error)
	RecordForCampaign(ctx context.Context, req *dto.LogCampaignClickRequest) (*dto.LogClickResponse, error)
	VotedButtons(ctx context.Context, actorID string) (*dto.UserVotesResponse, error)
	Activity(ctx context.Context, actorID string, limit int) (*dto.UserActivityResponse, error)
}

// CampaignServicer defines the interface for campaign provisioning
type CampaignServicer interface {
	GetOrCreate(ctx context.Context, ownerID string, req *dto.CreateCampaignRequest) (*dto.CampaignResponse, error)
	Get(ctx context.Context, ownerID string) (*dto.CampaignResponse, error)
}

// AggregatorServicer defines the interface for leaderboards and counts
type AggregatorServicer interface {
	ActorLeaderboard(ctx context.Context) (*dto.LeaderboardResponse, error)
	CampaignLeaderboard(ctx context.Context) (*dto.CampaignLeaderboardResponse, error)
	CountByButton(ctx context.Context, buttonID string) (*dto.ClickCountResponse, error)
}

// MetricsServicer defines the interface for analytics metrics queries
type MetricsServicer interface {
	GetMetrics(ctx context.Context, req *dto.GetMetricsRequest) (*dto.GetMetricsResponse, error)
}
