package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BarkinBalci/click-vote-service/internal/domain"
	"github.com/BarkinBalci/click-vote-service/internal/dto"
	"github.com/BarkinBalci/click-vote-service/internal/queue"
	"github.com/BarkinBalci/click-vote-service/internal/store"
)

const (
	// DefaultActivityLimit is used when the caller does not ask for a history size
	DefaultActivityLimit = 20
	maxActivityLimit     = 100
)

// RecorderConfig holds the recording engine settings
type RecorderConfig struct {
	// CampaignGuardWindow is how long an anonymous session stays deduplicated per button
	CampaignGuardWindow time.Duration
}

// RecorderService records clicks exactly once per dedup scope
type RecorderService struct {
	tables      store.Tables
	publisher   queue.ClickPublisher
	guardWindow time.Duration
	now         func() time.Time
	newID       func() string
	log         *zap.Logger
}

// NewRecorderService creates a new recorder service. publisher may be nil.
func NewRecorderService(tables store.Tables, publisher queue.ClickPublisher, cfg RecorderConfig, log *zap.Logger) *RecorderService {
	window := cfg.CampaignGuardWindow
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &RecorderService{
		tables:      tables,
		publisher:   publisher,
		guardWindow: window,
		now:         time.Now,
		newID:       uuid.NewString,
		log:         log,
	}
}

// Record accepts the first click of an authenticated actor on a button
func (s *RecorderService) Record(ctx context.Context, actorID string, req *dto.LogClickRequest) (*dto.LogClickResponse, error) {
	if actorID == "" {
		return nil, domain.ErrUnauthorized
	}
	if strings.TrimSpace(req.ButtonID) == "" {
		return nil, domain.NewValidationError("button_id is required")
	}

	campaignID := req.CampaignID
	if campaignID == "" {
		campaignID = domain.NoCampaign
	}

	now := s.now().UTC()

	outcome, err := s.tables.Guards.PutIfAbsent(ctx, guardItem(actorID, req.ButtonID, now))
	if err != nil {
		return nil, fmt.Errorf("failed to write dedup guard: %w", err)
	}
	if outcome == store.PutConflict {
		s.log.Info("Duplicate click rejected",
			zap.String("user_id", actorID),
			zap.String("button_id", req.ButtonID))
		return nil, &domain.AlreadyRecordedError{ButtonID: req.ButtonID}
	}

	event := &domain.ClickEvent{
		EventID:    s.newID(),
		ActorID:    actorID,
		ButtonID:   req.ButtonID,
		TargetURL:  req.TargetURL,
		CampaignID: campaignID,
		Timestamp:  now,
	}
	s.appendEvent(ctx, event)

	return &dto.LogClickResponse{
		Message:   "Click logged",
		Timestamp: formatTimestamp(now),
		EventID:   event.EventID,
	}, nil
}

// RecordForCampaign accepts the first click of an anonymous session on a
// button within the guard window, attributed to an existing campaign
func (s *RecorderService) RecordForCampaign(ctx context.Context, req *dto.LogCampaignClickRequest) (*dto.LogClickResponse, error) {
	if req.SessionID == "" || req.ButtonID == "" || req.CampaignID == "" {
		return nil, domain.NewValidationError("session_id, button_id and campaign_id are required")
	}

	_, err := s.tables.Campaigns.GetItem(ctx, store.Item{store.AttrCampaignID: req.CampaignID})
	if errors.Is(err, store.ErrNotFound) {
		s.log.Info("Campaign click for unknown campaign",
			zap.String("campaign_id", req.CampaignID))
		return nil, domain.ErrCampaignNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up campaign: %w", err)
	}

	now := s.now().UTC()

	outcome, err := s.tables.WindowedGuards.PutIfAbsent(ctx, windowedGuardItem(req.SessionID, req.ButtonID, now, s.guardWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to write campaign dedup guard: %w", err)
	}
	if outcome == store.PutConflict {
		s.log.Info("Duplicate campaign click rejected",
			zap.String("session_id", req.SessionID),
			zap.String("button_id", req.ButtonID))
		return nil, &domain.AlreadyRecordedError{ButtonID: req.ButtonID}
	}

	event := &domain.ClickEvent{
		EventID:    s.newID(),
		ActorID:    domain.AnonymousActorID,
		ButtonID:   req.ButtonID,
		TargetURL:  req.TargetURL,
		CampaignID: req.CampaignID,
		SessionID:  req.SessionID,
		Timestamp:  now,
	}
	s.appendEvent(ctx, event)

	return &dto.LogClickResponse{
		Message:   "Campaign click logged",
		Timestamp: formatTimestamp(now),
		EventID:   event.EventID,
	}, nil
}

// appendEvent writes the click log row and hands the event to the publisher.
// The guard is already committed, so failures here are logged and swallowed.
func (s *RecorderService) appendEvent(ctx context.Context, event *domain.ClickEvent) {
	if err := s.tables.Clicks.PutItem(ctx, clickItem(event)); err != nil {
		s.log.Error("Failed to append click log after guard was written",
			zap.String("event_id", event.EventID),
			zap.String("user_id", event.ActorID),
			zap.String("button_id", event.ButtonID),
			zap.Error(err))
	}

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishClick(ctx, event); err != nil {
		s.log.Warn("Failed to publish click",
			zap.String("event_id", event.EventID),
			zap.Error(err))
	}
}

// VotedButtons lists every button the actor has a guard for
func (s *RecorderService) VotedButtons(ctx context.Context, actorID string) (*dto.UserVotesResponse, error) {
	if actorID == "" {
		return nil, domain.ErrUnauthorized
	}

	buttons := make([]string, 0)
	q := store.Query{
		KeyName:    store.AttrUserID,
		KeyValue:   actorID,
		Projection: []string{store.AttrButtonID},
	}
	err := store.QueryAll(ctx, s.tables.Guards, q, func(page *store.Page) error {
		for _, item := range page.Items {
			buttons = append(buttons, item.String(store.AttrButtonID))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query voted buttons: %w", err)
	}

	return &dto.UserVotesResponse{VotedButtons: buttons}, nil
}

// Activity returns the actor's most recent clicks, newest first
func (s *RecorderService) Activity(ctx context.Context, actorID string, limit int) (*dto.UserActivityResponse, error) {
	if actorID == "" {
		return nil, domain.ErrUnauthorized
	}
	limit = min(max(limit, 1), maxActivityLimit)

	items := make([]dto.ClickEventData, 0, limit)
	q := store.Query{
		KeyName:    store.AttrUserID,
		KeyValue:   actorID,
		Descending: true,
	}
	for len(items) < limit {
		q.Limit = int32(limit - len(items))
		page, err := s.tables.Clicks.Query(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("failed to query click history: %w", err)
		}
		for _, item := range page.Items {
			items = append(items, clickData(item))
		}
		if len(page.Cursor) == 0 {
			break
		}
		q.Cursor = page.Cursor
	}

	return &dto.UserActivityResponse{Items: items, Count: len(items)}, nil
}
