package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/BarkinBalci/click-vote-service/internal/domain"
	"github.com/BarkinBalci/click-vote-service/internal/dto"
	"github.com/BarkinBalci/click-vote-service/internal/store"
)

const (
	campaignIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	campaignIDLength   = 8
	maxIDAttempts      = 3
)

// CampaignConfig holds the campaign provisioner settings
type CampaignConfig struct {
	OwnerIndex string
	AppBase    string
	MaxNameLen int
}

// CampaignService provisions at most one visible campaign per owner
type CampaignService struct {
	campaigns store.Table
	cfg       CampaignConfig
	now       func() time.Time
	newID     func() (string, error)
	log       *zap.Logger
}

// NewCampaignService creates a new campaign service
func NewCampaignService(campaigns store.Table, cfg CampaignConfig, log *zap.Logger) *CampaignService {
	return &CampaignService{
		campaigns: campaigns,
		cfg:       cfg,
		now:       time.Now,
		newID:     newCampaignID,
		log:       log,
	}
}

// GetOrCreate returns the owner's campaign, creating it with the requested name
// if none exists. An existing campaign is returned unchanged.
func (s *CampaignService) GetOrCreate(ctx context.Context, ownerID string, req *dto.CreateCampaignRequest) (*dto.CampaignResponse, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}

	name := strings.TrimSpace(req.CampaignName)
	if name == "" {
		return nil, domain.NewValidationError("campaign_name is required")
	}
	if utf8.RuneCountInString(name) > s.cfg.MaxNameLen {
		return nil, domain.NewValidationError("campaign_name must be at most %d characters", s.cfg.MaxNameLen)
	}

	existing, err := s.findByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.response(existing), nil
	}

	created, err := s.create(ctx, ownerID, name)
	if err != nil {
		return nil, err
	}

	// Concurrent creators each insert a row; all of them re-read and agree on
	// the earliest one.
	winner, err := s.findByOwner(ctx, ownerID)
	if err != nil {
		s.log.Warn("Failed to re-read campaigns after create",
			zap.String("owner_user_id", ownerID),
			zap.Error(err))
	}
	if winner == nil {
		winner = created
	}
	if winner.CampaignID != created.CampaignID {
		s.log.Info("Concurrent campaign creation converged",
			zap.String("owner_user_id", ownerID),
			zap.String("campaign_id", winner.CampaignID),
			zap.String("discarded_campaign_id", created.CampaignID))
	}

	return s.response(winner), nil
}

// Get returns the owner's campaign or domain.ErrNotFound
func (s *CampaignService) Get(ctx context.Context, ownerID string) (*dto.CampaignResponse, error) {
	if ownerID == "" {
		return nil, domain.ErrUnauthorized
	}

	c, err := s.findByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}

	return s.response(c), nil
}

// ShareURL builds the public link that attributes clicks to the campaign
func (s *CampaignService) ShareURL(c *domain.Campaign) string {
	name := strings.ReplaceAll(url.QueryEscape(c.Name), "+", "%20")
	return fmt.Sprintf("%s/?ref=%s&name=%s", strings.TrimRight(s.cfg.AppBase, "/"), url.QueryEscape(c.CampaignID), name)
}

func (s *CampaignService) response(c *domain.Campaign) *dto.CampaignResponse {
	return &dto.CampaignResponse{
		CampaignID:   c.CampaignID,
		CampaignName: c.Name,
		ShareURL:     s.ShareURL(c),
	}
}

func (s *CampaignService) create(ctx context.Context, ownerID, name string) (*domain.Campaign, error) {
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		id, err := s.newID()
		if err != nil {
			return nil, fmt.Errorf("failed to generate campaign id: %w", err)
		}

		c := &domain.Campaign{
			CampaignID:  id,
			OwnerUserID: ownerID,
			Name:        name,
			CreatedAt:   s.now().UTC(),
		}

		outcome, err := s.campaigns.PutIfAbsent(ctx, campaignItem(c))
		if err != nil {
			return nil, fmt.Errorf("failed to create campaign: %w", err)
		}
		if outcome == store.PutOK {
			s.log.Info("Campaign created",
				zap.String("owner_user_id", ownerID),
				zap.String("campaign_id", id))
			return c, nil
		}

		s.log.Warn("Campaign id collision",
			zap.String("campaign_id", id),
			zap.Int("attempt", attempt))
	}

	return nil, errors.New("failed to allocate a unique campaign id")
}

// findByOwner returns the owner's earliest campaign, or nil when there is none
func (s *CampaignService) findByOwner(ctx context.Context, ownerID string) (*domain.Campaign, error) {
	var winner *domain.Campaign
	q := store.Query{
		Index:    s.cfg.OwnerIndex,
		KeyName:  store.AttrOwnerUserID,
		KeyValue: ownerID,
	}
	err := store.QueryAll(ctx, s.campaigns, q, func(page *store.Page) error {
		for _, item := range page.Items {
			c := campaignFromItem(item)
			if winner == nil || earlier(c, winner) {
				winner = c
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query campaigns by owner: %w", err)
	}
	return winner, nil
}

func earlier(a, b *domain.Campaign) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.CampaignID < b.CampaignID
}

func newCampaignID() (string, error) {
	n := big.NewInt(int64(len(campaignIDAlphabet)))
	b := make([]byte, campaignIDLength)
	for i := range b {
		idx, err := rand.Int(rand.Reader, n)
		if err != nil {
			return "", err
		}
		b[i] = campaignIDAlphabet[idx.Int64()]
	}
	return string(b), nil
}
