package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/BarkinBalci/click-vote-service/internal/domain"
	"github.com/BarkinBalci/click-vote-service/internal/dto"
	"github.com/BarkinBalci/click-vote-service/internal/identity"
	"github.com/BarkinBalci/click-vote-service/internal/store"
)

const (
	// DefaultCountButton is counted when no button is named
	DefaultCountButton = "unsubscribe"

	emailAttribute = "email"
)

// AggregatorConfig holds the aggregator settings
type AggregatorConfig struct {
	ButtonIndex      string
	IdentityPageSize int32
}

// AggregatorService builds leaderboards and counts from whole-table reads
type AggregatorService struct {
	tables     store.Tables
	identities identity.Provider
	cfg        AggregatorConfig
	log        *zap.Logger
}

// NewAggregatorService creates a new aggregator service. identities may be
// nil, in which case every actor is shown by an anonymous handle.
func NewAggregatorService(tables store.Tables, identities identity.Provider, cfg AggregatorConfig, log *zap.Logger) *AggregatorService {
	return &AggregatorService{
		tables:     tables,
		identities: identities,
		cfg:        cfg,
		log:        log,
	}
}

// ActorLeaderboard ranks actors by the number of guards they hold
func (s *AggregatorService) ActorLeaderboard(ctx context.Context) (*dto.LeaderboardResponse, error) {
	t := newTally()
	err := store.ScanAll(ctx, s.tables.Guards, store.Scan{Projection: []string{store.AttrUserID}}, func(page *store.Page) error {
		for _, item := range page.Items {
			if id := item.String(store.AttrUserID); id != "" {
				t.add(id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan dedup guards: %w", err)
	}

	ranked := t.ranked()

	var emails map[string]string
	if len(ranked) > 0 {
		emails = s.emailsBySubject(ctx)
	}

	rows := make([]dto.LeaderboardRow, 0, len(ranked))
	for i, e := range ranked {
		display := anonymousHandle(e.key)
		if email, ok := emails[e.key]; ok && email != "" {
			display = maskEmail(email, e.key)
		}
		rows = append(rows, dto.LeaderboardRow{
			Rank:    i + 1,
			Display: display,
			Actions: e.count,
		})
	}

	return &dto.LeaderboardResponse{Leaderboard: rows, TotalUsers: len(rows)}, nil
}

// CampaignLeaderboard ranks campaigns by the number of clicks attributed to them
func (s *AggregatorService) CampaignLeaderboard(ctx context.Context) (*dto.CampaignLeaderboardResponse, error) {
	t := newTally()
	err := store.ScanAll(ctx, s.tables.Clicks, store.Scan{Projection: []string{store.AttrCampaignID}}, func(page *store.Page) error {
		for _, item := range page.Items {
			id := item.String(store.AttrCampaignID)
			if id == "" {
				id = domain.NoCampaign
			}
			t.add(id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan click log: %w", err)
	}

	ranked := t.ranked()
	rows := make([]dto.CampaignLeaderboardRow, 0, len(ranked))
	for i, e := range ranked {
		rows = append(rows, dto.CampaignLeaderboardRow{
			Rank:       i + 1,
			CampaignID: e.key,
			Display:    s.campaignDisplay(ctx, e.key),
			Actions:    e.count,
		})
	}

	return &dto.CampaignLeaderboardResponse{Leaderboard: rows, TotalCampaigns: len(rows)}, nil
}

// CountByButton counts the click log rows for a button
func (s *AggregatorService) CountByButton(ctx context.Context, buttonID string) (*dto.ClickCountResponse, error) {
	if buttonID == "" {
		buttonID = DefaultCountButton
	}

	total := 0
	q := store.Query{
		Index:     s.cfg.ButtonIndex,
		KeyName:   store.AttrButtonID,
		KeyValue:  buttonID,
		CountOnly: true,
	}
	err := store.QueryAll(ctx, s.tables.Clicks, q, func(page *store.Page) error {
		total += page.Count
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count clicks: %w", err)
	}

	return &dto.ClickCountResponse{ButtonID: buttonID, Count: total}, nil
}

func (s *AggregatorService) campaignDisplay(ctx context.Context, campaignID string) string {
	if campaignID == domain.NoCampaign {
		return "No Campaign"
	}

	fallback := "Campaign " + campaignID
	item, err := s.tables.Campaigns.GetItem(ctx, store.Item{store.AttrCampaignID: campaignID})
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn("Failed to look up campaign name",
				zap.String("campaign_id", campaignID),
				zap.Error(err))
		}
		return fallback
	}
	if name := item.String(store.AttrName); name != "" {
		return name
	}
	return fallback
}

// emailsBySubject lists every registered identity. Provider failures yield an
// empty map so the leaderboard still renders with anonymous handles.
func (s *AggregatorService) emailsBySubject(ctx context.Context) map[string]string {
	if s.identities == nil {
		return nil
	}

	emails := make(map[string]string)
	err := identity.ListAll(ctx, s.identities, []string{emailAttribute}, s.cfg.IdentityPageSize, func(u identity.User) {
		if email := u.Attributes[emailAttribute]; email != "" {
			emails[u.SubjectID] = email
		}
	})
	if err != nil {
		s.log.Warn("Failed to list identities, using anonymous handles", zap.Error(err))
		return nil
	}
	return emails
}

func maskEmail(email, actorID string) string {
	at := strings.Index(email, "@")
	if at < 0 {
		return anonymousHandle(actorID)
	}
	local := []rune(email[:at])
	if len(local) > 2 {
		local = local[:2]
	}
	return string(local) + "***@" + email[at+1:]
}

func anonymousHandle(actorID string) string {
	r := []rune(actorID)
	if len(r) > 4 {
		r = r[len(r)-4:]
	}
	return "User #" + string(r)
}

type tallyEntry struct {
	key   string
	count int
}

// tally counts keys and remembers the order they were first seen in
type tally struct {
	index   map[string]int
	entries []tallyEntry
}

func newTally() *tally {
	return &tally{index: make(map[string]int)}
}

func (t *tally) add(key string) {
	if i, ok := t.index[key]; ok {
		t.entries[i].count++
		return
	}
	t.index[key] = len(t.entries)
	t.entries = append(t.entries, tallyEntry{key: key, count: 1})
}

// ranked orders by count descending; ties keep first-seen order
func (t *tally) ranked() []tallyEntry {
	out := make([]tallyEntry, len(t.entries))
	copy(out, t.entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].count > out[j].count
	})
	return out
}
