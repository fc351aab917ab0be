package service

import (
	"time"

	"github.com/BarkinBalci/click-vote-service/internal/domain"
	"github.com/BarkinBalci/click-vote-service/internal/dto"
	"github.com/BarkinBalci/click-vote-service/internal/store"
)

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(domain.TimestampLayout)
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// logKey orders by time first; the event id keeps same-instant clicks apart
func logKey(e *domain.ClickEvent) string {
	return formatTimestamp(e.Timestamp) + "#" + e.EventID
}

func clickItem(e *domain.ClickEvent) store.Item {
	item := store.Item{
		store.AttrUserID:     e.ActorID,
		store.AttrLogKey:     logKey(e),
		store.AttrTimestamp:  formatTimestamp(e.Timestamp),
		store.AttrButtonID:   e.ButtonID,
		store.AttrTargetURL:  e.TargetURL,
		store.AttrCampaignID: e.CampaignID,
		store.AttrEventID:    e.EventID,
	}
	if e.SessionID != "" {
		item[store.AttrSessionID] = e.SessionID
	}
	return item
}

func clickData(item store.Item) dto.ClickEventData {
	campaignID := item.String(store.AttrCampaignID)
	if campaignID == "" {
		campaignID = domain.NoCampaign
	}
	return dto.ClickEventData{
		EventID:    item.String(store.AttrEventID),
		UserID:     item.String(store.AttrUserID),
		ButtonID:   item.String(store.AttrButtonID),
		TargetURL:  item.String(store.AttrTargetURL),
		CampaignID: campaignID,
		SessionID:  item.String(store.AttrSessionID),
		Timestamp:  item.String(store.AttrTimestamp),
	}
}

func guardItem(actorID, buttonID string, now time.Time) store.Item {
	return store.Item{
		store.AttrUserID:    actorID,
		store.AttrButtonID:  buttonID,
		store.AttrTimestamp: formatTimestamp(now),
	}
}

func windowedGuardItem(sessionID, buttonID string, now time.Time, window time.Duration) store.Item {
	return store.Item{
		store.AttrSessionID: sessionID,
		store.AttrButtonID:  buttonID,
		store.AttrTimestamp: formatTimestamp(now),
		store.AttrTTL:       now.Add(window).Unix(),
	}
}

func campaignItem(c *domain.Campaign) store.Item {
	return store.Item{
		store.AttrCampaignID:  c.CampaignID,
		store.AttrOwnerUserID: c.OwnerUserID,
		store.AttrName:        c.Name,
		store.AttrCreatedAt:   formatTimestamp(c.CreatedAt),
	}
}

func campaignFromItem(item store.Item) *domain.Campaign {
	return &domain.Campaign{
		CampaignID:  item.String(store.AttrCampaignID),
		OwnerUserID: item.String(store.AttrOwnerUserID),
		Name:        item.String(store.AttrName),
		CreatedAt:   parseTimestamp(item.String(store.AttrCreatedAt)),
	}
}
