package domain

import "time"

const (
	// AnonymousActorID is recorded as the actor of session-scoped campaign clicks
	AnonymousActorID = "anonymous"
	// NoCampaign groups clicks that carry no campaign attribution
	NoCampaign = "none"

	// TimestampLayout is fixed width so stored timestamps sort lexically in time order
	TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"
)

// ClickEvent represents a recorded click in the append-only click log
type ClickEvent struct {
	EventID    string    `json:"event_id" ch:"event_id"`
	ActorID    string    `json:"user_id" ch:"actor_id"`
	ButtonID   string    `json:"button_id" ch:"button_id"`
	TargetURL  string    `json:"target_url" ch:"target_url"`
	CampaignID string    `json:"campaign_id" ch:"campaign_id"`
	SessionID  string    `json:"session_id,omitempty" ch:"session_id"`
	Timestamp  time.Time `json:"timestamp" ch:"timestamp"`
}

// Campaign is a per-owner attribution target for anonymous clicks
type Campaign struct {
	CampaignID  string    `json:"campaign_id"`
	OwnerUserID string    `json:"owner_user_id"`
	Name        string    `json:"campaign_name"`
	CreatedAt   time.Time `json:"created_at"`
}
