package store

import "github.com/BarkinBalci/click-vote-service/internal/config"

// Attribute names shared by the click tables
const (
	AttrUserID      = "user_id"
	AttrButtonID    = "button_id"
	AttrSessionID   = "session_id"
	AttrTimestamp   = "timestamp"
	AttrLogKey      = "log_key"
	AttrTargetURL   = "target_url"
	AttrCampaignID  = "campaign_id"
	AttrEventID     = "event_id"
	AttrTTL         = "ttl"
	AttrOwnerUserID = "owner_user_id"
	AttrName        = "campaign_name"
	AttrCreatedAt   = "created_at"
)

// Schema describes the key layout of a table
type Schema struct {
	Name         string
	PartitionKey string
	// SortKey is empty for tables keyed by partition only
	SortKey string
	// Indexes maps a secondary index name to its partition attribute
	Indexes map[string]string
	// TTLAttribute is empty for tables without expiry
	TTLAttribute string
}

// KeyOf extracts the primary key attributes of item
func (s Schema) KeyOf(item Item) Item {
	key := Item{s.PartitionKey: item[s.PartitionKey]}
	if s.SortKey != "" {
		key[s.SortKey] = item[s.SortKey]
	}
	return key
}

// ClickLogSchema is the append-only click log, queried by user and by button.
// Rows sort on log_key, the timestamp suffixed with the event id, so clicks
// sharing an actor and an instant keep distinct rows.
func ClickLogSchema(name, buttonIndex string) Schema {
	return Schema{
		Name:         name,
		PartitionKey: AttrUserID,
		SortKey:      AttrLogKey,
		Indexes:      map[string]string{buttonIndex: AttrButtonID},
	}
}

// GuardSchema is the persistent (user, button) dedup guard table
func GuardSchema(name string) Schema {
	return Schema{
		Name:         name,
		PartitionKey: AttrUserID,
		SortKey:      AttrButtonID,
	}
}

// WindowedGuardSchema is the (session, button) dedup guard table with expiry
func WindowedGuardSchema(name string) Schema {
	return Schema{
		Name:         name,
		PartitionKey: AttrSessionID,
		SortKey:      AttrButtonID,
		TTLAttribute: AttrTTL,
	}
}

// CampaignSchema is the campaign table, looked up by owner through ownerIndex
func CampaignSchema(name, ownerIndex string) Schema {
	return Schema{
		Name:         name,
		PartitionKey: AttrCampaignID,
		Indexes:      map[string]string{ownerIndex: AttrOwnerUserID},
	}
}

// Schemas is the set of tables the service reads and writes
type Schemas struct {
	Clicks         Schema
	Guards         Schema
	WindowedGuards Schema
	Campaigns      Schema
}

// Tables holds one store.Table per schema in Schemas
type Tables struct {
	Clicks         Table
	Guards         Table
	WindowedGuards Table
	Campaigns      Table
}

// SchemasFromConfig names the tables and indexes from configuration
func SchemasFromConfig(cfg config.DynamoDB) Schemas {
	return Schemas{
		Clicks:         ClickLogSchema(cfg.ClickTable, cfg.ButtonIndex),
		Guards:         GuardSchema(cfg.DedupTable),
		WindowedGuards: WindowedGuardSchema(cfg.CampaignDedupTable),
		Campaigns:      CampaignSchema(cfg.CampaignsTable, cfg.CampaignOwnerIndex),
	}
}
