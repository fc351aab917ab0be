package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error    string `json:"error" example:"validation_error"`
	Message  string `json:"message,omitempty" example:"button_id is required"`
	ButtonID string `json:"button_id,omitempty" example:"unsubscribe"`
}

// LogClickResponse represents a successfully recorded click
type LogClickResponse struct {
	Message   string `json:"message" example:"logged"`
	Timestamp string `json:"timestamp" example:"2026-01-02T15:04:05.123456789Z"`
	EventID   string `json:"event_id" example:"0b0f6f7e-52b4-4c0e-8f53-0fd3c1c2b0a9"`
}

// ClickCountResponse represents the number of recorded clicks for a button
type ClickCountResponse struct {
	ButtonID string `json:"button_id" example:"unsubscribe"`
	Count    int    `json:"count" example:"42"`
}

// UserVotesResponse lists the buttons the caller has already clicked
type UserVotesResponse struct {
	VotedButtons []string `json:"voted_buttons"`
}

// ClickEventData represents a click in the caller's history
type ClickEventData struct {
	EventID    string `json:"event_id"`
	UserID     string `json:"user_id"`
	ButtonID   string `json:"button_id"`
	TargetURL  string `json:"target_url"`
	CampaignID string `json:"campaign_id"`
	SessionID  string `json:"session_id,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// UserActivityResponse represents the caller's click history, newest first
type UserActivityResponse struct {
	Items []ClickEventData `json:"items"`
	Count int              `json:"count"`
}

// CampaignResponse represents the caller's campaign
type CampaignResponse struct {
	CampaignID   string `json:"campaign_id" example:"abc12345"`
	CampaignName string `json:"campaign_name" example:"My Boycott Squad"`
	ShareURL     string `json:"share_url" example:"https://example.com/?ref=abc12345&name=My%20Boycott%20Squad"`
}

// LeaderboardRow represents a ranked actor
type LeaderboardRow struct {
	Rank    int    `json:"rank" example:"1"`
	Display string `json:"display" example:"al***@example.com"`
	Actions int    `json:"actions" example:"12"`
}

// LeaderboardResponse represents the actor leaderboard
type LeaderboardResponse struct {
	Leaderboard []LeaderboardRow `json:"leaderboard"`
	TotalUsers  int              `json:"total_users"`
}

// CampaignLeaderboardRow represents a ranked campaign
type CampaignLeaderboardRow struct {
	Rank       int    `json:"rank" example:"1"`
	CampaignID string `json:"campaign_id" example:"abc12345"`
	Display    string `json:"display" example:"My Boycott Squad"`
	Actions    int    `json:"actions" example:"37"`
}

// CampaignLeaderboardResponse represents the campaign leaderboard
type CampaignLeaderboardResponse struct {
	Leaderboard    []CampaignLeaderboardRow `json:"leaderboard"`
	TotalCampaigns int                      `json:"total_campaigns"`
}

// MetricsGroupData represents aggregated metrics for a specific group
type MetricsGroupData struct {
	GroupValue string `json:"group_value" example:"abc12345"`
	TotalCount uint64 `json:"total_count" example:"1500"`
}

// GetMetricsResponse represents the metrics query response
type GetMetricsResponse struct {
	ButtonID     string             `json:"button_id" example:"unsubscribe"`
	From         int64              `json:"from" example:"1723475612"`
	To           int64              `json:"to" example:"1723562012"`
	TotalCount   uint64             `json:"total_count" example:"5000"`
	UniqueActors uint64             `json:"unique_actors" example:"2500"`
	GroupBy      string             `json:"group_by,omitempty" example:"campaign"`
	Groups       []MetricsGroupData `json:"groups,omitempty"`
}
