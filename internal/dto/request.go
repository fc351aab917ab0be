package dto

// LogClickRequest represents an authenticated click request
type LogClickRequest struct {
	ButtonID   string `json:"button_id" binding:"required" example:"unsubscribe"`
	TargetURL  string `json:"target_url" example:"https://example.com/cancel"`
	CampaignID string `json:"campaign_id" example:"abc12345"`
}

// LogCampaignClickRequest represents an anonymous campaign-attributed click request
type LogCampaignClickRequest struct {
	ButtonID   string `json:"button_id" binding:"required" example:"amazon-prime"`
	TargetURL  string `json:"target_url" example:"https://example.com/cancel"`
	CampaignID string `json:"campaign_id" binding:"required" example:"abc12345"`
	SessionID  string `json:"session_id" binding:"required" example:"6f1c2a8e-1b7d-4c55-9a0e-2f5b8f3e9d10"`
}

// CreateCampaignRequest represents a campaign creation request
type CreateCampaignRequest struct {
	CampaignName string `json:"campaign_name" example:"My Boycott Squad"`
}

// ClickCountRequest represents a click count query
type ClickCountRequest struct {
	ButtonID string `form:"button_id" example:"unsubscribe"`
}

// UserActivityRequest represents a click history query
type UserActivityRequest struct {
	Limit string `form:"limit" example:"20"`
}

// GetMetricsRequest represents an analytics metrics query
type GetMetricsRequest struct {
	ButtonID string `form:"button_id" binding:"required" example:"unsubscribe"`
	From     int64  `form:"from" binding:"required" example:"1723475612"`
	To       int64  `form:"to" binding:"required" example:"1723562012"`
	GroupBy  string `form:"group_by" example:"campaign"`
}
