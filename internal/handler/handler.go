package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BarkinBalci/click-vote-service/internal/domain"
	"github.com/BarkinBalci/click-vote-service/internal/dto"
	"github.com/BarkinBalci/click-vote-service/internal/service"
)

const subjectKey = "subject"

// Services groups the use cases served over HTTP. Metrics is nil when the
// analytics mirror is disabled.
type Services struct {
	Recorder   service.RecorderServicer
	Campaigns  service.CampaignServicer
	Aggregator service.AggregatorServicer
	Metrics    service.MetricsServicer
}

type Handler struct {
	services   Services
	authHeader string
	router     *gin.Engine
	log        *zap.Logger
}

// NewHandler creates the HTTP handler. authHeader names the header in which
// the gateway passes the verified subject.
func NewHandler(services Services, authHeader string, log *zap.Logger) *Handler {
	h := &Handler{
		services:   services,
		authHeader: authHeader,
		router:     gin.Default(),
		log:        log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)
	h.router.POST("/log-campaign-click", h.logCampaignClick)
	h.router.GET("/click-count", h.clickCount)
	h.router.GET("/leaderboard", h.leaderboard)
	h.router.GET("/leaderboard/campaigns", h.campaignLeaderboard)

	authed := h.router.Group("/", h.requireSubject)
	authed.POST("/log-click", h.logClick)
	authed.GET("/user-votes", h.userVotes)
	authed.GET("/user-activity", h.userActivity)
	authed.GET("/campaign", h.getCampaign)
	authed.POST("/campaign", h.createCampaign)

	if h.services.Metrics != nil {
		h.router.GET("/metrics", h.getMetrics)
	}
}

// requireSubject rejects requests that carry no verified subject
func (h *Handler) requireSubject(c *gin.Context) {
	subject := c.GetHeader(h.authHeader)
	if subject == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "unauthorized",
			Message: "Unauthorized",
		})
		return
	}
	c.Set(subjectKey, subject)
	c.Next()
}

// healthCheck handles GET /health
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// logClick handles POST /log-click
// @Summary Record a click
// @Description Record the caller's first click on a button. Repeat clicks are rejected.
// @Tags clicks
// @Accept json
// @Produce json
// @Param X-Authenticated-Subject header string true "Verified subject"
// @Param click body dto.LogClickRequest true "Click data"
// @Success 200 {object} dto.LogClickResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /log-click [post]
func (h *Handler) logClick(c *gin.Context) {
	var req dto.LogClickRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid click request", err)
		return
	}

	response, err := h.services.Recorder.Record(c.Request.Context(), c.GetString(subjectKey), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// logCampaignClick handles POST /log-campaign-click
// @Summary Record an anonymous campaign click
// @Description Record a session's first click on a button within the guard window, attributed to a campaign
// @Tags clicks
// @Accept json
// @Produce json
// @Param click body dto.LogCampaignClickRequest true "Campaign click data"
// @Success 200 {object} dto.LogClickResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /log-campaign-click [post]
func (h *Handler) logCampaignClick(c *gin.Context) {
	var req dto.LogCampaignClickRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid campaign click request", err)
		return
	}

	response, err := h.services.Recorder.RecordForCampaign(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// clickCount handles GET /click-count
// @Summary Count clicks on a button
// @Description Count click log entries for a button, defaulting to unsubscribe
// @Tags aggregates
// @Produce json
// @Param button_id query string false "Button to count" example:"unsubscribe"
// @Success 200 {object} dto.ClickCountResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /click-count [get]
func (h *Handler) clickCount(c *gin.Context) {
	var req dto.ClickCountRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "Invalid click count request", err)
		return
	}

	response, err := h.services.Aggregator.CountByButton(c.Request.Context(), req.ButtonID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// leaderboard handles GET /leaderboard
// @Summary Actor leaderboard
// @Description Rank actors by accepted clicks with masked display names
// @Tags aggregates
// @Produce json
// @Success 200 {object} dto.LeaderboardResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /leaderboard [get]
func (h *Handler) leaderboard(c *gin.Context) {
	response, err := h.services.Aggregator.ActorLeaderboard(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// campaignLeaderboard handles GET /leaderboard/campaigns
// @Summary Campaign leaderboard
// @Description Rank campaigns by attributed clicks
// @Tags aggregates
// @Produce json
// @Success 200 {object} dto.CampaignLeaderboardResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /leaderboard/campaigns [get]
func (h *Handler) campaignLeaderboard(c *gin.Context) {
	response, err := h.services.Aggregator.CampaignLeaderboard(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// userVotes handles GET /user-votes
// @Summary Buttons voted by the caller
// @Tags history
// @Produce json
// @Param X-Authenticated-Subject header string true "Verified subject"
// @Success 200 {object} dto.UserVotesResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /user-votes [get]
func (h *Handler) userVotes(c *gin.Context) {
	response, err := h.services.Recorder.VotedButtons(c.Request.Context(), c.GetString(subjectKey))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// userActivity handles GET /user-activity. A missing or malformed limit
// falls back to the default.
// @Summary Recent activity of the caller
// @Description List the caller's clicks, newest first
// @Tags history
// @Produce json
// @Param X-Authenticated-Subject header string true "Verified subject"
// @Param limit query int false "Maximum items (1-100)" example:"20"
// @Success 200 {object} dto.UserActivityResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /user-activity [get]
func (h *Handler) userActivity(c *gin.Context) {
	var req dto.UserActivityRequest
	_ = c.ShouldBindQuery(&req)

	limit, err := strconv.Atoi(req.Limit)
	if err != nil {
		limit = service.DefaultActivityLimit
	}

	response, err := h.services.Recorder.Activity(c.Request.Context(), c.GetString(subjectKey), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// getCampaign handles GET /campaign
// @Summary Get the caller's campaign
// @Tags campaigns
// @Produce json
// @Param X-Authenticated-Subject header string true "Verified subject"
// @Success 200 {object} dto.CampaignResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /campaign [get]
func (h *Handler) getCampaign(c *gin.Context) {
	response, err := h.services.Campaigns.Get(c.Request.Context(), c.GetString(subjectKey))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// createCampaign handles POST /campaign
// @Summary Create or return the caller's campaign
// @Description Return the caller's existing campaign, or create one with the given name
// @Tags campaigns
// @Accept json
// @Produce json
// @Param X-Authenticated-Subject header string true "Verified subject"
// @Param campaign body dto.CreateCampaignRequest true "Campaign data"
// @Success 200 {object} dto.CampaignResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /campaign [post]
func (h *Handler) createCampaign(c *gin.Context) {
	var req dto.CreateCampaignRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid campaign request", err)
		return
	}

	response, err := h.services.Campaigns.GetOrCreate(c.Request.Context(), c.GetString(subjectKey), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// getMetrics handles GET /metrics
// @Summary Get aggregated click metrics
// @Description Retrieve click metrics from the analytics mirror with optional grouping by campaign, hour, or day
// @Tags metrics
// @Produce json
// @Param button_id query string true "Button to filter by" example:"unsubscribe"
// @Param from query int true "Start timestamp (Unix epoch)" example:"1723475612"
// @Param to query int true "End timestamp (Unix epoch)" example:"1723562012"
// @Param group_by query string false "Field to group by (campaign, hour, day)" Enums(campaign, hour, day) example:"campaign"
// @Success 200 {object} dto.GetMetricsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /metrics [get]
func (h *Handler) getMetrics(c *gin.Context) {
	var req dto.GetMetricsRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		h.badRequest(c, "Invalid metrics request", err)
		return
	}

	response, err := h.services.Metrics.GetMetrics(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *Handler) badRequest(c *gin.Context, msg string, err error) {
	h.log.Warn(msg, zap.Error(err), zap.String("path", c.FullPath()))
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   "validation_error",
		Message: err.Error(),
	})
}

// writeError maps service errors to status codes. Unexpected errors are
// logged and reported without detail.
func (h *Handler) writeError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	var alreadyErr *domain.AlreadyRecordedError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: validationErr.Message,
		})
	case errors.As(err, &alreadyErr):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:    "already_recorded",
			Message:  "Already voted",
			ButtonID: alreadyErr.ButtonID,
		})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error:   "unauthorized",
			Message: "Unauthorized",
		})
	case errors.Is(err, domain.ErrCampaignNotFound):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "campaign_not_found",
			Message: "Campaign not found",
		})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "not_found",
			Message: "Not found",
		})
	default:
		h.log.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: "Internal server error",
		})
	}
}
