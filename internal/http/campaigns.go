package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/givin-app/givin/internal/auth"
	"github.com/givin-app/givin/internal/database/campaigns"
	"github.com/givin-app/givin/internal/entities"
)

// CampaignStore defines database operations for campaigns.
type CampaignStore interface {
	List() ([]entities.Campaign, error)
	GetByID(id uint) (*entities.Campaign, error)
	Create(campaign *entities.Campaign) error
	Update(campaign *entities.Campaign) error
	Delete(id uint) error
}

type CampaignsController struct {
	store CampaignStore
	audit DeleteLogger
}

func NewCampaignsController(store CampaignStore, audit DeleteLogger) *CampaignsController {
	return &CampaignsController{store: store, audit: audit}
}

type campaignRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Goal        decimal.Decimal `json:"goal"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	Active      *bool           `json:"active"`
}

func parseOptionalDay(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// toCampaign validates the request and fills dst.
func (r campaignRequest) toCampaign(dst *entities.Campaign) map[string]string {
	problems := make(map[string]string)
	if strings.TrimSpace(r.Name) == "" {
		problems["name"] = "name is required"
	}
	if r.Goal.IsNegative() {
		problems["goal"] = "goal cannot be negative"
	}
	start, err := parseOptionalDay(r.StartDate)
	if err != nil {
		problems["start_date"] = "expected YYYY-MM-DD"
	}
	end, err := parseOptionalDay(r.EndDate)
	if err != nil {
		problems["end_date"] = "expected YYYY-MM-DD"
	}
	if start != nil && end != nil && end.Before(*start) {
		problems["end_date"] = "end date is before start date"
	}
	if len(problems) > 0 {
		return problems
	}

	dst.Name = strings.TrimSpace(r.Name)
	dst.Description = strings.TrimSpace(r.Description)
	dst.Goal = r.Goal.Round(2)
	dst.StartDate = start
	dst.EndDate = end
	if r.Active != nil {
		dst.Active = *r.Active
	}
	return nil
}

// List handles GET /api/campaigns
func (cc *CampaignsController) List(c *gin.Context) {
	list, err := cc.store.List()
	if err != nil {
		respondInternalError(c, err, "list campaigns")
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": list})
}

// Get handles GET /api/campaigns/:id
func (cc *CampaignsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	campaign, err := cc.store.GetByID(id)
	if errors.Is(err, campaigns.ErrCampaignNotFound) {
		respondNotFound(c, "campaign")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get campaign")
		return
	}
	c.JSON(http.StatusOK, campaign)
}

// Create handles POST /api/campaigns
func (cc *CampaignsController) Create(c *gin.Context) {
	var req campaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	campaign := entities.Campaign{Active: true}
	if problems := req.toCampaign(&campaign); problems != nil {
		respondValidation(c, "invalid_campaign", "campaign is invalid", problems)
		return
	}
	if err := cc.store.Create(&campaign); err != nil {
		respondInternalError(c, err, "create campaign")
		return
	}
	respondCreated(c, campaign)
}

// Update handles PUT /api/campaigns/:id
func (cc *CampaignsController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req campaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	campaign, err := cc.store.GetByID(id)
	if errors.Is(err, campaigns.ErrCampaignNotFound) {
		respondNotFound(c, "campaign")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get campaign")
		return
	}

	if problems := req.toCampaign(campaign); problems != nil {
		respondValidation(c, "invalid_campaign", "campaign is invalid", problems)
		return
	}
	if err := cc.store.Update(campaign); err != nil {
		respondInternalError(c, err, "update campaign")
		return
	}
	c.JSON(http.StatusOK, campaign)
}

// Delete handles DELETE /api/campaigns/:id. Gifts keep the campaign name.
func (cc *CampaignsController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	campaign, err := cc.store.GetByID(id)
	if errors.Is(err, campaigns.ErrCampaignNotFound) {
		respondNotFound(c, "campaign")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get campaign")
		return
	}

	if err := cc.store.Delete(id); err != nil {
		respondInternalError(c, err, "delete campaign")
		return
	}
	if cc.audit != nil {
		cc.audit.LogDelete(auth.GetUserID(c), "campaign", campaign.Name, campaign.Name)
	}
	respondSuccess(c, "campaign deleted")
}
