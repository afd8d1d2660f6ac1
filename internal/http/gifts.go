package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/givin-app/givin/internal/auth"
	"github.com/givin-app/givin/internal/database/gifts"
	"github.com/givin-app/givin/internal/entities"
	"github.com/givin-app/givin/internal/importers"
)

// DefaultCampaign files manual gifts entered without a campaign.
const DefaultCampaign = "General Fund"

// GiftStore defines database operations for gifts.
type GiftStore interface {
	GiftLister
	Create(gift *entities.Gift) error
	GetByID(id string) (*entities.Gift, error)
	Delete(id string) error
}

// CampaignEnsurer creates campaign rows for new campaign names.
type CampaignEnsurer interface {
	EnsureExist(names []string) (int, error)
}

type GiftsController struct {
	store     GiftStore
	campaigns CampaignEnsurer
	audit     DeleteLogger
}

func NewGiftsController(store GiftStore, campaigns CampaignEnsurer, audit DeleteLogger) *GiftsController {
	return &GiftsController{store: store, campaigns: campaigns, audit: audit}
}

type giftRequest struct {
	DonorID       string          `json:"donor_id"`
	Amount        decimal.Decimal `json:"amount"`
	GiftDate      string          `json:"gift_date"`
	Campaign      string          `json:"campaign"`
	PaymentMethod string          `json:"payment_method"`
	IsRecurring   bool            `json:"is_recurring"`
	ReceiptNumber string          `json:"receipt_number"`
}

// List handles GET /api/gifts?donor_id=&campaign=&from=&to=&limit=&offset=
func (gc *GiftsController) List(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}
	from, ok := parseDateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseDateQuery(c, "to")
	if !ok {
		return
	}
	if to != nil {
		// inclusive of the whole day
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}

	list, total, err := gc.store.List(gifts.Filter{
		DonorID:  c.Query("donor_id"),
		Campaign: c.Query("campaign"),
		From:     from,
		To:       to,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		respondInternalError(c, err, "list gifts")
		return
	}
	respondPage(c, list, total, limit, offset)
}

// Get handles GET /api/gifts/:id
func (gc *GiftsController) Get(c *gin.Context) {
	gift, err := gc.store.GetByID(c.Param("id"))
	if errors.Is(err, gifts.ErrGiftNotFound) {
		respondNotFound(c, "gift")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get gift")
		return
	}
	c.JSON(http.StatusOK, gift)
}

// Create handles POST /api/gifts for manually entered gifts. Dates use the
// same formats as imports.
func (gc *GiftsController) Create(c *gin.Context) {
	var req giftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	problems := make(map[string]string)
	if !req.Amount.IsPositive() {
		problems["amount"] = "amount must be a positive number"
	}
	var giftDate *time.Time
	if raw := strings.TrimSpace(req.GiftDate); raw != "" {
		d, err := importers.ParseDate(raw)
		if err != nil {
			problems["gift_date"] = "unrecognized date"
		} else {
			giftDate = &d
		}
	}
	if len(problems) > 0 {
		respondValidation(c, "invalid_gift", "gift is invalid", problems)
		return
	}

	campaign := strings.TrimSpace(req.Campaign)
	if campaign == "" {
		campaign = DefaultCampaign
	}

	gift := entities.Gift{
		DonorID:       strings.TrimSpace(req.DonorID),
		Amount:        req.Amount.Round(2),
		GiftDate:      giftDate,
		Campaign:      campaign,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		IsRecurring:   req.IsRecurring,
		ReceiptNumber: strings.TrimSpace(req.ReceiptNumber),
		Source:        gifts.SourceManual,
	}
	if err := gc.store.Create(&gift); err != nil {
		respondInternalError(c, err, "create gift")
		return
	}
	if gc.campaigns != nil {
		if _, err := gc.campaigns.EnsureExist([]string{campaign}); err != nil {
			respondInternalError(c, err, "ensure campaign")
			return
		}
	}
	respondCreated(c, gift)
}

// Delete handles DELETE /api/gifts/:id
func (gc *GiftsController) Delete(c *gin.Context) {
	id := c.Param("id")
	gift, err := gc.store.GetByID(id)
	if errors.Is(err, gifts.ErrGiftNotFound) {
		respondNotFound(c, "gift")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get gift")
		return
	}

	if err := gc.store.Delete(id); err != nil {
		respondInternalError(c, err, "delete gift")
		return
	}
	if gc.audit != nil {
		gc.audit.LogDelete(auth.GetUserID(c), "gift", id, gift.Amount.StringFixed(2)+" to "+gift.Campaign)
	}
	respondSuccess(c, "gift deleted")
}
