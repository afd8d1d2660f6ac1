package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/givin-app/givin/internal/auth"
	"github.com/givin-app/givin/internal/database/donors"
	"github.com/givin-app/givin/internal/database/gifts"
	"github.com/givin-app/givin/internal/entities"
	"github.com/givin-app/givin/internal/importers"
)

// DonorStore defines database operations for donors.
type DonorStore interface {
	Create(donor *entities.Donor) error
	GetByID(id string) (*entities.Donor, error)
	List(f donors.Filter) ([]entities.Donor, int64, error)
	Update(donor *entities.Donor) error
	Delete(id string) error
}

// GiftLister lists gifts with donor names.
type GiftLister interface {
	List(f gifts.Filter) ([]entities.GiftSummary, int64, error)
}

// DeleteLogger records deletions in the audit trail.
type DeleteLogger interface {
	LogDelete(userID uint, entityType, entityID, entityName string)
}

type DonorsController struct {
	store DonorStore
	gifts GiftLister
	audit DeleteLogger
}

func NewDonorsController(store DonorStore, gifts GiftLister, audit DeleteLogger) *DonorsController {
	return &DonorsController{store: store, gifts: gifts, audit: audit}
}

// donorRequest is the body of create and update calls.
type donorRequest struct {
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	Email     string            `json:"email"`
	Phone     string            `json:"phone"`
	Address   string            `json:"address"`
	City      string            `json:"city"`
	State     string            `json:"state"`
	ZipCode   string            `json:"zip_code"`
	Country   string            `json:"country"`
	Notes     string            `json:"notes"`
	Metadata  entities.Metadata `json:"metadata"`
}

func (r donorRequest) validate() map[string]string {
	problems := make(map[string]string)
	if strings.TrimSpace(r.FirstName) == "" {
		problems["first_name"] = "first name is required"
	}
	if strings.TrimSpace(r.LastName) == "" {
		problems["last_name"] = "last name is required"
	}
	if email := strings.TrimSpace(r.Email); email != "" && !importers.ValidEmail(email) {
		problems["email"] = "invalid email address"
	}
	return problems
}

func (r donorRequest) apply(d *entities.Donor) {
	d.FirstName = strings.TrimSpace(r.FirstName)
	d.LastName = strings.TrimSpace(r.LastName)
	d.Email = strings.TrimSpace(r.Email)
	d.Phone = strings.TrimSpace(r.Phone)
	d.Address = strings.TrimSpace(r.Address)
	d.City = strings.TrimSpace(r.City)
	d.State = strings.TrimSpace(r.State)
	d.ZipCode = strings.TrimSpace(r.ZipCode)
	d.Country = strings.TrimSpace(r.Country)
	d.Notes = r.Notes
	d.Metadata = r.Metadata
}

func (dc *DonorsController) bind(c *gin.Context) (donorRequest, bool) {
	var req donorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return req, false
	}
	if problems := req.validate(); len(problems) > 0 {
		respondValidation(c, "invalid_donor", "donor is invalid", problems)
		return req, false
	}
	return req, true
}

// List handles GET /api/donors?q=&limit=&offset=
func (dc *DonorsController) List(c *gin.Context) {
	limit, offset, ok := parsePagination(c)
	if !ok {
		return
	}

	list, total, err := dc.store.List(donors.Filter{Query: c.Query("q"), Limit: limit, Offset: offset})
	if err != nil {
		respondInternalError(c, err, "list donors")
		return
	}
	respondPage(c, list, total, limit, offset)
}

// Get handles GET /api/donors/:id and includes the donor's latest gifts.
func (dc *DonorsController) Get(c *gin.Context) {
	donor, err := dc.store.GetByID(c.Param("id"))
	if errors.Is(err, donors.ErrDonorNotFound) {
		respondNotFound(c, "donor")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get donor")
		return
	}

	recent := []entities.GiftSummary{}
	var giftCount int64
	if dc.gifts != nil {
		recent, giftCount, err = dc.gifts.List(gifts.Filter{DonorID: donor.ID, Limit: 10})
		if err != nil {
			respondInternalError(c, err, "list donor gifts")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"donor":        donor,
		"recent_gifts": recent,
		"gift_count":   giftCount,
	})
}

// Create handles POST /api/donors
func (dc *DonorsController) Create(c *gin.Context) {
	req, ok := dc.bind(c)
	if !ok {
		return
	}

	var donor entities.Donor
	req.apply(&donor)
	if err := dc.store.Create(&donor); err != nil {
		respondInternalError(c, err, "create donor")
		return
	}
	respondCreated(c, donor)
}

// Update handles PUT /api/donors/:id
func (dc *DonorsController) Update(c *gin.Context) {
	req, ok := dc.bind(c)
	if !ok {
		return
	}

	donor, err := dc.store.GetByID(c.Param("id"))
	if errors.Is(err, donors.ErrDonorNotFound) {
		respondNotFound(c, "donor")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get donor")
		return
	}

	req.apply(donor)
	if err := dc.store.Update(donor); err != nil {
		respondInternalError(c, err, "update donor")
		return
	}
	c.JSON(http.StatusOK, donor)
}

// Delete handles DELETE /api/donors/:id. Gifts are kept.
func (dc *DonorsController) Delete(c *gin.Context) {
	id := c.Param("id")
	donor, err := dc.store.GetByID(id)
	if errors.Is(err, donors.ErrDonorNotFound) {
		respondNotFound(c, "donor")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get donor")
		return
	}

	if err := dc.store.Delete(id); err != nil {
		respondInternalError(c, err, "delete donor")
		return
	}

	if dc.audit != nil {
		dc.audit.LogDelete(auth.GetUserID(c), "donor", id, donor.DisplayName())
	}
	respondSuccess(c, "donor deleted")
}
