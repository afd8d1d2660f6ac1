package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/givin-app/givin/internal/auth"
	"github.com/givin-app/givin/internal/settingsstore"
)

// OrganizationStore persists the organization profile.
type OrganizationStore interface {
	GetOrganization() (settingsstore.OrganizationProfile, error)
	UpdateOrganization(update settingsstore.OrganizationUpdate) (settingsstore.OrganizationProfile, error)
}

type OrganizationController struct {
	store OrganizationStore
	audit SettingsLogger
}

func NewOrganizationController(store OrganizationStore, audit SettingsLogger) *OrganizationController {
	return &OrganizationController{store: store, audit: audit}
}

// Get handles GET /api/organization
func (oc *OrganizationController) Get(c *gin.Context) {
	profile, err := oc.store.GetOrganization()
	if err != nil {
		respondInternalError(c, err, "get organization")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Update handles PUT /api/organization. Omitted fields keep their values.
func (oc *OrganizationController) Update(c *gin.Context) {
	var req settingsstore.OrganizationUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	profile, err := oc.store.UpdateOrganization(req)
	switch {
	case errors.Is(err, settingsstore.ErrInvalidEIN):
		respondValidation(c, "invalid_ein", err.Error(), gin.H{"ein": "expected 12-3456789"})
		return
	case errors.Is(err, settingsstore.ErrOrganizationNameRequired):
		respondValidation(c, "name_required", err.Error(), gin.H{"name": "required to complete onboarding"})
		return
	case err != nil:
		respondInternalError(c, err, "update organization")
		return
	}

	if oc.audit != nil {
		oc.audit.LogSettings(auth.GetUserID(c), "organization", "updated organization profile for "+profile.Name)
	}
	c.JSON(http.StatusOK, profile)
}
