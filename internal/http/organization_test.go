package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/givin-app/givin/internal/database/settings"
	"github.com/givin-app/givin/internal/settingsstore"
)

func organizationRouter(t *testing.T, audit *recordingSettings) *gin.Engine {
	db := setupTestDB(t)
	controller := NewOrganizationController(settingsstore.New(settings.NewRepository(db.DB)), audit)

	router := gin.New()
	router.GET("/api/organization", controller.Get)
	router.PUT("/api/organization", controller.Update)
	return router
}

func TestOrganizationController(t *testing.T) {
	audit := &recordingSettings{}
	router := organizationRouter(t, audit)

	w := performJSON(router, http.MethodGet, "/api/organization", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, settingsstore.OrganizationProfile{}, decode[settingsstore.OrganizationProfile](t, w))

	w = performJSON(router, http.MethodPut, "/api/organization", `{"name":"Helping Hands","ein":"12-3456789"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = performJSON(router, http.MethodPut, "/api/organization", `{"mission":"Feed everyone","onboarding_completed":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	profile := decode[settingsstore.OrganizationProfile](t, w)
	assert.Equal(t, "Helping Hands", profile.Name)
	assert.Equal(t, "Feed everyone", profile.Mission)
	assert.True(t, profile.OnboardingCompleted)
	assert.Len(t, audit.calls, 2)

	w = performJSON(router, http.MethodPut, "/api/organization", `{"ein":"nope"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "invalid_ein", decode[ErrorResponse](t, w).Code)

	w = performJSON(router, http.MethodPut, "/api/organization", `{"name":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "name_required", decode[ErrorResponse](t, w).Code)

	w = performJSON(router, http.MethodGet, "/api/organization", "")
	assert.Equal(t, "Helping Hands", decode[settingsstore.OrganizationProfile](t, w).Name, "failed updates are not saved")
}
