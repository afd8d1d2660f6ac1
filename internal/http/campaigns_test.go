package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/givin-app/givin/internal/database"
	"github.com/givin-app/givin/internal/entities"
)

func campaignsRouter(db *database.Database, deletes *recordingDeletes) *gin.Engine {
	controller := NewCampaignsController(db.Campaigns, deletes)
	router := gin.New()
	router.GET("/api/campaigns", controller.List)
	router.POST("/api/campaigns", controller.Create)
	router.GET("/api/campaigns/:id", controller.Get)
	router.PUT("/api/campaigns/:id", controller.Update)
	router.DELETE("/api/campaigns/:id", controller.Delete)
	return router
}

func TestCampaignsController_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	deletes := &recordingDeletes{}
	router := campaignsRouter(db, deletes)

	w := performJSON(router, http.MethodPost, "/api/campaigns",
		`{"name":"Spring Gala","goal":"5000","start_date":"2024-03-01","end_date":"2024-05-31"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[entities.Campaign](t, w)
	assert.True(t, created.Active)
	assert.Equal(t, "5000", created.Goal.String())

	require.NoError(t, db.Gifts.Create(&entities.Gift{Amount: decimal.NewFromInt(120), Campaign: "Spring Gala"}))

	w = performJSON(router, http.MethodGet, "/api/campaigns", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Campaigns []entities.Campaign `json:"campaigns"`
	}](t, w)
	var gala *entities.Campaign
	for i := range list.Campaigns {
		if list.Campaigns[i].Name == "Spring Gala" {
			gala = &list.Campaigns[i]
		}
	}
	require.NotNil(t, gala)
	assert.Equal(t, "120", gala.Raised.String())

	path := fmt.Sprintf("/api/campaigns/%d", created.ID)
	w = performJSON(router, http.MethodPut, path, `{"name":"Spring Gala","goal":"6000","active":false}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[entities.Campaign](t, w)
	assert.False(t, updated.Active)
	assert.Equal(t, "6000", updated.Goal.String())
	assert.Nil(t, updated.StartDate)

	w = performJSON(router, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "campaign", deletes.calls[0].entityType)

	w = performJSON(router, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCampaignsController_Validation(t *testing.T) {
	db := setupTestDB(t)
	router := campaignsRouter(db, &recordingDeletes{})

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing name", `{"goal":"10"}`, "name"},
		{"negative goal", `{"name":"x","goal":"-1"}`, "goal"},
		{"bad date", `{"name":"x","start_date":"March"}`, "start_date"},
		{"end before start", `{"name":"x","start_date":"2024-05-01","end_date":"2024-04-01"}`, "end_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(router, http.MethodPost, "/api/campaigns", tt.body)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			resp := decode[struct {
				Details map[string]string `json:"details"`
			}](t, w)
			assert.Contains(t, resp.Details, tt.field)
		})
	}

	w := performJSON(router, http.MethodGet, "/api/campaigns/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
