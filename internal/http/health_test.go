package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthRouter(controller *HealthController) *gin.Engine {
	router := gin.New()
	router.GET("/health", controller.Status)
	router.GET("/ping", controller.Ping)
	return router
}

func TestHealthController_Status(t *testing.T) {
	t.Run("returns healthy when database is connected", func(t *testing.T) {
		db := setupTestDB(t)
		router := healthRouter(NewHealthController(db, "1.0.0"))

		w := performJSON(router, http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusOK, w.Code)
		response := decode[HealthResponse](t, w)
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "1.0.0", response.Version)
		assert.Equal(t, "ok", response.Checks["database"])
		assert.Contains(t, response.Time, "T")
		require.NotNil(t, response.Stats)
		assert.Equal(t, int64(1), response.Stats.Campaigns, "General Fund is seeded")
	})

	t.Run("returns healthy when database is nil", func(t *testing.T) {
		router := healthRouter(NewHealthController(nil, "1.0.0"))

		w := performJSON(router, http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusOK, w.Code)
		response := decode[HealthResponse](t, w)
		assert.Equal(t, "not configured", response.Checks["database"])
		assert.Nil(t, response.Stats)
	})

	t.Run("returns unhealthy when database connection is closed", func(t *testing.T) {
		db := setupTestDB(t)
		require.NoError(t, db.Close())
		router := healthRouter(NewHealthController(db, "1.0.0"))

		w := performJSON(router, http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		response := decode[HealthResponse](t, w)
		assert.Equal(t, "unhealthy", response.Status)
		assert.Contains(t, response.Checks["database"], "error")
	})
}

func TestHealthController_Ping(t *testing.T) {
	router := healthRouter(NewHealthController(nil, ""))

	w := performJSON(router, http.MethodGet, "/ping", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}
