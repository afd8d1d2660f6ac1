package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/givin-app/givin/internal/config"
	"github.com/givin-app/givin/internal/database/users"
	"github.com/givin-app/givin/internal/entities"
)

func setupTestRouter(t *testing.T, cfg config.Auth) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get SQL DB: %v", err)
	}

	cfg.BcryptCost = 4
	cfg.SessionLifetime = time.Hour
	svc := NewService(users.NewRepository(db), cfg)

	sm, err := NewSessionManager(sqlDB, cfg)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}

	controller := NewAuthController(svc, sm, cfg)
	t.Cleanup(controller.Stop)

	router := gin.New()
	router.Use(sm.SessionLoadSave())
	router.Use(NewMiddleware(svc, sm, cfg).Handler())
	controller.RegisterRoutes(router)
	router.GET("/api/donors", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "actor": Actor(c)})
	})

	return router, svc
}

func doJSON(router http.Handler, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIntegration_NoAuthMode(t *testing.T) {
	router, _ := setupTestRouter(t, config.Auth{Mode: config.AuthModeNone})

	w := doJSON(router, http.MethodGet, "/api/donors", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"user_id":0`) || !strings.Contains(w.Body.String(), `"actor":"anonymous"`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestIntegration_ProtectedWithoutSession(t *testing.T) {
	router, _ := setupTestRouter(t, config.Auth{Mode: config.AuthModeLocal})

	w := doJSON(router, http.MethodGet, "/api/donors", "", nil)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestIntegration_SetupLoginLogout(t *testing.T) {
	router, _ := setupTestRouter(t, config.Auth{Mode: config.AuthModeLocal})

	w := doJSON(router, http.MethodGet, "/api/auth/status", "", nil)
	if !strings.Contains(w.Body.String(), `"setup_required":true`) {
		t.Fatalf("expected setup to be required, got %s", w.Body.String())
	}

	w = doJSON(router, http.MethodPost, "/api/auth/setup",
		`{"username":"admin","email":"admin@example.org","password":"`+testPassword+`","confirm_password":"`+testPassword+`"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("setup: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(router, http.MethodPost, "/api/auth/setup",
		`{"username":"other","email":"other@example.org","password":"`+testPassword+`","confirm_password":"`+testPassword+`"}`, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("second setup: expected 409, got %d", w.Code)
	}

	w = doJSON(router, http.MethodPost, "/api/auth/login", `{"login":"admin@example.org","password":"`+testPassword+`"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie")
	}

	w = doJSON(router, http.MethodGet, "/api/donors", "", cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("expected authenticated access, got %d", w.Code)
	}
	var body struct {
		UserID uint   `json:"user_id"`
		Actor  string `json:"actor"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.UserID == 0 || body.Actor != "admin@example.org" {
		t.Errorf("unexpected identity %+v", body)
	}

	w = doJSON(router, http.MethodPost, "/api/auth/logout", "", cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", w.Code)
	}

	w = doJSON(router, http.MethodGet, "/api/donors", "", cookies)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected session to be destroyed, got %d", w.Code)
	}
}

func TestIntegration_LoginFailures(t *testing.T) {
	router, svc := setupTestRouter(t, config.Auth{Mode: config.AuthModeLocal, MaxLoginAttempts: 2})
	if _, err := svc.CreateUser("admin", "admin@example.org", testPassword, entities.UserRoleAdmin); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	w := doJSON(router, http.MethodPost, "/api/auth/login", `{"login":"admin"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing password: expected 400, got %d", w.Code)
	}

	for i := 0; i < 2; i++ {
		w = doJSON(router, http.MethodPost, "/api/auth/login", `{"login":"admin","password":"wrong-password-123"}`, nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, w.Code)
		}
	}

	w = doJSON(router, http.MethodPost, "/api/auth/login", `{"login":"admin","password":"`+testPassword+`"}`, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after limit, got %d", w.Code)
	}
}

func TestMiddleware_RequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMiddleware(nil, nil, config.Auth{Mode: config.AuthModeLocal})

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(ContextKeyRole, entities.UserRole(c.GetHeader("X-Role")))
		c.Next()
	})
	router.POST("/edit", m.RequireRole(entities.UserRoleAdmin, entities.UserRoleEditor), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for role, want := range map[string]int{"admin": 204, "editor": 204, "viewer": 403} {
		req := httptest.NewRequest(http.MethodPost, "/edit", nil)
		req.Header.Set("X-Role", role)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != want {
			t.Errorf("role %s: expected %d, got %d", role, want, w.Code)
		}
	}
}

func TestCSRFMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CSRFMiddleware([]byte(strings.Repeat("k", 32)), false))
	router.GET("/api/auth/csrf", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"token": GetCSRFToken(c)})
	})
	router.POST("/api/donors", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	w := doJSON(router, http.MethodPost, "/api/donors", `{}`, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without token, got %d", w.Code)
	}

	w = doJSON(router, http.MethodGet, "/api/auth/csrf", "", nil)
	var body struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Token == "" {
		t.Fatalf("expected a token, got %s", w.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/api/donors", strings.NewReader(`{}`))
	req.Header.Set(CSRFTokenHeader, body.Token)
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201 with token, got %d", rec.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SecurityHeadersMiddleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}
}

type recordingAuditor struct {
	actions []string
}

func (r *recordingAuditor) LogAuth(userID uint, action string, ipAddr, userAgent string, success bool) {
	status := "ok"
	if !success {
		status = "failed"
	}
	r.actions = append(r.actions, action+":"+status)
}

func TestAuthController_Audit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get SQL DB: %v", err)
	}
	cfg := config.Auth{Mode: config.AuthModeLocal, BcryptCost: 4, SessionLifetime: time.Hour}
	svc := NewService(users.NewRepository(db), cfg)
	sm, err := NewSessionManager(sqlDB, cfg)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}

	auditor := &recordingAuditor{}
	controller := NewAuthController(svc, sm, cfg)
	controller.SetAuditor(auditor)
	t.Cleanup(controller.Stop)

	router := gin.New()
	router.Use(sm.SessionLoadSave())
	controller.RegisterRoutes(router)

	w := doJSON(router, http.MethodPost, "/api/auth/setup",
		`{"username":"admin","email":"admin@example.org","password":"`+testPassword+`","confirm_password":"`+testPassword+`"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("setup: expected 201, got %d", w.Code)
	}
	doJSON(router, http.MethodPost, "/api/auth/login", `{"login":"admin","password":"wrong-password-123"}`, nil)
	w = doJSON(router, http.MethodPost, "/api/auth/login", `{"login":"admin","password":"`+testPassword+`"}`, nil)
	doJSON(router, http.MethodPost, "/api/auth/logout", "", w.Result().Cookies())

	expected := []string{"setup:ok", "login:failed", "login:ok", "logout:ok"}
	if strings.Join(auditor.actions, ",") != strings.Join(expected, ",") {
		t.Errorf("expected %v, got %v", expected, auditor.actions)
	}
}
