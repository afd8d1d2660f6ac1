package auth

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/givin-app/givin/internal/config"
	"github.com/givin-app/givin/internal/entities"
)

// setupMutex serializes setup requests so two callers cannot both create
// the first admin.
var setupMutex sync.Mutex

// AuthController serves the /api/auth endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	config         config.Auth
	rateLimiter    *RateLimiter
	auditor        Auditor
}

// Auditor records sign-in activity. *audit.Service implements it.
type Auditor interface {
	LogAuth(userID uint, action string, ipAddr, userAgent string, success bool)
}

type loginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type setupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func NewAuthController(service *Service, sessionManager *SessionManager, cfg config.Auth) *AuthController {
	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		config:         cfg,
		rateLimiter: NewRateLimiter(RateLimitConfig{
			MaxAttempts:     cfg.MaxLoginAttempts,
			WindowDuration:  cfg.RateLimitWindow,
			LockoutDuration: cfg.LockoutDuration,
		}),
	}
}

// SetAuditor enables audit records for logins, logouts and setup.
func (ac *AuthController) SetAuditor(a Auditor) {
	ac.auditor = a
}

func (ac *AuthController) audit(c *gin.Context, userID uint, action string, success bool) {
	if ac.auditor != nil {
		ac.auditor.LogAuth(userID, action, c.ClientIP(), c.Request.UserAgent(), success)
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/api/auth")
	group.GET("/status", ac.Status)
	group.GET("/csrf", ac.CSRFToken)
	group.POST("/login", ac.Login)
	group.POST("/logout", ac.Logout)
	group.POST("/setup", ac.Setup)
	group.GET("/me", ac.Me)
	group.POST("/password", ac.ChangePassword)
}

// Stop releases the rate limiter's cleanup goroutine.
func (ac *AuthController) Stop() {
	ac.rateLimiter.Stop()
}

// Status tells clients which mode is active and whether setup is pending.
func (ac *AuthController) Status(c *gin.Context) {
	hasUsers, err := ac.service.HasUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check users"})
		return
	}

	resp := gin.H{
		"mode":           ac.service.GetAuthMode(),
		"setup_required": ac.service.IsAuthEnabled() && !hasUsers,
		"authenticated":  false,
	}
	if ac.sessionManager != nil {
		if data := ac.sessionManager.GetSessionData(c.Request); data != nil {
			resp["authenticated"] = true
			resp["session"] = data
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (ac *AuthController) CSRFToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"token": GetCSRFToken(c), "header": CSRFTokenHeader})
}

func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "login and password are required"})
		return
	}

	ip := c.ClientIP()
	if allowed, retryAfter := ac.rateLimiter.Allow(ip, req.Login); !allowed {
		c.Header("Retry-After", retryAfter.String())
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "too many login attempts",
			"retry_after": retryAfter.String(),
		})
		return
	}

	user, err := ac.service.Authenticate(req.Login, req.Password)
	if err != nil {
		ac.rateLimiter.RecordFailure(ip, req.Login)
		ac.audit(c, DefaultUserID, "login", false)

		switch {
		case errors.Is(err, ErrAccountLocked):
			c.JSON(http.StatusLocked, gin.H{"error": "account is locked, try again later"})
		case errors.Is(err, ErrEmailNotAllowed):
			c.JSON(http.StatusForbidden, gin.H{"error": "this account is not allowed to sign in"})
		case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrInvalidPassword):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid login or password"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		}
		return
	}
	ac.rateLimiter.RecordSuccess(ip, req.Login)

	if err := ac.startSession(c, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	ac.audit(c, user.ID, "login", true)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (ac *AuthController) Logout(c *gin.Context) {
	if ac.sessionManager != nil {
		userID := ac.sessionManager.GetUserID(c.Request)
		_ = ac.sessionManager.DestroySession(c.Request)
		if userID != DefaultUserID {
			ac.audit(c, userID, "logout", true)
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Setup creates the first admin account. It is only available while no users
// exist.
func (ac *AuthController) Setup(c *gin.Context) {
	setupMutex.Lock()
	defer setupMutex.Unlock()

	hasUsers, err := ac.service.HasUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check users"})
		return
	}
	if hasUsers {
		c.JSON(http.StatusConflict, gin.H{"error": "setup already completed"})
		return
	}

	var req setupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "passwords do not match"})
		return
	}

	user, err := ac.service.CreateUser(req.Username, req.Email, req.Password, entities.UserRoleAdmin)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserExists):
			c.JSON(http.StatusConflict, gin.H{"error": "setup already completed"})
		case errors.Is(err, ErrEmailNotAllowed):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case isValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		}
		return
	}

	if err := ac.startSession(c, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	ac.audit(c, user.ID, "setup", true)
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (ac *AuthController) Me(c *gin.Context) {
	userID := GetUserID(c)
	if userID == DefaultUserID {
		c.JSON(http.StatusOK, gin.H{"user": nil, "mode": ac.service.GetAuthMode()})
		return
	}
	user, err := ac.service.GetUserByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "mode": ac.service.GetAuthMode()})
}

func (ac *AuthController) ChangePassword(c *gin.Context) {
	userID := GetUserID(c)
	if userID == DefaultUserID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrAuthRequired.Error()})
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "old_password and new_password are required"})
		return
	}

	err := ac.service.ChangePassword(userID, req.OldPassword, req.NewPassword)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": "password changed"})
	case errors.Is(err, ErrInvalidPassword):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "current password is incorrect"})
	case isValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change password"})
	}
}

func (ac *AuthController) startSession(c *gin.Context, user *entities.User) error {
	if ac.sessionManager == nil {
		return nil
	}
	return ac.sessionManager.CreateSession(c.Request, user)
}

func isValidationError(err error) bool {
	for _, target := range []error{
		ErrPasswordTooShort, ErrPasswordTooLong, ErrPasswordRequired,
		ErrUsernameRequired, ErrUsernameInvalid, ErrEmailRequired, ErrEmailInvalid,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
