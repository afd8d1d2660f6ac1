// Package auth provides authentication and authorization for the application.
//
// It supports two authentication modes:
//   - "none": No authentication required (default), all requests use a default user ID
//   - "local": Local staff accounts with session cookies
//
// # Configuration
//
// Set AUTH_MODE environment variable to select the mode:
//
//	AUTH_MODE=none   # Default, no auth required
//	AUTH_MODE=local  # Requires user creation and login
//
// For local mode, additional configuration:
//
//	AUTH_ALLOWED_EMAILS=a@org.org,b@org.org  # Empty admits any email
//	AUTH_SESSION_SECRET=<base64-32-bytes>    # Auto-generated if empty
//	AUTH_SESSION_LIFETIME=24h                # Session duration
//	AUTH_BCRYPT_COST=12                      # bcrypt cost factor
//	AUTH_SECURE_COOKIES=true                 # HTTPS-only cookies
//
// # Usage
//
// Initialize authentication in entrypoint:
//
//	authService := auth.NewService(users.NewRepository(db.DB), cfg.Auth)
//	authMiddleware := auth.NewMiddleware(authService, sessionManager, cfg.Auth)
//	router.Use(authMiddleware.Handler())
//
// Extract user in handlers:
//
//	userID := auth.GetUserID(c)  // Returns DefaultUserID in "none" mode
package auth
