package routes

import (
	"encoding/gob"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/facebook"

	"github.com/taaskly/taaskly/internal/app/ports"
)

const (
	authSessionName      = "taaskly-auth"
	authSessionUserIDKey = "userID"
	workplaceProvider    = "facebook"
	gothSessionName      = "_gothic_session"
)

// AuthConfig configures session and Workplace OAuth authentication.
type AuthConfig struct {
	SessionKey         string
	WorkplaceAppID     string
	WorkplaceAppSecret string
	WorkplaceCallback  string
	SecureCookies      bool
}

// AuthUser is the authenticated user stored in session and context.
type AuthUser struct {
	ID          int64
	Username    string
	WorkplaceID string
}

func init() {
	gob.Register(AuthUser{})
	gob.Register(map[string]any{})
}

// ConfigureAuth initializes the session store and the Workplace OAuth
// provider.
func ConfigureAuth(config AuthConfig) {
	store := sessions.NewCookieStore([]byte(config.SessionKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int((7 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	gothic.Store = store

	goth.UseProviders(
		facebook.New(
			config.WorkplaceAppID,
			config.WorkplaceAppSecret,
			config.WorkplaceCallback,
			"email",
		),
	)
}

// AuthRoutes registers authentication endpoints.
type AuthRoutes struct {
	store ports.AppStore
}

// NewAuthRoutes constructs auth routes.
func NewAuthRoutes(store ports.AppStore) *AuthRoutes {
	return &AuthRoutes{store: store}
}

// RegisterRoutes registers authentication routes on the server.
func (a *AuthRoutes) RegisterRoutes(s *echo.Echo) {
	s.GET("/logout", a.handleLogout)
	s.GET("/auth/:provider", a.handleAuthBegin)
	s.GET("/auth/:provider/callback", a.handleAuthCallback)
}
