package routes

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/markbates/goth/gothic"
)

// GetAuthUser returns the authenticated user from request context.
func GetAuthUser(c echo.Context) (AuthUser, bool) {
	value := c.Get("authUser")
	if value == nil {
		return AuthUser{}, false
	}
	user, ok := value.(AuthUser)
	if !ok {
		return AuthUser{}, false
	}
	return user, true
}

// authUserFromSession reads the authenticated user out of the cookie
// session.
func authUserFromSession(c echo.Context) (AuthUser, bool) {
	session, err := gothic.Store.Get(c.Request(), authSessionName)
	if err != nil {
		if isInvalidSecureCookieError(err) {
			clearSessionCookie(c, authSessionName)
			clearSessionCookie(c, gothSessionName)
		}
		return AuthUser{}, false
	}
	value, ok := session.Values["user"]
	if !ok || value == nil {
		return AuthUser{}, false
	}
	user, ok := value.(AuthUser)
	if !ok || user.ID <= 0 {
		return AuthUser{}, false
	}
	return user, true
}

func setSessionAuthUser(session *sessions.Session, user AuthUser) {
	session.Values["user"] = user
	session.Values[authSessionUserIDKey] = user.ID
}

// isInvalidSecureCookieError detects stale cookies signed with an old
// session key.
func isInvalidSecureCookieError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "securecookie")
}

func clearSessionCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
