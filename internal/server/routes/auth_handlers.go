package routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/markbates/goth/gothic"

	"github.com/taaskly/taaskly/internal/app/ports"
)

func (a *AuthRoutes) handleLogout(c echo.Context) error {
	session, err := gothic.Store.Get(c.Request(), authSessionName)
	if err != nil {
		if isInvalidSecureCookieError(err) {
			clearSessionCookie(c, authSessionName)
			clearSessionCookie(c, gothSessionName)
			return c.NoContent(http.StatusNoContent)
		}
		return err
	}
	delete(session.Values, authSessionUserIDKey)
	delete(session.Values, "user")
	session.Options.MaxAge = -1
	if err := session.Save(c.Request(), c.Response()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *AuthRoutes) handleAuthBegin(c echo.Context) error {
	provider := c.Param("provider")
	if provider != workplaceProvider {
		return c.NoContent(http.StatusNotFound)
	}
	request := addProviderParam(c.Request(), provider)
	gothic.BeginAuthHandler(c.Response(), request)
	return nil
}

func (a *AuthRoutes) handleAuthCallback(c echo.Context) error {
	provider := c.Param("provider")
	if provider != workplaceProvider {
		return c.NoContent(http.StatusNotFound)
	}
	request := addProviderParam(c.Request(), provider)
	user, err := gothic.CompleteUserAuth(c.Response(), request)
	if err != nil {
		if isInvalidSecureCookieError(err) {
			clearSessionCookie(c, authSessionName)
			clearSessionCookie(c, gothSessionName)
			return c.NoContent(http.StatusUnauthorized)
		}
		return err
	}

	username := strings.TrimSpace(user.NickName)
	if username == "" {
		username = strings.TrimSpace(user.Name)
	}
	if username == "" {
		username = "workplace-" + user.UserID
	}

	localUser, err := a.store.UpsertUser(request.Context(), ports.UpsertUserInput{
		Username:    username,
		WorkplaceID: user.UserID,
	})
	if err != nil {
		return err
	}

	session, err := gothic.Store.Get(request, authSessionName)
	if err != nil {
		if isInvalidSecureCookieError(err) {
			clearSessionCookie(c, authSessionName)
			clearSessionCookie(c, gothSessionName)
			return c.NoContent(http.StatusUnauthorized)
		}
		return err
	}
	setSessionAuthUser(session, AuthUser{
		ID:          localUser.ID,
		Username:    localUser.Username,
		WorkplaceID: localUser.WorkplaceID,
	})
	if err := session.Save(request, c.Response()); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/")
}

// addProviderParam makes the goth provider visible to gothic, which
// reads it from the query string.
func addProviderParam(r *http.Request, provider string) *http.Request {
	query := r.URL.Query()
	query.Set("provider", provider)
	request := r.Clone(r.Context())
	request.URL.RawQuery = query.Encode()
	return request
}
