package routes

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/taaskly/taaskly/internal/app/ports"
)

// adminUserID is the account allowed to manage communities.
const adminUserID = 1

// AdminRoutes manages community registrations.
type AdminRoutes struct {
	store ports.AppStore
}

// NewAdminRoutes constructs admin routes.
func NewAdminRoutes(store ports.AppStore) *AdminRoutes {
	return &AdminRoutes{store: store}
}

// RegisterRoutes registers admin endpoints.
func (a *AdminRoutes) RegisterRoutes(s *echo.Echo) {
	s.GET("/admin/communities", a.handleListCommunities, RequireAdmin)
	s.POST("/admin/communities", a.handleCreateCommunity, RequireAdmin)
	s.DELETE("/admin/communities/:id", a.handleDeleteCommunity, RequireAdmin)
}

type communityView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (a *AdminRoutes) handleListCommunities(c echo.Context) error {
	communities, err := a.store.ListCommunities(c.Request().Context())
	if err != nil {
		return err
	}
	views := make([]communityView, 0, len(communities))
	for _, community := range communities {
		views = append(views, communityView{ID: community.ID, Name: community.Name})
	}
	return c.JSON(http.StatusOK, views)
}

func (a *AdminRoutes) handleCreateCommunity(c echo.Context) error {
	var payload struct {
		Name        string `json:"name"`
		AccessToken string `json:"access_token"`
	}
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if payload.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}
	community, err := a.store.CreateCommunity(c.Request().Context(), ports.CreateCommunityInput{
		Name:        payload.Name,
		AccessToken: payload.AccessToken,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, communityView{ID: community.ID, Name: community.Name})
}

func (a *AdminRoutes) handleDeleteCommunity(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if err := a.store.DeleteCommunity(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
