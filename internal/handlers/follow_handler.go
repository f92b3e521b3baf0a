package handlers

import (
	"net/http"

	"github.com/anonto42/daoplus/backend/internal/middleware"
	"github.com/anonto42/daoplus/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles HTTP requests related to follows
type FollowHandler struct {
	service *services.SocialGraphService
}

func NewFollowHandler(service *services.SocialGraphService) *FollowHandler {
	return &FollowHandler{service: service}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
	g.GET("/users/:id/follow/status", h.GetFollowStatus)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
}

// FollowUser follows a user
func (h *FollowHandler) FollowUser(c echo.Context) error {
	follow, err := h.service.FollowUser(c.Request().Context(), middleware.CurrentUser(c).UserID, c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, follow)
}

// UnfollowUser unfollows a user
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	if err := h.service.UnfollowUser(c.Request().Context(), middleware.CurrentUser(c).UserID, c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *FollowHandler) GetFollowStatus(c echo.Context) error {
	following, err := h.service.IsFollowing(c.Request().Context(), middleware.CurrentUser(c).UserID, c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"following": following})
}

func (h *FollowHandler) GetFollowers(c echo.Context) error {
	users, err := h.service.ListFollowers(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *FollowHandler) GetFollowing(c echo.Context) error {
	users, err := h.service.ListFollowing(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}
