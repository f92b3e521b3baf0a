package handlers

import (
	"net/http"

	"github.com/anonto42/daoplus/backend/internal/middleware"
	"github.com/anonto42/daoplus/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	service *services.SocialGraphService
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(service *services.SocialGraphService) *LikeHandler {
	return &LikeHandler{service: service}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/likes", h.LikePost)
	g.DELETE("/posts/:post_id/likes", h.UnlikePost)
	g.GET("/posts/:post_id/likes/count", h.GetLikesCountForPost)
	g.GET("/posts/:post_id/likes/status", h.GetUserLikeStatusForPost)
}

// LikePost handles liking a post
func (h *LikeHandler) LikePost(c echo.Context) error {
	like, err := h.service.LikePost(c.Request().Context(), middleware.CurrentUser(c).UserID, c.Param("post_id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, like)
}

// UnlikePost handles unliking a post
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	if err := h.service.UnlikePost(c.Request().Context(), middleware.CurrentUser(c).UserID, c.Param("post_id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetLikesCountForPost retrieves the total number of likes for a specific post
func (h *LikeHandler) GetLikesCountForPost(c echo.Context) error {
	count, err := h.service.LikeCount(c.Request().Context(), c.Param("post_id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

// GetUserLikeStatusForPost reports whether the caller has liked the post
func (h *LikeHandler) GetUserLikeStatusForPost(c echo.Context) error {
	liked, err := h.service.HasLiked(c.Request().Context(), middleware.CurrentUser(c).UserID, c.Param("post_id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"liked": liked})
}
