package handlers

import (
	"net/http"

	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// ModerationHandler serves the moderator-only routes. The group it is
// registered on must require the moderator role.
type ModerationHandler struct {
	service *services.SocialGraphService
}

func NewModerationHandler(service *services.SocialGraphService) *ModerationHandler {
	return &ModerationHandler{service: service}
}

func (h *ModerationHandler) RegisterModerationRoutes(g *echo.Group) {
	g.GET("/posts/flagged", h.GetFlaggedPosts)
	g.POST("/posts/:post_id/moderate", h.ModeratePost)
}

func (h *ModerationHandler) GetFlaggedPosts(c echo.Context) error {
	posts, err := h.service.ListFlaggedPosts(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

// ModeratePost approves or deletes a post
func (h *ModerationHandler) ModeratePost(c echo.Context) error {
	var req models.ModerateRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	postID := c.Param("post_id")
	if err := h.service.Moderate(c.Request().Context(), postID, req.Action); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"post_id": postID, "action": req.Action})
}
