package handlers

import (
	"net/http"

	"github.com/anonto42/daoplus/backend/internal/middleware"
	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	service *services.SocialGraphService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(service *services.SocialGraphService) *CommentHandler {
	return &CommentHandler{service: service}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
	g.GET("/posts/:post_id/comments", h.GetCommentsForPost)
	g.PUT("/comments/:comment_id", h.UpdateComment)
	g.DELETE("/comments/:comment_id", h.DeleteComment)
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	comment, err := h.service.CreateComment(c.Request().Context(), middleware.CurrentUser(c).UserID, c.Param("post_id"), req.Content)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, comment)
}

// GetCommentsForPost lists a post's comments, oldest first
func (h *CommentHandler) GetCommentsForPost(c echo.Context) error {
	comments, err := h.service.ListComments(c.Request().Context(), c.Param("post_id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, comments)
}

// UpdateComment updates an existing comment
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	var req models.UpdateCommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	comment, err := h.service.UpdateComment(c.Request().Context(), middleware.CurrentUser(c).UserID, c.Param("comment_id"), req.Content)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, comment)
}

// DeleteComment deletes a comment
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	if err := h.service.DeleteComment(c.Request().Context(), middleware.CurrentUser(c).UserID, c.Param("comment_id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
