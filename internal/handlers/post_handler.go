package handlers

import (
	"net/http"

	"github.com/anonto42/daoplus/backend/internal/middleware"
	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	service *services.SocialGraphService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(service *services.SocialGraphService) *PostHandler {
	return &PostHandler{service: service}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.GetPosts)
	g.GET("/posts/search", h.SearchPosts)
	g.GET("/posts/:post_id", h.GetPost)
	g.PUT("/posts/:post_id", h.UpdatePost)
	g.DELETE("/posts/:post_id", h.DeletePost)
	g.POST("/posts/:post_id/flag", h.FlagPost)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	post, err := h.service.CreatePost(c.Request().Context(), middleware.CurrentUser(c).UserID, req.Title, req.Content)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.service.GetPost(c.Request().Context(), c.Param("post_id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// GetPosts lists all posts, newest first
func (h *PostHandler) GetPosts(c echo.Context) error {
	posts, err := h.service.ListPosts(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

// SearchPosts matches ?q= against titles and contents
func (h *PostHandler) SearchPosts(c echo.Context) error {
	posts, err := h.service.SearchPosts(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

// UpdatePost updates an existing post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	var req models.UpdatePostRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	post, err := h.service.UpdatePost(c.Request().Context(), middleware.CurrentUser(c).UserID, c.Param("post_id"), req.Title, req.Content)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post
func (h *PostHandler) DeletePost(c echo.Context) error {
	if err := h.service.DeletePost(c.Request().Context(), middleware.CurrentUser(c).UserID, c.Param("post_id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// FlagPost reports a post for moderation
func (h *PostHandler) FlagPost(c echo.Context) error {
	if err := h.service.FlagPost(c.Request().Context(), c.Param("post_id")); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"flagged": true})
}
