package handlers

import (
	"net/http"

	"github.com/anonto42/daoplus/backend/internal/middleware"
	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	service *services.SocialGraphService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(service *services.SocialGraphService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.PUT("/notifications/:id", h.UpdateNotification)
	g.DELETE("/notifications/:id", h.DeleteNotification)
}

// GetNotifications lists the caller's notifications, newest first
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	notifications, err := h.service.Notifications(c.Request().Context(), middleware.CurrentUser(c).UserID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, notifications)
}

func (h *NotificationHandler) UpdateNotification(c echo.Context) error {
	var req models.UpdateNotificationRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	notification := &models.Notification{
		ID:         c.Param("id"),
		Action:     req.Action,
		TargetID:   req.TargetID,
		TargetType: req.TargetType,
	}
	if err := h.service.Notifier().Update(c.Request().Context(), middleware.CurrentUser(c).UserID, notification); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, notification)
}

func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	if err := h.service.Notifier().Delete(c.Request().Context(), middleware.CurrentUser(c).UserID, c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
