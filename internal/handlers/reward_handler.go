package handlers

import (
	"net/http"

	"github.com/anonto42/daoplus/backend/internal/middleware"
	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// RewardHandler exposes the caller's point balance
type RewardHandler struct {
	service *services.SocialGraphService
}

func NewRewardHandler(service *services.SocialGraphService) *RewardHandler {
	return &RewardHandler{service: service}
}

func (h *RewardHandler) RegisterRewardRoutes(g *echo.Group) {
	g.GET("/rewards/balance", h.GetBalance)
	g.POST("/rewards/redeem", h.Redeem)
}

func (h *RewardHandler) GetBalance(c echo.Context) error {
	userID := middleware.CurrentUser(c).UserID
	points, err := h.service.Balance(c.Request().Context(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, models.Reward{UserID: userID, Points: points})
}

// Redeem spends points; 402 when the balance does not cover them
func (h *RewardHandler) Redeem(c echo.Context) error {
	var req models.RedeemRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	userID := middleware.CurrentUser(c).UserID
	points, err := h.service.Redeem(c.Request().Context(), userID, req.Points)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, models.Reward{UserID: userID, Points: points})
}
