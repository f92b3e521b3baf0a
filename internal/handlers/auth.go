package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/services"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service         *services.SocialGraphService
	jwtSecret       string
	tokenTTL        time.Duration
	moderatorEmails []string
}

// NewAuthHandler creates a new AuthHandler. Accounts registered with one of
// moderatorEmails are granted the moderator role.
func NewAuthHandler(service *services.SocialGraphService, jwtSecret string, tokenTTL time.Duration, moderatorEmails []string) *AuthHandler {
	return &AuthHandler{
		service:   service,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		moderatorEmails: lo.Map(moderatorEmails, func(email string, _ int) string {
			return strings.ToLower(strings.TrimSpace(email))
		}),
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.CreateLocalUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	user, err := h.service.RegisterUser(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}

	if lo.Contains(h.moderatorEmails, strings.ToLower(user.Email)) {
		if err := h.service.GrantModerator(ctx, user.ID); err != nil {
			return httpError(err)
		}
		user.IsModerator = true
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token after signup")
	}
	return c.JSON(http.StatusCreated, echo.Map{"token": token, "user": user})
}

// SignIn handles local user authentication with email and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SignInRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.service.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if services.KindOf(err) == services.KindUnauthorized {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
		}
		return httpError(err)
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token})
}

// generateJWT generates a JWT token for a given user
func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.JwtCustomClaims{
		UserID:      user.ID,
		Email:       user.Email,
		IsModerator: user.IsModerator,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(h.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
