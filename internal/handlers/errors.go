package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/daoplus/backend/internal/services"
	"github.com/anonto42/daoplus/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// httpError maps a service error onto the response status. Storage failures
// keep their cause internal so it is logged but never returned to clients.
func httpError(err error) error {
	if err == nil {
		return nil
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	switch services.KindOf(err) {
	case services.KindNotFound:
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case services.KindConflict:
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case services.KindUnauthorized:
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case services.KindInsufficientPoints:
		return echo.NewHTTPError(http.StatusPaymentRequired, err.Error())
	case services.KindInvalidAction, services.KindInvalidInput:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if errors.Is(err, storage.ErrConnection) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Storage unavailable").SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal error").SetInternal(err)
}

// bind decodes the request body into req and validates it.
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(req)
}
