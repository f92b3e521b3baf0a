package validators_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Parallel()
	v := validators.NewValidator()

	require.NoError(t, v.Validate(&models.SignInRequest{Email: "a@example.com", Password: "x"}))

	err := v.Validate(&models.SignInRequest{Email: "not-an-email", Password: "x"})
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he))
	require.Equal(t, http.StatusBadRequest, he.Code)

	require.Error(t, v.Validate(&models.RedeemRequest{Points: 0}))
	require.Error(t, v.Validate(&models.UpdateNotificationRequest{Action: "poked", TargetID: "x", TargetType: models.TargetUser}))
}
