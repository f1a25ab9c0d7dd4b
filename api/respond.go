package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"todo-api/domain"
)

// messageResponse is the error body shape shared by every endpoint: a
// message string, plus itemized field errors on validation failures.
type messageResponse struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func respondMessage(c echo.Context, status int, msg string) error {
	return c.JSON(status, messageResponse{Message: msg})
}

func unauthorized(c echo.Context, msg string) error {
	return respondMessage(c, http.StatusUnauthorized, msg)
}

func badRequest(c echo.Context, msg string) error {
	return respondMessage(c, http.StatusBadRequest, msg)
}

func notFound(c echo.Context, msg string) error {
	return respondMessage(c, http.StatusNotFound, msg)
}

func internalError(c echo.Context, err error) error {
	c.Logger().Error(err)
	return respondMessage(c, http.StatusInternalServerError, "Internal server error")
}

// respondValidation maps a *domain.ValidationError to the 400 body with
// itemized messages; other errors fall through to a 500.
func respondValidation(c echo.Context, err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, messageResponse{
			Message: "Validation error",
			Errors:  ve.Messages,
		})
	}
	return internalError(c, err)
}

// respondAuthFailure maps a credential failure to 401 and everything else
// (storage errors during account resolution) to 500.
func respondAuthFailure(c echo.Context, err error) error {
	var ae *authError
	if errors.As(err, &ae) {
		return unauthorized(c, ae.message)
	}
	c.Logger().Error(err)
	return respondMessage(c, http.StatusInternalServerError, "Server error during authentication.")
}
