package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/saas_boilerplate/internal/service"
)

type statusRule struct {
	err     error
	status  int
	message string
}

// ErrValidation is not listed; it is rendered with its field details by fail.
var statusRules = []statusRule{
	{service.ErrNotFound, http.StatusNotFound, "not found"},
	{service.ErrInvalidCredentials, http.StatusBadRequest, "invalid credentials"},
	{service.ErrForbidden, http.StatusForbidden, "forbidden"},
	{service.ErrBadRequest, http.StatusBadRequest, "bad request"},
	{service.ErrConflict, http.StatusConflict, "already exists"},
	{service.ErrUnavailable, http.StatusServiceUnavailable, "feature not configured"},
	{service.ErrPersistence, http.StatusInternalServerError, "internal error"},
	{service.ErrInternal, http.StatusInternalServerError, "internal error"},
}

// Status maps a service error to the status code and public message sent to
// the client. Unknown errors are 500.
func Status(err error) (int, string) {
	if errors.Is(err, service.ErrValidation) {
		return http.StatusBadRequest, "Invalid data"
	}
	for _, r := range statusRules {
		if errors.Is(err, r.err) {
			return r.status, r.message
		}
	}
	return http.StatusInternalServerError, "internal error"
}

// fail logs err with the handler's logger and turns it into the response.
func fail(c echo.Context, l *slog.Logger, event string, err error) error {
	status, msg := Status(err)
	if status >= http.StatusInternalServerError {
		l.Error(event, "status", status, "error", err)
	} else {
		l.Warn(event, "status", status, "error", err)
	}

	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(status, echo.Map{"error": msg, "details": ve.Fields})
	}
	return echo.NewHTTPError(status, msg)
}

func badBody(l *slog.Logger, event string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
}
