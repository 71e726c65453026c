package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/saas_boilerplate/internal/middleware/auth"
	"github.com/Skotchmaster/saas_boilerplate/internal/service"
	"github.com/Skotchmaster/saas_boilerplate/pkg/logging"
)

type AuthHandler struct {
	Accounts *service.AccountService
	Sessions *service.SessionService
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		return badBody(l, "register_error", err)
	}

	if _, err := h.Accounts.Register(ctx, req); err != nil {
		return fail(c, l, "register_error", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "User successfully registered."})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return badBody(l, "login_error", err)
	}

	pair, err := h.Sessions.Login(ctx, req.Email, req.Password)
	if err != nil {
		return fail(c, l, "login_failed", err)
	}
	return c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	var req struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil {
		return badBody(l, "refresh_error", err)
	}

	pair, err := h.Sessions.Refresh(ctx, req.Token)
	if err != nil {
		return fail(c, l, "refresh_failed", err)
	}
	return c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	userID, err := callerID(c, l)
	if err != nil {
		return err
	}

	if err := h.Sessions.Logout(ctx, userID); err != nil {
		return fail(c, l, "logout_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Successfully logged out."})
}

// callerID reads the identity the Request Gate attached. Handlers behind the
// gate only see a missing identity when the route was registered without it.
func callerID(c echo.Context, l *slog.Logger) (uuid.UUID, error) {
	id, ok := authmw.UserID(c)
	if !ok {
		l.Error("identity_missing", "status", http.StatusUnauthorized, "path", c.Path())
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}
