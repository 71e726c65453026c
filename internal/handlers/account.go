package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/saas_boilerplate/internal/service"
	"github.com/Skotchmaster/saas_boilerplate/pkg/logging"
)

const avatarField = "avatar"

type AccountHandler struct {
	Accounts *service.AccountService
}

func (h *AccountHandler) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account_me")

	userID, err := callerID(c, l)
	if err != nil {
		return err
	}
	profile, err := h.Accounts.Profile(ctx, userID)
	if err != nil {
		return fail(c, l, "me_error", err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *AccountHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account_update")

	userID, err := callerID(c, l)
	if err != nil {
		return err
	}
	var req service.UpdateInput
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_error", err)
	}

	if err := h.Accounts.Update(ctx, userID, req); err != nil {
		return fail(c, l, "update_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Successfully updated user."})
}

func (h *AccountHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account_delete")

	userID, err := callerID(c, l)
	if err != nil {
		return err
	}
	var req struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return badBody(l, "delete_error", err)
	}

	if err := h.Accounts.Delete(ctx, userID, req.Password); err != nil {
		return fail(c, l, "delete_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User successfully deleted."})
}

// PutAvatar accepts a multipart upload in the "avatar" field.
func (h *AccountHandler) PutAvatar(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account_avatar_put")

	userID, err := callerID(c, l)
	if err != nil {
		return err
	}
	fh, err := c.FormFile(avatarField)
	if err != nil {
		l.Warn("avatar_error", "status", http.StatusBadRequest, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "missing avatar file")
	}
	f, err := fh.Open()
	if err != nil {
		l.Error("avatar_error", "status", http.StatusInternalServerError, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	defer f.Close()

	url, err := h.Accounts.SetAvatar(ctx, userID, fh.Header.Get(echo.HeaderContentType), fh.Size, f)
	if err != nil {
		return fail(c, l, "avatar_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"avatar_url": url})
}

func (h *AccountHandler) DeleteAvatar(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account_avatar_delete")

	userID, err := callerID(c, l)
	if err != nil {
		return err
	}
	if err := h.Accounts.RemoveAvatar(ctx, userID); err != nil {
		return fail(c, l, "avatar_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Avatar removed."})
}
