package handlers

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/saas_boilerplate/internal/service"
	"github.com/Skotchmaster/saas_boilerplate/pkg/logging"
)

const stripeSignatureHeader = "Stripe-Signature"

type PaymentsHandler struct {
	Billing *service.BillingService
}

func (h *PaymentsHandler) CreateCustomer(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payments_create_customer")

	userID, err := callerID(c, l)
	if err != nil {
		return err
	}
	customerID, err := h.Billing.CreateCustomer(ctx, userID)
	if err != nil {
		return fail(c, l, "create_customer_error", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":    "Successfully created new customer.",
		"customerId": customerID,
	})
}

func (h *PaymentsHandler) CheckoutSession(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payments_checkout")

	userID, err := callerID(c, l)
	if err != nil {
		return err
	}
	var req struct {
		Items []service.CheckoutItem `json:"items"`
	}
	if err := c.Bind(&req); err != nil {
		return badBody(l, "checkout_error", err)
	}

	sess, err := h.Billing.Checkout(ctx, userID, req.Items)
	if err != nil {
		return fail(c, l, "checkout_error", err)
	}
	return c.JSON(http.StatusOK, sess)
}

// Webhook must see the body exactly as sent; the signature covers the raw bytes.
func (h *PaymentsHandler) Webhook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payments_webhook")

	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return badBody(l, "webhook_error", err)
	}

	ev, err := h.Billing.HandleWebhook(ctx, payload, c.Request().Header.Get(stripeSignatureHeader))
	if err != nil {
		return fail(c, l, "webhook_error", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true, "type": ev.Type})
}

func (h *PaymentsHandler) Config(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "payments_config")

	if h.Billing.PublishableKey == "" {
		return fail(c, l, "config_error", service.ErrUnavailable)
	}
	return c.JSON(http.StatusOK, echo.Map{"publishableKey": h.Billing.PublishableKey})
}
