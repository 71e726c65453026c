package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/saas_boilerplate/internal/payments"
	"github.com/Skotchmaster/saas_boilerplate/internal/testutil"
)

func TestCreateCustomer(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	pair := f.signup(t, "jane@example.com")

	rec := f.serveAs(pair.AccessToken, f.payments.CreateCustomer, jsonReq(t, http.MethodPost, "/payments/create-customer", nil))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "cus_jane@example.com", decode[echo.Map](t, rec)["customerId"])

	rec = f.serveAs(pair.AccessToken, f.payments.CreateCustomer, jsonReq(t, http.MethodPost, "/payments/create-customer", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateCustomerProviderFailure(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	pair := f.signup(t, "jane@example.com")
	f.gateway.Fail = true

	rec := f.serveAs(pair.AccessToken, f.payments.CreateCustomer, jsonReq(t, http.MethodPost, "/payments/create-customer", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "provider unavailable")
}

func TestCheckoutSession(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	pair := f.signup(t, "jane@example.com")

	rec := f.serveAs(pair.AccessToken, f.payments.CheckoutSession, jsonReq(t, http.MethodPost, "/payments/checkout-session", echo.Map{
		"items": []echo.Map{{"id": "price_basic", "quantity": 2}},
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	sess := decode[payments.CheckoutSession](t, rec)
	assert.Equal(t, "cs_test", sess.ID)
	assert.Equal(t, "https://checkout.test/cs_test", sess.URL)
	assert.Equal(t, []payments.LineItem{{PriceID: "price_basic", Quantity: 2}}, f.gateway.LastItem)

	rec = f.serveAs(pair.AccessToken, f.payments.CheckoutSession, jsonReq(t, http.MethodPost, "/payments/checkout-session", echo.Map{
		"items": []echo.Map{{"id": "price_basic", "quantity": 0}},
	}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "items[0].quantity", decode[errorBody](t, rec).Details[0].Field)
}

func TestWebhook(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	tests := []struct {
		name      string
		signature string
		status    int
	}{
		{"valid signature", testutil.ValidSignature, http.StatusOK},
		{"bad signature", "t=1,v1=deadbeef", http.StatusBadRequest},
		{"missing signature", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(`{"id":"evt_test"}`))
			if tt.signature != "" {
				req.Header.Set(stripeSignatureHeader, tt.signature)
			}
			rec := f.serve(f.payments.Webhook, req)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status == http.StatusOK {
				body := decode[echo.Map](t, rec)
				assert.Equal(t, true, body["received"])
				assert.Equal(t, "checkout.session.completed", body["type"])
			}
		})
	}
}

func TestPaymentsConfig(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.serve(f.payments.Config, httptest.NewRequest(http.MethodGet, "/payments/config", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pk_test_123", decode[echo.Map](t, rec)["publishableKey"])

	f.payments.Billing.PublishableKey = ""
	rec = f.serve(f.payments.Config, httptest.NewRequest(http.MethodGet, "/payments/config", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
