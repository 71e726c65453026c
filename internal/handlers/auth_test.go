package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/saas_boilerplate/internal/service"
)

func TestRegister(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	body := echo.Map{"email": "jane@example.com", "firstname": "Jane", "lastname": "Doe", "password": testPassword}

	rec := f.serve(f.auth.Register, jsonReq(t, http.MethodPut, "/auth/register", body))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "User successfully registered.", decode[echo.Map](t, rec)["message"])
	assert.NotContains(t, rec.Body.String(), testPassword)

	rec = f.serve(f.auth.Register, jsonReq(t, http.MethodPut, "/auth/register", body))
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.serve(f.auth.Register, jsonReq(t, http.MethodPut, "/auth/register", echo.Map{
		"email": "not-an-email", "firstname": "", "lastname": "Doe", "password": "short",
	}))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	got := decode[errorBody](t, rec)
	assert.Equal(t, "Invalid data", got.Error)
	fields := make([]string, 0, len(got.Details))
	for _, d := range got.Details {
		fields = append(fields, d.Field)
	}
	assert.Equal(t, []string{"email", "firstname", "password"}, fields)
}

func TestRegisterMalformedBody(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPut, "/auth/register", strings.NewReader("{not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	rec := f.serve(f.auth.Register, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	f.signup(t, "jane@example.com")

	tests := []struct {
		name     string
		email    string
		password string
		status   int
	}{
		{"success", "jane@example.com", testPassword, http.StatusOK},
		{"wrong password", "jane@example.com", "WrongPass1", http.StatusBadRequest},
		{"unknown email", "nobody@example.com", testPassword, http.StatusNotFound},
		{"invalid email", "nobody", testPassword, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.serve(f.auth.Login, jsonReq(t, http.MethodPost, "/auth/login", echo.Map{
				"email": tt.email, "password": tt.password,
			}))
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status == http.StatusOK {
				pair := decode[service.TokenPair](t, rec)
				assert.NotEmpty(t, pair.AccessToken)
				assert.NotEmpty(t, pair.RefreshToken)
			}
		})
	}
}

func TestRefreshRotates(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	pair := f.signup(t, "jane@example.com")

	rec := f.serve(f.auth.Refresh, jsonReq(t, http.MethodPost, "/auth/refresh-token", echo.Map{"token": pair.RefreshToken}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	next := decode[service.TokenPair](t, rec)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	rec = f.serve(f.auth.Refresh, jsonReq(t, http.MethodPost, "/auth/refresh-token", echo.Map{"token": pair.RefreshToken}))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.serve(f.auth.Refresh, jsonReq(t, http.MethodPost, "/auth/refresh-token", echo.Map{"token": ""}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogout(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	pair := f.signup(t, "jane@example.com")

	rec := f.serveAs(pair.AccessToken, f.auth.Logout, jsonReq(t, http.MethodPost, "/auth/logout", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Successfully logged out.", decode[echo.Map](t, rec)["message"])

	rec = f.serve(f.auth.Refresh, jsonReq(t, http.MethodPost, "/auth/refresh-token", echo.Map{"token": pair.RefreshToken}))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogoutWithoutGateIdentity(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	rec := f.serve(f.auth.Logout, jsonReq(t, http.MethodPost, "/auth/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
