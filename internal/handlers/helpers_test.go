package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/saas_boilerplate/internal/hash"
	authmw "github.com/Skotchmaster/saas_boilerplate/internal/middleware/auth"
	"github.com/Skotchmaster/saas_boilerplate/internal/repo"
	"github.com/Skotchmaster/saas_boilerplate/internal/service"
	"github.com/Skotchmaster/saas_boilerplate/internal/testutil"
	"github.com/Skotchmaster/saas_boilerplate/pkg/tokens"
)

const testPassword = "Secret123"

type fixture struct {
	e        *echo.Echo
	repo     *repo.GormRepo
	gate     *authmw.Gate
	avatars  *testutil.MemAvatars
	gateway  *testutil.StubGateway
	auth     *AuthHandler
	account  *AccountHandler
	payments *PaymentsHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	rp := repo.New(testutil.NewDB(t))
	hasher := hash.Bcrypt{Cost: bcrypt.MinCost}
	tk := tokens.NewService([]byte("handler-access-secret"), []byte("handler-refresh-secret"), 15*time.Minute, 24*time.Hour)
	avatars := testutil.NewMemAvatars()
	gw := &testutil.StubGateway{}

	accounts := &service.AccountService{Users: rp, Hasher: hasher, Avatars: avatars}
	sessions := &service.SessionService{Users: rp, Hasher: hasher, Tokens: tk}
	billing := &service.BillingService{Users: rp, Payments: gw, PublishableKey: "pk_test_123"}

	return &fixture{
		e:        echo.New(),
		repo:     rp,
		gate:     authmw.NewGate(tk),
		avatars:  avatars,
		gateway:  gw,
		auth:     &AuthHandler{Accounts: accounts, Sessions: sessions},
		account:  &AccountHandler{Accounts: accounts},
		payments: &PaymentsHandler{Billing: billing},
	}
}

// serve runs h the way echo would, rendering a returned error into rec.
func (f *fixture) serve(h echo.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	if err := h(c); err != nil {
		f.e.HTTPErrorHandler(err, c)
	}
	return rec
}

// serveAs runs h behind the Request Gate with token as the bearer.
func (f *fixture) serveAs(token string, h echo.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	return f.serve(f.gate.RequireAuth(h), req)
}

func (f *fixture) signup(t *testing.T, email string) service.TokenPair {
	t.Helper()

	rec := f.serve(f.auth.Register, jsonReq(t, http.MethodPut, "/auth/register", echo.Map{
		"email": email, "firstname": "Jane", "lastname": "Doe", "password": testPassword,
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.serve(f.auth.Login, jsonReq(t, http.MethodPost, "/auth/login", echo.Map{
		"email": email, "password": testPassword,
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[service.TokenPair](t, rec)
}

func jsonReq(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func multipartReq(t *testing.T, target, field, contentType string, data []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename="upload"`, field))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPut, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type errorBody struct {
	Message string               `json:"message"`
	Error   string               `json:"error"`
	Details []service.FieldError `json:"details"`
}
