// Package apptest runs the complete HTTP application on sqlite for
// end-to-end tests.
package apptest

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/saas_boilerplate/internal/handlers"
	"github.com/Skotchmaster/saas_boilerplate/internal/hash"
	authmw "github.com/Skotchmaster/saas_boilerplate/internal/middleware/auth"
	"github.com/Skotchmaster/saas_boilerplate/internal/repo"
	"github.com/Skotchmaster/saas_boilerplate/internal/service"
	"github.com/Skotchmaster/saas_boilerplate/internal/testutil"
	httpserver "github.com/Skotchmaster/saas_boilerplate/internal/transport/http"
	"github.com/Skotchmaster/saas_boilerplate/pkg/logging"
	"github.com/Skotchmaster/saas_boilerplate/pkg/tokens"
)

type App struct {
	Echo    *echo.Echo
	Repo    *repo.GormRepo
	Tokens  *tokens.Service
	Avatars *testutil.MemAvatars
	Gateway *testutil.StubGateway
}

func New(t *testing.T) *App {
	t.Helper()

	db := testutil.NewDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	rp := repo.New(db)
	hasher := hash.Bcrypt{Cost: bcrypt.MinCost}
	tk := tokens.NewService([]byte("app-access-secret"), []byte("app-refresh-secret"), 15*time.Minute, 24*time.Hour)
	avatars := testutil.NewMemAvatars()
	gw := &testutil.StubGateway{}

	accounts := &service.AccountService{Users: rp, Hasher: hasher, Avatars: avatars}
	sessions := &service.SessionService{Users: rp, Hasher: hasher, Tokens: tk}
	billing := &service.BillingService{Users: rp, Payments: gw, PublishableKey: "pk_test_app"}

	e := httpserver.New(logging.Noop(), &httpserver.Deps{
		Gate:     authmw.NewGate(tk),
		Auth:     &handlers.AuthHandler{Accounts: accounts, Sessions: sessions},
		Account:  &handlers.AccountHandler{Accounts: accounts},
		Payments: &handlers.PaymentsHandler{Billing: billing},
		Health:   &handlers.HealthHandler{DB: sqlDB},
	})

	return &App{Echo: e, Repo: rp, Tokens: tk, Avatars: avatars, Gateway: gw}
}

// Serve starts a real listener for clients that need a URL.
func (a *App) Serve(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(a.Echo)
	t.Cleanup(srv.Close)
	return srv
}
