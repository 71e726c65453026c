package httpserver

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/saas_boilerplate/internal/handlers"
	authmw "github.com/Skotchmaster/saas_boilerplate/internal/middleware/auth"
	"github.com/Skotchmaster/saas_boilerplate/internal/middleware/except"
)

// PublicPaths never pass through the Request Gate.
var PublicPaths = []string{
	"/auth/login",
	"/auth/register",
	"/auth/refresh-token",
	"/health/*",
	"/payments/webhook",
	"/payments/config",
}

// BodyLimit caps JSON bodies. The avatar upload has its own limit.
const BodyLimit = "1M"

type Deps struct {
	Gate     *authmw.Gate
	Auth     *handlers.AuthHandler
	Account  *handlers.AccountHandler
	Payments *handlers.PaymentsHandler
	Health   *handlers.HealthHandler
}

func Register(e *echo.Echo, d *Deps) {
	gate := except.New(PublicPaths).Wrap(d.Gate.RequireAuth)

	e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Skipper: except.New([]string{"/account/avatar"}).Skipper(),
		Limit:   BodyLimit,
	}))

	e.GET("/health/live", d.Health.Live)
	e.GET("/health/ready", d.Health.Ready)

	auth := e.Group("/auth", gate)
	auth.PUT("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh-token", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.Logout)

	account := e.Group("/account", gate)
	account.GET("/me", d.Account.Me)
	account.PATCH("/update", d.Account.Update)
	account.DELETE("/delete", d.Account.Delete)
	account.PUT("/avatar", d.Account.PutAvatar, middleware.BodyLimit("6M"))
	account.DELETE("/avatar", d.Account.DeleteAvatar)

	payments := e.Group("/payments", gate)
	payments.POST("/create-customer", d.Payments.CreateCustomer)
	payments.POST("/checkout-session", d.Payments.CheckoutSession)
	payments.POST("/webhook", d.Payments.Webhook)
	payments.GET("/config", d.Payments.Config)

	posts := e.Group("/posts", gate)
	posts.GET("/all", handlers.Posts)
}
