package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/saas_boilerplate/pkg/logging"
	"github.com/Skotchmaster/saas_boilerplate/pkg/tokens"
)

const (
	ctxUserID = "user_id"
	ctxClaims = "claims"
)

type claimsKey struct{}

type AccessVerifier interface {
	VerifyAccessToken(token string) (*tokens.Claims, error)
}

// Gate authenticates requests from the access token alone. It never touches
// the user store, so an access token outlives logout until it expires.
type Gate struct {
	Tokens AccessVerifier
	Header string
}

func NewGate(v AccessVerifier) *Gate {
	return &Gate{Tokens: v, Header: echo.HeaderAuthorization}
}

func (g *Gate) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		l := logging.FromContext(req.Context()).With("mw", "require_auth")

		raw := req.Header.Get(g.Header)
		if raw == "" {
			l.Warn("auth_rejected", "status", 400, "reason", "missing header")
			return echo.NewHTTPError(http.StatusBadRequest, "missing authorization header")
		}
		token, ok := bearerToken(raw)
		if !ok {
			l.Warn("auth_rejected", "status", 400, "reason", "malformed header")
			return echo.NewHTTPError(http.StatusBadRequest, "malformed authorization header")
		}

		claims, err := g.Tokens.VerifyAccessToken(token)
		if err != nil {
			l.Warn("auth_rejected", "status", 401, "reason", "invalid token")
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			l.Warn("auth_rejected", "status", 401, "reason", "invalid token")
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxClaims, claims)
		ctx := context.WithValue(req.Context(), claimsKey{}, claims)
		ctx = logging.IntoContext(ctx, logging.FromContext(ctx).With("user_id", userID))
		c.SetRequest(req.WithContext(ctx))

		return next(c)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// UserID returns the id RequireAuth attached to c.
func UserID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(ctxUserID).(uuid.UUID)
	return id, ok
}

func ClaimsFromContext(ctx context.Context) (*tokens.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*tokens.Claims)
	return claims, ok
}
