package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers bad signatures, malformed tokens, expiry and a token
// of the wrong kind. Callers must not branch on the underlying cause.
var ErrInvalidToken = errors.New("invalid token")

const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Identity is what gets signed into a token. Extra is opaque to this package.
type Identity struct {
	UserID string
	Extra  map[string]string
}

type Claims struct {
	UserID string            `json:"id"`
	Extra  map[string]string `json:"extra,omitempty"`
	Kind   string            `json:"typ"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() Identity {
	return Identity{UserID: c.UserID, Extra: c.Extra}
}

// Service signs access and refresh tokens with separate HS256 secrets.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now for both issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) AccessTTL() time.Duration  { return s.accessTTL }
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

func (s *Service) IssueAccessToken(id Identity) (string, error) {
	return s.issue(id, KindAccess, s.accessSecret, s.accessTTL)
}

func (s *Service) IssueAccessTokenTTL(id Identity, ttl time.Duration) (string, error) {
	return s.issue(id, KindAccess, s.accessSecret, ttl)
}

func (s *Service) IssueRefreshToken(id Identity) (string, error) {
	return s.issue(id, KindRefresh, s.refreshSecret, s.refreshTTL)
}

func (s *Service) IssueRefreshTokenTTL(id Identity, ttl time.Duration) (string, error) {
	return s.issue(id, KindRefresh, s.refreshSecret, ttl)
}

func (s *Service) VerifyAccessToken(token string) (*Claims, error) {
	return s.verify(token, KindAccess, s.accessSecret)
}

func (s *Service) VerifyRefreshToken(token string) (*Claims, error) {
	return s.verify(token, KindRefresh, s.refreshSecret)
}

func (s *Service) issue(id Identity, kind string, secret []byte, ttl time.Duration) (string, error) {
	if id.UserID == "" {
		return "", errors.New("tokens: empty user id")
	}
	now := s.now()
	claims := Claims{
		UserID: id.UserID,
		Extra:  id.Extra,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

func (s *Service) verify(token, kind string, secret []byte) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tkn.Valid || claims.Kind != kind || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
