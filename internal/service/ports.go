package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/saas_boilerplate/internal/models"
	"github.com/Skotchmaster/saas_boilerplate/internal/mykafka"
	"github.com/Skotchmaster/saas_boilerplate/internal/payments"
	"github.com/Skotchmaster/saas_boilerplate/internal/repo"
	"github.com/Skotchmaster/saas_boilerplate/pkg/logging"
	"github.com/Skotchmaster/saas_boilerplate/pkg/tokens"
)

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByEmailWithPassword(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByIDWithPassword(ctx context.Context, id uuid.UUID) (*models.User, error)
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, id uuid.UUID, upd models.UserUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error

	FindByRefreshToken(ctx context.Context, token string) (*models.User, error)
	SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error
	RotateRefreshToken(ctx context.Context, id uuid.UUID, oldToken, newToken string) error
	ClearRefreshToken(ctx context.Context, id uuid.UUID) error
}

var _ UserStore = (*repo.GormRepo)(nil)

type CredentialVerifier interface {
	Hash(password string) (string, error)
	Compare(password, hash string) (bool, error)
}

type TokenIssuer interface {
	IssueAccessToken(id tokens.Identity) (string, error)
	IssueRefreshToken(id tokens.Identity) (string, error)
	VerifyRefreshToken(token string) (*tokens.Claims, error)
}

var _ TokenIssuer = (*tokens.Service)(nil)

type EventPublisher interface {
	Publish(ctx context.Context, ev mykafka.UserEvent) error
}

type AvatarStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type PaymentGateway interface {
	CreateCustomer(ctx context.Context, name, email string) (string, error)
	CreateCheckoutSession(ctx context.Context, p payments.CheckoutParams) (*payments.CheckoutSession, error)
	ParseWebhook(payload []byte, signature string) (*payments.Event, error)
}

const publishTimeout = 5 * time.Second

// publish never fails the caller; a lost event is only logged.
func publish(ctx context.Context, events EventPublisher, l *slog.Logger, typ string, u *models.User) {
	if events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	ev := mykafka.UserEvent{Type: typ, UserID: u.ID.String(), Email: u.Email, At: time.Now().UTC()}
	if err := events.Publish(ctx, ev); err != nil {
		l.Error("event_publish_failed", "type", typ, "error", err)
	}
}

func findUser(ctx context.Context, users UserStore, id uuid.UUID) (*models.User, error) {
	user, err := users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: find user: %w", ErrInternal, err)
	}
	return user, nil
}

func loggerFor(ctx context.Context, svc string) *slog.Logger {
	return logging.FromContext(ctx).With("svc", svc)
}
