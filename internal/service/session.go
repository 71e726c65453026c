package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/saas_boilerplate/internal/models"
	"github.com/Skotchmaster/saas_boilerplate/internal/mykafka"
	"github.com/Skotchmaster/saas_boilerplate/internal/repo"
	"github.com/Skotchmaster/saas_boilerplate/pkg/tokens"
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// SessionService owns every write to a user's refresh token. A user has at
// most one live refresh token: login overwrites it, refresh swaps it, logout
// clears it.
type SessionService struct {
	Users  UserStore
	Hasher CredentialVerifier
	Tokens TokenIssuer
	Events EventPublisher
}

func (s *SessionService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	l := loggerFor(ctx, "session.login")

	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	user, err := s.Users.FindByEmailWithPassword(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "status", 404, "reason", "unknown email")
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: find user: %w", ErrInternal, err)
	}

	ok, err := s.Hasher.Compare(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("%w: compare password: %w", ErrInternal, err)
	}
	if !ok {
		l.Warn("login_failed", "status", 400, "reason", "password mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	user.PasswordHash = ""

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	if err := s.Users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot store refresh token", "error", err)
		return nil, fmt.Errorf("%w: store refresh token: %w", ErrPersistence, err)
	}

	l.Info("login_successful", "user_id", user.ID)
	publish(ctx, s.Events, l, mykafka.EventUserLoggedIn, user)
	return pair, nil
}

// Refresh trades a stored refresh token for a new pair. The store is asked
// first; the signature is checked only for a token the store still holds.
func (s *SessionService) Refresh(ctx context.Context, token string) (*TokenPair, error) {
	l := loggerFor(ctx, "session.refresh")

	owner, err := s.Users.FindByRefreshToken(ctx, token)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("refresh_rejected", "status", 403, "reason", "token not stored")
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("%w: find token owner: %w", ErrInternal, err)
	}

	claims, err := s.Tokens.VerifyRefreshToken(token)
	if err != nil || claims.UserID != owner.ID.String() {
		l.Warn("refresh_rejected", "status", 403, "reason", "verification failed", "user_id", owner.ID)
		return nil, ErrForbidden
	}

	pair, err := s.issuePair(owner)
	if err != nil {
		return nil, err
	}

	if err := s.Users.RotateRefreshToken(ctx, owner.ID, token, pair.RefreshToken); err != nil {
		if errors.Is(err, repo.ErrNotUpdated) {
			l.Warn("refresh_rejected", "status", 403, "reason", "token rotated concurrently", "user_id", owner.ID)
			return nil, ErrForbidden
		}
		l.Error("refresh_failed", "status", 500, "reason", "cannot rotate refresh token", "error", err)
		return nil, fmt.Errorf("%w: rotate refresh token: %w", ErrPersistence, err)
	}

	l.Info("refresh_successful", "user_id", owner.ID)
	return pair, nil
}

func (s *SessionService) Logout(ctx context.Context, userID uuid.UUID) error {
	l := loggerFor(ctx, "session.logout")

	exists, err := s.Users.ExistsByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: check user: %w", ErrInternal, err)
	}
	if !exists {
		l.Warn("logout_failed", "status", 404, "user_id", userID)
		return ErrNotFound
	}

	if err := s.Users.ClearRefreshToken(ctx, userID); err != nil {
		l.Error("logout_failed", "status", 500, "reason", "cannot clear refresh token", "error", err)
		return fmt.Errorf("%w: clear refresh token: %w", ErrPersistence, err)
	}

	l.Info("logout_successful", "user_id", userID)
	publish(ctx, s.Events, l, mykafka.EventUserLoggedOut, &models.User{ID: userID})
	return nil
}

func (s *SessionService) issuePair(u *models.User) (*TokenPair, error) {
	id := u.ID.String()
	access, err := s.Tokens.IssueAccessToken(tokens.Identity{
		UserID: id,
		Extra:  map[string]string{"email": u.Email},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: issue access token: %w", ErrInternal, err)
	}
	refresh, err := s.Tokens.IssueRefreshToken(tokens.Identity{UserID: id})
	if err != nil {
		return nil, fmt.Errorf("%w: issue refresh token: %w", ErrInternal, err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
