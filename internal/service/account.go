package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/saas_boilerplate/internal/models"
	"github.com/Skotchmaster/saas_boilerplate/internal/mykafka"
	"github.com/Skotchmaster/saas_boilerplate/internal/repo"
)

const (
	AvatarURLTTL  = time.Hour
	MaxAvatarSize = 5 << 20
)

type AccountService struct {
	Users   UserStore
	Hasher  CredentialVerifier
	Avatars AvatarStore
	Events  EventPublisher
}

// Register creates a user. An email that is already taken is reported as
// ErrConflict before anything is written.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.Profile, error) {
	l := loggerFor(ctx, "account.register")

	if err := in.Validate(); err != nil {
		return nil, err
	}

	taken, err := s.Users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: check email: %w", ErrInternal, err)
	}
	if taken {
		l.Warn("register_error", "status", 409, "reason", "email already registered")
		return nil, ErrConflict
	}

	pwHash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, fmt.Errorf("%w: hash password: %w", ErrInternal, err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        in.Email,
		Firstname:    strings.TrimSpace(in.Firstname),
		Lastname:     strings.TrimSpace(in.Lastname),
		PasswordHash: pwHash,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrConflict
		}
		l.Error("register_error", "status", 500, "reason", "cannot create user", "error", err)
		return nil, fmt.Errorf("%w: create user: %w", ErrPersistence, err)
	}

	l.Info("register_successful", "user_id", user.ID)
	publish(ctx, s.Events, l, mykafka.EventUserRegistered, user)
	p := user.Profile()
	return &p, nil
}

func (s *AccountService) Profile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	user, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := user.Profile()
	if user.Avatar != nil && s.Avatars != nil {
		url, err := s.Avatars.PresignGet(ctx, *user.Avatar, AvatarURLTTL)
		if err != nil {
			loggerFor(ctx, "account.profile").Warn("avatar_presign_failed", "user_id", userID, "error", err)
		} else {
			p.AvatarURL = url
		}
	}
	return &p, nil
}

func (s *AccountService) Update(ctx context.Context, userID uuid.UUID, in UpdateInput) error {
	l := loggerFor(ctx, "account.update")

	if err := in.Validate(); err != nil {
		return err
	}

	current, err := s.find(ctx, userID)
	if err != nil {
		return err
	}

	upd := models.UserUpdate{Firstname: in.Firstname, Lastname: in.Lastname}
	if in.Email != nil && *in.Email != current.Email {
		taken, err := s.Users.ExistsByEmail(ctx, *in.Email)
		if err != nil {
			return fmt.Errorf("%w: check email: %w", ErrInternal, err)
		}
		if taken {
			l.Warn("update_error", "status", 409, "reason", "email already registered", "user_id", userID)
			return ErrConflict
		}
		upd.Email = in.Email
	}
	if in.Password != nil {
		pwHash, err := s.Hasher.Hash(*in.Password)
		if err != nil {
			return fmt.Errorf("%w: hash password: %w", ErrInternal, err)
		}
		upd.PasswordHash = &pwHash
	}
	if upd.Empty() {
		return nil
	}

	if err := s.Users.Update(ctx, userID, upd); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return ErrConflict
		}
		l.Error("update_error", "status", 500, "reason", "cannot update user", "error", err)
		return fmt.Errorf("%w: update user: %w", ErrPersistence, err)
	}

	l.Info("update_successful", "user_id", userID)
	publish(ctx, s.Events, l, mykafka.EventUserUpdated, current)
	return nil
}

// Delete requires the current password again before removing the account.
func (s *AccountService) Delete(ctx context.Context, userID uuid.UUID, password string) error {
	l := loggerFor(ctx, "account.delete")

	if password == "" {
		return &ValidationError{Fields: []FieldError{{Field: "password", Message: "required"}}}
	}

	user, err := s.Users.FindByIDWithPassword(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: find user: %w", ErrInternal, err)
	}

	ok, err := s.Hasher.Compare(password, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("%w: compare password: %w", ErrInternal, err)
	}
	if !ok {
		l.Warn("delete_error", "status", 400, "reason", "password mismatch", "user_id", userID)
		return ErrInvalidCredentials
	}

	if user.Avatar != nil && s.Avatars != nil {
		if err := s.Avatars.Delete(ctx, *user.Avatar); err != nil {
			l.Warn("avatar_delete_failed", "user_id", userID, "error", err)
		}
	}

	if err := s.Users.Delete(ctx, userID); err != nil {
		l.Error("delete_error", "status", 500, "reason", "cannot delete user", "error", err)
		return fmt.Errorf("%w: delete user: %w", ErrPersistence, err)
	}

	l.Info("delete_successful", "user_id", userID)
	publish(ctx, s.Events, l, mykafka.EventUserDeleted, user)
	return nil
}

func AvatarKey(userID uuid.UUID) string {
	return "avatars/" + userID.String()
}

// SetAvatar stores the image under a per-user key, overwriting any previous
// one, and returns a presigned URL for it.
func (s *AccountService) SetAvatar(ctx context.Context, userID uuid.UUID, contentType string, size int64, body io.Reader) (string, error) {
	l := loggerFor(ctx, "account.avatar")

	if s.Avatars == nil {
		return "", ErrUnavailable
	}
	v := &ValidationError{}
	if !strings.HasPrefix(contentType, "image/") {
		v.add("avatar", "must be an image")
	}
	if size <= 0 || size > MaxAvatarSize {
		v.add("avatar", "must be between 1 byte and 5 MiB")
	}
	if err := v.orNil(); err != nil {
		return "", err
	}

	if _, err := s.find(ctx, userID); err != nil {
		return "", err
	}

	key := AvatarKey(userID)
	if err := s.Avatars.Put(ctx, key, contentType, body, size); err != nil {
		l.Error("avatar_upload_failed", "status", 500, "user_id", userID, "error", err)
		return "", fmt.Errorf("%w: upload avatar: %w", ErrInternal, err)
	}
	if err := s.Users.Update(ctx, userID, models.UserUpdate{Avatar: &key}); err != nil {
		return "", fmt.Errorf("%w: store avatar key: %w", ErrPersistence, err)
	}

	url, err := s.Avatars.PresignGet(ctx, key, AvatarURLTTL)
	if err != nil {
		return "", fmt.Errorf("%w: presign avatar: %w", ErrInternal, err)
	}
	l.Info("avatar_uploaded", "user_id", userID)
	return url, nil
}

func (s *AccountService) RemoveAvatar(ctx context.Context, userID uuid.UUID) error {
	if s.Avatars == nil {
		return ErrUnavailable
	}
	user, err := s.find(ctx, userID)
	if err != nil {
		return err
	}
	if user.Avatar == nil {
		return ErrNotFound
	}
	if err := s.Avatars.Delete(ctx, *user.Avatar); err != nil {
		return fmt.Errorf("%w: delete avatar: %w", ErrInternal, err)
	}
	if err := s.Users.Update(ctx, userID, models.UserUpdate{ClearAvatar: true}); err != nil {
		return fmt.Errorf("%w: clear avatar key: %w", ErrPersistence, err)
	}
	return nil
}

func (s *AccountService) find(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return findUser(ctx, s.Users, userID)
}
