package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/saas_boilerplate/internal/models"
)

// FindByRefreshToken looks the owner up by the stored token, not by any claim
// inside it.
func (r *GormRepo) FindByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return r.first(r.DB.WithContext(ctx).Omit(secretColumns...), "refresh_token = ?", TokenDigest(token))
}

func (r *GormRepo) RefreshTokenMatches(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	return r.exists(ctx, "refresh_token = ?", TokenDigest(token))
}

// SetRefreshToken overwrites whatever session the user had.
func (r *GormRepo) SetRefreshToken(ctx context.Context, id uuid.UUID, token string) error {
	return exactlyOne(r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("refresh_token", TokenDigest(token)))
}

// RotateRefreshToken replaces oldToken with newToken only if oldToken is still
// the stored value. ErrNotUpdated means another rotation or a logout got there
// first.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, id uuid.UUID, oldToken, newToken string) error {
	return exactlyOne(r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND refresh_token = ?", id, TokenDigest(oldToken)).
		Update("refresh_token", TokenDigest(newToken)))
}

func (r *GormRepo) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	return exactlyOne(r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("refresh_token", nil))
}
