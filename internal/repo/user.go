package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/saas_boilerplate/internal/models"
)

var secretColumns = []string{"password", "refresh_token"}

func (r *GormRepo) Create(ctx context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return exactlyOne(r.DB.WithContext(ctx).Create(u))
}

// FindByEmail returns the user without password hash or refresh token.
func (r *GormRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(r.DB.WithContext(ctx).Omit(secretColumns...), "email = ?", email)
}

func (r *GormRepo) FindByEmailWithPassword(ctx context.Context, email string) (*models.User, error) {
	return r.first(r.DB.WithContext(ctx).Omit("refresh_token"), "email = ?", email)
}

func (r *GormRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.first(r.DB.WithContext(ctx).Omit(secretColumns...), "id = ?", id)
}

func (r *GormRepo) FindByIDWithPassword(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.first(r.DB.WithContext(ctx).Omit("refresh_token"), "id = ?", id)
}

func (r *GormRepo) first(tx *gorm.DB, query string, args ...any) (*models.User, error) {
	var user models.User
	if err := tx.Where(query, args...).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *GormRepo) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, "id = ?", id)
}

func (r *GormRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *GormRepo) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) Update(ctx context.Context, id uuid.UUID, upd models.UserUpdate) error {
	fields := map[string]any{}
	if upd.Email != nil {
		fields["email"] = *upd.Email
	}
	if upd.Firstname != nil {
		fields["firstname"] = *upd.Firstname
	}
	if upd.Lastname != nil {
		fields["lastname"] = *upd.Lastname
	}
	if upd.PasswordHash != nil {
		fields["password"] = *upd.PasswordHash
	}
	if upd.Avatar != nil {
		fields["avatar"] = *upd.Avatar
	}
	if upd.ClearAvatar {
		fields["avatar"] = nil
	}
	if upd.PaymentCustomerID != nil {
		fields["payment_customer_id"] = *upd.PaymentCustomerID
	}
	if len(fields) == 0 {
		return ErrNotUpdated
	}
	return exactlyOne(r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields))
}

func (r *GormRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return exactlyOne(r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.User{}))
}
