package models

import (
	"time"

	"github.com/google/uuid"
)

// User mirrors the users table. PasswordHash and RefreshToken never leave the
// service layer; both are excluded from JSON.
type User struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"            json:"id"`
	Email             string    `gorm:"size:255;uniqueIndex;not null"   json:"email"`
	Firstname         string    `gorm:"size:255;not null"               json:"firstname"`
	Lastname          string    `gorm:"size:255;not null"               json:"lastname"`
	Avatar            *string   `gorm:"size:255"                        json:"avatar,omitempty"`
	PasswordHash      string    `gorm:"column:password;not null"        json:"-"`
	RefreshToken      *string   `gorm:"size:64;index"                   json:"-"`
	PaymentCustomerID *string   `gorm:"size:255"                        json:"payment_customer_id,omitempty"`
	Verified          bool      `gorm:"not null;default:false"          json:"verified"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Profile is the part of a user that may be returned to its owner.
type Profile struct {
	ID                uuid.UUID `json:"id"`
	Email             string    `json:"email"`
	Firstname         string    `json:"firstname"`
	Lastname          string    `json:"lastname"`
	AvatarURL         string    `json:"avatar_url,omitempty"`
	PaymentCustomerID string    `json:"payment_customer_id,omitempty"`
	Verified          bool      `json:"verified"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (u *User) Profile() Profile {
	p := Profile{
		ID:        u.ID,
		Email:     u.Email,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Verified:  u.Verified,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.PaymentCustomerID != nil {
		p.PaymentCustomerID = *u.PaymentCustomerID
	}
	return p
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Email             *string
	Firstname         *string
	Lastname          *string
	PasswordHash      *string
	Avatar            *string
	ClearAvatar       bool
	PaymentCustomerID *string
}

func (u UserUpdate) Empty() bool {
	return u.Email == nil && u.Firstname == nil && u.Lastname == nil &&
		u.PasswordHash == nil && u.Avatar == nil && !u.ClearAvatar && u.PaymentCustomerID == nil
}
