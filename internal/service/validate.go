package service

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	minPasswordLen = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
	maxNameLen       = 255
)

func checkEmail(v *ValidationError, field, email string) {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		v.add(field, "must be a valid email address")
	}
}

func checkPassword(v *ValidationError, field, password string) {
	switch {
	case utf8.RuneCountInString(password) < minPasswordLen:
		v.add(field, "must be at least 8 characters")
	case len(password) > maxPasswordBytes:
		v.add(field, "must be at most 72 bytes")
	case strings.TrimSpace(password) == "":
		v.add(field, "must not be blank")
	}
}

func checkName(v *ValidationError, field, name string) {
	switch {
	case strings.TrimSpace(name) == "":
		v.add(field, "must not be empty")
	case utf8.RuneCountInString(name) > maxNameLen:
		v.add(field, "must be at most 255 characters")
	}
}

func validateCredentials(email, password string) error {
	v := &ValidationError{}
	checkEmail(v, "email", email)
	checkPassword(v, "password", password)
	return v.orNil()
}

type RegisterInput struct {
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Password  string `json:"password"`
}

func (in RegisterInput) Validate() error {
	v := &ValidationError{}
	checkEmail(v, "email", in.Email)
	checkName(v, "firstname", in.Firstname)
	checkName(v, "lastname", in.Lastname)
	checkPassword(v, "password", in.Password)
	return v.orNil()
}

// UpdateInput fields are optional; nil means unchanged.
type UpdateInput struct {
	Email     *string `json:"email"`
	Firstname *string `json:"firstname"`
	Lastname  *string `json:"lastname"`
	Password  *string `json:"password"`
}

func (in UpdateInput) Validate() error {
	v := &ValidationError{}
	if in.Email == nil && in.Firstname == nil && in.Lastname == nil && in.Password == nil {
		v.add("body", "at least one field is required")
	}
	if in.Email != nil {
		checkEmail(v, "email", *in.Email)
	}
	if in.Firstname != nil {
		checkName(v, "firstname", *in.Firstname)
	}
	if in.Lastname != nil {
		checkName(v, "lastname", *in.Lastname)
	}
	if in.Password != nil {
		checkPassword(v, "password", *in.Password)
	}
	return v.orNil()
}
