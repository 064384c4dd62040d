package entity

import (
	"time"
)

// AuthProvider tags how an account authenticates.
type AuthProvider string

const (
	AuthProviderLocal    AuthProvider = "local"
	AuthProviderExternal AuthProvider = "external"
)

// User is an account record. Username and email are globally unique;
// the store enforces both. The password is only ever held as a hash.
type User struct {
	id           string
	username     string
	email        string
	passwordHash string
	superuser    bool
	staff        bool
	provider     AuthProvider
	createdAt    time.Time
	updatedAt    time.Time
}

// NewUser creates a new account (factory method). The password hash
// must already be computed; this package never sees plaintext.
func NewUser(id, username, email, passwordHash string) (*User, error) {
	if id == "" {
		return nil, ErrInvalidUserID
	}
	if username == "" {
		return nil, ErrMissingUsername
	}
	if email == "" {
		return nil, ErrMissingEmail
	}

	now := time.Now()
	return &User{
		id:           id,
		username:     username,
		email:        email,
		passwordHash: passwordHash,
		provider:     AuthProviderLocal,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructUser rebuilds an account from the persistence layer.
func ReconstructUser(
	id, username, email, passwordHash string,
	superuser, staff bool,
	provider AuthProvider,
	createdAt, updatedAt time.Time,
) *User {
	return &User{
		id:           id,
		username:     username,
		email:        email,
		passwordHash: passwordHash,
		superuser:    superuser,
		staff:        staff,
		provider:     provider,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (u *User) ID() string             { return u.id }
func (u *User) Username() string       { return u.username }
func (u *User) Email() string          { return u.email }
func (u *User) PasswordHash() string   { return u.passwordHash }
func (u *User) IsSuperuser() bool      { return u.superuser }
func (u *User) IsStaff() bool          { return u.staff }
func (u *User) Provider() AuthProvider { return u.provider }
func (u *User) CreatedAt() time.Time   { return u.createdAt }
func (u *User) UpdatedAt() time.Time   { return u.updatedAt }

// MarkStaff flags the account as staff (seeded bot persona).
func (u *User) MarkStaff() {
	u.staff = true
	u.updatedAt = time.Now()
}
