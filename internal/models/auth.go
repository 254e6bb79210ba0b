package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ClientMeta is the caller's network identity, recorded on sessions and audit
// entries. It never travels in a request body.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// LoginRequest carries the credentials of a student, teacher or admin.
type LoginRequest struct {
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required"`
	Client   ClientMeta `json:"-"`
}

// RefreshTokenRequest presents a refresh token for rotation.
type RefreshTokenRequest struct {
	RefreshToken string     `json:"refresh_token" validate:"required"`
	Client       ClientMeta `json:"-"`
}

// ChangePasswordRequest payload for updating password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// TokenPair is issued by login and by every refresh rotation.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
}

// Session is the login result.
type Session struct {
	TokenPair
	Account Account `json:"account"`
}

// Account is the signed-in principal as clients see it, including what the
// role is allowed to do.
type Account struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	FullName     string       `json:"full_name"`
	Role         UserRole     `json:"role"`
	Capabilities []Capability `json:"capabilities"`
}

// NewAccount builds the client view of a principal.
func NewAccount(id, email, fullName string, role UserRole) Account {
	return Account{ID: id, Email: email, FullName: fullName, Role: role, Capabilities: Capabilities(role)}
}

// AccessClaims is the access token payload. The subject is the principal id.
type AccessClaims struct {
	Role     UserRole `json:"role"`
	Email    string   `json:"email,omitempty"`
	FullName string   `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// NewAccessClaims returns claims for p with only the subject set.
func NewAccessClaims(p Principal) *AccessClaims {
	return &AccessClaims{Role: p.Role, RegisteredClaims: jwt.RegisteredClaims{Subject: p.ID}}
}

// Principal extracts the acting principal from verified claims.
func (c *AccessClaims) Principal() Principal {
	return Principal{ID: c.Subject, Role: c.Role}
}

// RefreshSession is a persisted refresh token. Rotation revokes the presented
// session and opens a new one.
type RefreshSession struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	Token     string     `db:"token" json:"-"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	Revoked   bool       `db:"revoked" json:"revoked"`
	RevokedAt *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
	IPAddress string     `db:"ip_address" json:"ip_address"`
	UserAgent string     `db:"user_agent" json:"user_agent"`
}

// Usable reports whether the session can still be exchanged at now.
func (s *RefreshSession) Usable(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}
