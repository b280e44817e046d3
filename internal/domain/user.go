package domain

import (
	"context"
	"time"
)

// Role names as stored. The "ROLE_" claim prefix is applied at token
// issuance, never persisted.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User represents the central identity entity of the system.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`    // Never expose the password hash in JSON
	Role         string    `json:"role"` // RBAC role (USER, ADMIN)
	MFAEnabled   bool      `json:"mfa_enabled"`
	MFASecret    string    `json:"-"` // TOTP secret key
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RoleClaim returns the role as embedded in tokens, e.g. "ADMIN" -> "ROLE_ADMIN".
func (u *User) RoleClaim() string {
	return "ROLE_" + u.Role
}

// AuthResponse defines the payload returned after a successful login.
type AuthResponse struct {
	Token       string   `json:"token"`
	Type        string   `json:"type"` // always "Bearer"
	PrincipalID string   `json:"principalId"`
	Roles       []string `json:"roles"`
}

// UserRepository defines the contract for user data persistence.
// This interface is implemented in the 'internal/repository' package.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, limit, offset int) ([]*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error

	// LogSecurityEvent records an immutable audit entry for auth outcomes.
	LogSecurityEvent(ctx context.Context, userID, eventType, ip string, metadata map[string]interface{}) error
}
