package model

import "time"

// User represents an account row in the `users` table. The password
// hash never leaves the repository layer through API responses;
// handlers build sanitized projections instead. Accounts are soft
// deactivated via IsActive, never deleted.
type User struct {
	ID             uint64     // users.id
	Email          string     // users.email
	PasswordHash   string     // users.password_hash
	Name           string     // users.name
	Phone          string     // users.phone
	Address        string     // users.address
	AvatarURL      string     // users.avatar_url
	Role           string     // users.role
	IsActive       bool       // users.is_active
	EmailVerified  bool       // users.email_verified
	ResetTokenHash *string    // users.reset_token_hash (nullable)
	ResetExpiresAt *time.Time // users.reset_expires_at (nullable)
	LastLoginAt    *time.Time // users.last_login_at (nullable)
	CreatedAt      time.Time  // users.created_at
	UpdatedAt      time.Time  // users.updated_at
}

// Roles stored in users.role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
