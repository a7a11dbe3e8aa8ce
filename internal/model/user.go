package model

import "time"

// Role names stored in the users.role column and in the JWT "role" claim.
// ADMIN accounts administer tournaments and drive auctions; MANAGER accounts
// belong to team managers and may place bids.
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
)

// User represents an application account as stored in the `users` table.
// Passwords are stored only as bcrypt hashes.  Handlers define their own
// response types with JSON tags; this struct is used by the repository
// layer.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email (unique)
	PasswordHash string    // users.password_hash (bcrypt)
	Role         string    // users.role (ADMIN or MANAGER)
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  The plain
// token is never stored; only its SHA-256 hash.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash (SHA-256 hex)
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (NULL if still active)
	CreatedAt time.Time  // refresh_tokens.created_at
}
