package model

import "time"

// User represents a staff account as stored in the `users` table.
// Every terminal session belongs to a staff member; the role decides
// which endpoints they may call (managers can reset tables and clear
// checks, servers ring in orders).
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique email address used to sign in.
//  PasswordHash – bcrypt hashed password.
//  Role         – staff role (MANAGER or SERVER).
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    Role         string    // users.role
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// Staff roles accepted in the users.role column and the JWT role claim.
const (
    RoleManager = "MANAGER"
    RoleServer  = "SERVER"
)

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a staff account and carries expiry and
// revocation metadata.  The plain token is never stored; only its
// SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (nil if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
