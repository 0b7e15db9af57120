package domain

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is the persisted server-side half of a refresh credential.
// The table is keyed by user ID, so at most one record exists per user; a new
// login or rotation overwrites the previous one instead of appending.
type RefreshToken struct {
	UserID      uuid.UUID `json:"user_id"`
	Token       string    `json:"-"`
	Blacklisted bool      `json:"blacklisted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RefreshTokenRepository interface {
	// Upsert replaces any existing record for the user and clears the
	// blacklisted flag.
	Upsert(userID uuid.UUID, token string) error
	// FindActive returns the record matching token with blacklisted = false,
	// or nil when no such record exists.
	FindActive(token string) (*RefreshToken, error)
	// Blacklist soft-revokes the record holding token. Idempotent.
	Blacklist(token string) error
	DeleteExpired(olderThan time.Duration) error
}
