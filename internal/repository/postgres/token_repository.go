package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cartside/backend/internal/domain"
)

// RefreshTokenRepository enforces the one-active-record-per-user invariant
// through the refresh_tokens primary key: every issuance is an upsert keyed
// on user_id, so rotation overwrites rather than appends.
type RefreshTokenRepository struct {
	db *pgxpool.Pool
}

func NewRefreshTokenRepository(db *pgxpool.Pool) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Upsert(userID uuid.UUID, token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		INSERT INTO refresh_tokens (user_id, token, blacklisted, created_at, updated_at)
		VALUES ($1, $2, false, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET token = EXCLUDED.token, blacklisted = false, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, userID, token)
	return err
}

func (r *RefreshTokenRepository) FindActive(token string) (*domain.RefreshToken, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `
		SELECT user_id, token, blacklisted, created_at, updated_at
		FROM refresh_tokens WHERE token = $1 AND blacklisted = false
	`

	record := &domain.RefreshToken{}
	err := r.db.QueryRow(ctx, query, token).Scan(
		&record.UserID,
		&record.Token,
		&record.Blacklisted,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *RefreshTokenRepository) Blacklist(token string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `UPDATE refresh_tokens SET blacklisted = true, updated_at = NOW() WHERE token = $1`
	_, err := r.db.Exec(ctx, query, token)
	return err
}

func (r *RefreshTokenRepository) DeleteExpired(olderThan time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	query := `DELETE FROM refresh_tokens WHERE updated_at < NOW() - make_interval(secs => $1)`
	_, err := r.db.Exec(ctx, query, olderThan.Seconds())
	return err
}
