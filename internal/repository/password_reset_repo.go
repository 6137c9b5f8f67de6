package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PasswordResetRepository struct {
	DB *pgxpool.Pool
}

func NewPasswordResetRepository(db *pgxpool.Pool) *PasswordResetRepository {
	return &PasswordResetRepository{DB: db}
}

func (r *PasswordResetRepository) Upsert(ctx context.Context, email, tokenHash string, expiresAt time.Time) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO password_resets (email, token_hash, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email)
		DO UPDATE SET token_hash = EXCLUDED.token_hash,
		              expires_at = EXCLUDED.expires_at
	`, email, tokenHash, expiresAt)
	return err
}

// Consume deletes the unexpired record matching the digest and returns
// its email. The conditional delete is what gates success: of two racing
// resets with the same token, exactly one gets the row back, the other
// gets ErrNotFound.
func (r *PasswordResetRepository) Consume(ctx context.Context, tokenHash string) (string, error) {
	var email string
	err := r.DB.QueryRow(ctx, `
		DELETE FROM password_resets
		WHERE token_hash = $1 AND expires_at > now()
		RETURNING email
	`, tokenHash).Scan(&email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return email, nil
}
