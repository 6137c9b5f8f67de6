package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type EmailVerificationRepository struct {
	DB *pgxpool.Pool
}

func NewEmailVerificationRepository(db *pgxpool.Pool) *EmailVerificationRepository {
	return &EmailVerificationRepository{DB: db}
}

// Upsert replaces any outstanding verification record for the email in a
// single statement, so concurrent resends cannot interleave a read and a
// write.
func (r *EmailVerificationRepository) Upsert(ctx context.Context, email, tokenHash, code string, expiresAt time.Time) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO email_verifications (email, token_hash, code, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email)
		DO UPDATE SET token_hash = EXCLUDED.token_hash,
		              code = EXCLUDED.code,
		              expires_at = EXCLUDED.expires_at
	`, email, tokenHash, code, expiresAt)
	return err
}

func (r *EmailVerificationRepository) Delete(ctx context.Context, email string) error {
	_, err := r.DB.Exec(ctx,
		`DELETE FROM email_verifications WHERE email = $1`, email)
	return err
}
