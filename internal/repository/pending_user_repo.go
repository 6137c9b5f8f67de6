package repository

import (
	"context"
	"errors"

	"github.com/clementdevtech/general-hardware/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PendingUserRepository struct {
	DB *pgxpool.Pool
}

func NewPendingUserRepository(db *pgxpool.Pool) *PendingUserRepository {
	return &PendingUserRepository{DB: db}
}

func (r *PendingUserRepository) Create(ctx context.Context, p *model.PendingUser) error {
	err := r.DB.QueryRow(ctx, `
		INSERT INTO pending_users (email, username, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, p.Email, p.Username, p.PasswordHash).Scan(&p.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// FindByEmailOrUsername ignores rows past the 7-day retention window;
// an expired pending registration must read as absent.
func (r *PendingUserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*model.PendingUser, error) {
	var p model.PendingUser
	err := r.DB.QueryRow(ctx, `
		SELECT email, username, password_hash, created_at
		FROM pending_users
		WHERE (email=$1 OR username=$2)
		  AND created_at > now() - interval '7 days'
		LIMIT 1
	`, email, username).Scan(&p.Email, &p.Username, &p.PasswordHash, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PendingUserRepository) FindByEmail(ctx context.Context, email string) (*model.PendingUser, error) {
	return r.FindByEmailOrUsername(ctx, email, "")
}

// DeleteExpired reclaims rows past the retention window. Expiry is
// already enforced at read time; this just keeps the table small.
func (r *PendingUserRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.DB.Exec(ctx,
		`DELETE FROM pending_users WHERE created_at <= now() - interval '7 days'`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
