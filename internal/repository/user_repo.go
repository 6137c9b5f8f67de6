package repository

import (
	"context"
	"errors"

	"github.com/clementdevtech/general-hardware/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	DB *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	query := `SELECT id, email, username, password_hash, role, verified, created_at
			FROM users
			WHERE email=$1`
	err := r.DB.QueryRow(ctx, query, email).
		Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.Verified, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	query := `SELECT id, email, username, password_hash, role, verified, created_at
			FROM users
			WHERE id=$1`
	err := r.DB.QueryRow(ctx, query, id).
		Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.Verified, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByEmailOrUsername returns the first account matching either field.
func (r *UserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*model.User, error) {
	var u model.User
	query := `SELECT id, email, username, password_hash, role, verified, created_at
			FROM users
			WHERE email=$1 OR username=$2
			LIMIT 1`
	err := r.DB.QueryRow(ctx, query, email, username).
		Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Role, &u.Verified, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE users SET password_hash=$1 WHERE email=$2`, passwordHash, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// PromotePending turns a pending registration into an account. The three
// effects (consume verification record, consume pending row, insert user)
// run in one transaction, so concurrent verifications of the same email
// yield exactly one success; the loser sees ErrVerificationNotFound or
// ErrNoPendingUser.
//
// tokenHash may be empty when the caller verified with a numeric code
// only; code may be empty when a token alone was supplied. The delete
// matches nothing (and nothing is consumed) when neither constraint
// holds or the record is expired.
func (r *UserRepository) PromotePending(ctx context.Context, email, tokenHash, code string) (*model.User, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		DELETE FROM email_verifications
		WHERE email = $1
		  AND expires_at > now()
		  AND (
			($2 <> '' AND token_hash = $2 AND ($3 = '' OR code = $3))
			OR ($2 = '' AND $3 <> '' AND code = $3)
		  )
	`, email, tokenHash, code)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrVerificationNotFound
	}

	var u model.User
	err = tx.QueryRow(ctx, `
		DELETE FROM pending_users
		WHERE email = $1 AND created_at > now() - interval '7 days'
		RETURNING email, username, password_hash
	`, email).Scan(&u.Email, &u.Username, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoPendingUser
		}
		return nil, err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO users (email, username, password_hash, role, verified)
		VALUES ($1, $2, $3, 'user', TRUE)
		RETURNING id, role, verified, created_at
	`, u.Email, u.Username, u.PasswordHash).Scan(&u.ID, &u.Role, &u.Verified, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &u, nil
}
