package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kr1shnam00rth1/Bank-API/internal/core/domain"
)

// OTPRepository keeps at most one live code per email; a new issue replaces
// whatever was outstanding.
type OTPRepository struct {
	db *pgxpool.Pool
}

func NewOTPRepository(db *pgxpool.Pool) *OTPRepository {
	return &OTPRepository{db: db}
}

func (r *OTPRepository) Upsert(ctx context.Context, email, codeHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO otps (email, code_hash, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET code_hash = EXCLUDED.code_hash, expires_at = EXCLUDED.expires_at`
	_, err := r.db.Exec(ctx, query, email, codeHash, expiresAt)
	return err
}

func (r *OTPRepository) Get(ctx context.Context, email string) (*domain.OTPRecord, error) {
	var rec domain.OTPRecord
	err := r.db.QueryRow(ctx,
		`SELECT email, code_hash, expires_at FROM otps WHERE email = $1`, email).
		Scan(&rec.Email, &rec.CodeHash, &rec.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete consumes a code after successful verification so it cannot be
// replayed.
func (r *OTPRepository) Delete(ctx context.Context, email string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM otps WHERE email = $1`, email)
	return err
}
