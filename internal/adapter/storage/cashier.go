package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kr1shnam00rth1/Bank-API/internal/core/domain"
)

type CashierRepository struct {
	db *pgxpool.Pool
}

func NewCashierRepository(db *pgxpool.Pool) *CashierRepository {
	return &CashierRepository{db: db}
}

func scanCashier(row pgx.Row) (*domain.Cashier, error) {
	var c domain.Cashier
	err := row.Scan(&c.ID, &c.Email, &c.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CashierRepository) GetByEmail(ctx context.Context, email string) (*domain.Cashier, error) {
	return scanCashier(r.db.QueryRow(ctx,
		`SELECT id, email, password_hash FROM cashiers WHERE email = $1`, email))
}

func (r *CashierRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Cashier, error) {
	return scanCashier(r.db.QueryRow(ctx,
		`SELECT id, email, password_hash FROM cashiers WHERE id = $1`, id))
}

func (r *CashierRepository) SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE cashiers SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
