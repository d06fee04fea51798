package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kr1shnam00rth1/Bank-API/internal/core/domain"
)

type AccountRepository struct {
	db   *pgxpool.Pool
	node *snowflake.Node
}

func NewAccountRepository(db *pgxpool.Pool) (*AccountRepository, error) {
	// Account numbers are public-facing and must be unique across the bank;
	// snowflake IDs give us that without a round trip to the database.
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}
	return &AccountRepository{db: db, node: node}, nil
}

const accountColumns = `id, account_number, email, full_name, phone_number, password_hash, balance, status, created_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var acc domain.Account
	err := row.Scan(
		&acc.ID, &acc.AccountNumber, &acc.Email, &acc.FullName,
		&acc.PhoneNumber, &acc.PasswordHash, &acc.Balance, &acc.Status, &acc.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// Create registers a new account with a zero balance and an explicit
// 'pending' status, minting a fresh public account number.
func (r *AccountRepository) Create(ctx context.Context, email, passwordHash, fullName, phoneNumber string) (*domain.Account, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrEmailTaken
	}

	query := `
		INSERT INTO accounts (id, account_number, email, full_name, phone_number, password_hash, balance, status)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7)
		RETURNING ` + accountColumns
	row := r.db.QueryRow(ctx, query,
		uuid.New(), r.node.Generate().Int64(), email, fullName, phoneNumber, passwordHash, domain.StatusPending,
	)
	acc, err := scanAccount(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return acc, nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return scanAccount(r.db.QueryRow(ctx, query, email))
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.db.QueryRow(ctx, query, id))
}

func (r *AccountRepository) GetByAccountNumber(ctx context.Context, accountNumber int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`
	return scanAccount(r.db.QueryRow(ctx, query, accountNumber))
}

// UpdateProfile overwrites only the supplied fields; a nil field leaves the
// stored value unchanged.
func (r *AccountRepository) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, phoneNumber *string) error {
	query := `
		UPDATE accounts
		SET full_name = COALESCE($2, full_name), phone_number = COALESCE($3, phone_number)
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, fullName, phoneNumber)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetPasswordByEmail unconditionally overwrites the password hash. Callers
// must have already proven possession of the old password or a valid OTP.
func (r *AccountRepository) SetPasswordByEmail(ctx context.Context, email, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE accounts SET password_hash = $2 WHERE email = $1`, email, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
