package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kr1shnam00rth1/Bank-API/internal/core/domain"
)

// LedgerRepository performs every balance mutation. Each operation runs the
// status/balance check and the write inside one transaction with the touched
// rows locked, so two racing withdrawals can never both observe the
// pre-mutation balance.
type LedgerRepository struct {
	db *pgxpool.Pool
}

func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Deposit credits an account and appends one deposit record.
func (r *LedgerRepository) Deposit(ctx context.Context, accountNumber int64, amount int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status domain.Status
	err = tx.QueryRow(ctx,
		`SELECT status FROM accounts WHERE account_number = $1 FOR UPDATE`, accountNumber).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	if status == domain.StatusBlocked {
		return domain.ErrAccountLocked
	}

	if _, err := tx.Exec(ctx,
		`UPDATE accounts SET balance = balance + $1 WHERE account_number = $2`, amount, accountNumber); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO transactions (id, account_number, amount, type) VALUES ($1, $2, $3, $4)`,
		uuid.New(), accountNumber, amount, domain.TxDeposit); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Withdraw debits an account and appends one withdrawal record. The balance
// check happens on the locked row.
func (r *LedgerRepository) Withdraw(ctx context.Context, accountNumber int64, amount int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var balance int64
	var status domain.Status
	err = tx.QueryRow(ctx,
		`SELECT balance, status FROM accounts WHERE account_number = $1 FOR UPDATE`, accountNumber).
		Scan(&balance, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	if status == domain.StatusBlocked {
		return domain.ErrAccountLocked
	}
	if balance < amount {
		return domain.ErrInsufficientBalance
	}

	if _, err := tx.Exec(ctx,
		`UPDATE accounts SET balance = balance - $1 WHERE account_number = $2`, amount, accountNumber); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO transactions (id, account_number, amount, type) VALUES ($1, $2, $3, $4)`,
		uuid.New(), accountNumber, amount, domain.TxWithdrawal); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Transfer moves funds from the sender (looked up by principal id) to the
// receiver's account number. Both balance mutations and both transaction
// records commit together or not at all. Rows are locked in ascending
// account-number order so two opposing transfers cannot deadlock.
func (r *LedgerRepository) Transfer(ctx context.Context, senderID uuid.UUID, receiverAccount int64, amount int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var senderAccount int64
	err = tx.QueryRow(ctx,
		`SELECT account_number FROM accounts WHERE id = $1`, senderID).Scan(&senderAccount)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	if senderAccount == receiverAccount {
		return domain.ErrSelfTransfer
	}

	first, second := senderAccount, receiverAccount
	if second < first {
		first, second = second, first
	}
	rows, err := tx.Query(ctx,
		`SELECT account_number, balance, status FROM accounts
		 WHERE account_number = $1 OR account_number = $2
		 ORDER BY account_number FOR UPDATE`, first, second)
	if err != nil {
		return err
	}

	locked := make(map[int64]struct {
		balance int64
		status  domain.Status
	}, 2)
	for rows.Next() {
		var number, balance int64
		var status domain.Status
		if err := rows.Scan(&number, &balance, &status); err != nil {
			rows.Close()
			return err
		}
		locked[number] = struct {
			balance int64
			status  domain.Status
		}{balance, status}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	sender, ok := locked[senderAccount]
	if !ok {
		return domain.ErrNotFound
	}
	receiver, ok := locked[receiverAccount]
	if !ok {
		return domain.ErrNotFound
	}

	// Senders must be fully active; a pending account can receive deposits
	// over the counter but cannot originate transfers.
	if sender.status != domain.StatusActive {
		return domain.ErrAccountLocked
	}
	if sender.balance < amount {
		return domain.ErrInsufficientBalance
	}
	if receiver.status == domain.StatusBlocked {
		return domain.ErrAccountLocked
	}

	if _, err := tx.Exec(ctx,
		`UPDATE accounts SET balance = balance - $1 WHERE account_number = $2`, amount, senderAccount); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE accounts SET balance = balance + $1 WHERE account_number = $2`, amount, receiverAccount); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO transactions (id, account_number, reference_account, amount, type) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), senderAccount, receiverAccount, amount, domain.TxTransferOut); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO transactions (id, account_number, reference_account, amount, type) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), receiverAccount, senderAccount, amount, domain.TxTransferIn); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// History returns the transaction records on an account, newest first.
func (r *LedgerRepository) History(ctx context.Context, accountNumber int64) ([]domain.Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, account_number, reference_account, amount, type, created_at
		FROM transactions
		WHERE account_number = $1
		ORDER BY created_at DESC`, accountNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.AccountNumber, &t.ReferenceAccount, &t.Amount, &t.Kind, &t.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, t)
	}
	return history, rows.Err()
}
