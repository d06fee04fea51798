package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status gates what an account is allowed to do. New accounts start as
// StatusPending until the bank activates them; blocked accounts are frozen
// for every money operation.
type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusBlocked Status = "blocked"
)

// TxKind tags a transaction record. A transfer always produces a pair:
// transfer_out on the sender's account number, transfer_in on the receiver's.
type TxKind string

const (
	TxDeposit     TxKind = "deposit"
	TxWithdrawal  TxKind = "withdrawal"
	TxTransferOut TxKind = "transfer_out"
	TxTransferIn  TxKind = "transfer_in"
)

// Account is a customer account. AccountNumber is the public-facing
// identifier; ID is internal only. Balance is held in minor units (cents).
type Account struct {
	ID            uuid.UUID `json:"-"`
	AccountNumber int64     `json:"accountNumber"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	PhoneNumber   string    `json:"phoneNumber"`
	PasswordHash  string    `json:"-"`
	Balance       int64     `json:"balance"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Cashier is a staff principal. Credentials alone gate access; there is no
// status field.
type Cashier struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
}

// Transaction is one immutable ledger record. ReferenceAccount is nil except
// for transfers, where it names the counterparty.
type Transaction struct {
	ID               uuid.UUID `json:"id"`
	AccountNumber    int64     `json:"accountNumber"`
	ReferenceAccount *int64    `json:"referenceAccount,omitempty"`
	Amount           int64     `json:"amount"`
	Kind             TxKind    `json:"type"`
	CreatedAt        time.Time `json:"createdAt"`
}

// OTPRecord holds the one outstanding code for an email. Only the bcrypt hash
// of the code is stored.
type OTPRecord struct {
	Email     string
	CodeHash  string
	ExpiresAt time.Time
}

// Principal roles carried inside session tokens.
const (
	RoleUser    = "user"
	RoleCashier = "cashier"
)

// Principal is the authenticated identity attached to a request after the
// session cookie has been verified.
type Principal struct {
	ID   uuid.UUID
	Role string
}
