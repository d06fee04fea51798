package domain

import "errors"

// Business-rule failures. Handlers map these to HTTP statuses; everything
// else that comes out of storage is treated as an internal error.
var (
	// ErrNotFound indicates the account, cashier or email does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrUnauthorized indicates a failed credential, OTP or token check.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrAccountLocked indicates the account's status forbids the operation.
	ErrAccountLocked = errors.New("account is blocked or pending")
	// ErrInsufficientBalance indicates the balance cannot cover the amount.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrEmailTaken indicates a registration against an existing email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrOTPExpired indicates the OTP record is missing or past its expiry.
	ErrOTPExpired = errors.New("otp expired")
	// ErrSelfTransfer indicates sender and receiver are the same account.
	ErrSelfTransfer = errors.New("cannot transfer to own account")
	// ErrInvalidAmount indicates a non-positive or sub-cent amount.
	ErrInvalidAmount = errors.New("amount invalid")
)
