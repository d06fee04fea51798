// Package handler carries the HTTP surface. Handlers validate input, resolve
// the acting principal and dispatch to storage; every business-rule failure
// is detected before a mutating call and mapped to a status code here.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Kr1shnam00rth1/Bank-API/internal/adapter/middleware"
	"github.com/Kr1shnam00rth1/Bank-API/internal/core/domain"
)

// AccountStore is the account-directory contract the handlers need.
type AccountStore interface {
	Create(ctx context.Context, email, passwordHash, fullName, phoneNumber string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByAccountNumber(ctx context.Context, accountNumber int64) (*domain.Account, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fullName, phoneNumber *string) error
	SetPasswordByEmail(ctx context.Context, email, passwordHash string) error
}

// CashierStore holds staff credentials.
type CashierStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Cashier, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Cashier, error)
	SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// OTPStore keeps one outstanding hashed code per email.
type OTPStore interface {
	Upsert(ctx context.Context, email, codeHash string, expiresAt time.Time) error
	Get(ctx context.Context, email string) (*domain.OTPRecord, error)
	Delete(ctx context.Context, email string) error
}

// Ledger is the money-movement core.
type Ledger interface {
	Deposit(ctx context.Context, accountNumber int64, amount int64) error
	Withdraw(ctx context.Context, accountNumber int64, amount int64) error
	Transfer(ctx context.Context, senderID uuid.UUID, receiverAccount int64, amount int64) error
	History(ctx context.Context, accountNumber int64) ([]domain.Transaction, error)
}

// MailQueue dispatches outbound email out-of-band.
type MailQueue interface {
	Enqueue(ctx context.Context, recipient, subject, body string) error
}

// TokenIssuer mints session tokens after credential checks succeed.
type TokenIssuer interface {
	Mint(principalID uuid.UUID, role string) (string, error)
}

func principalFrom(c *fiber.Ctx) domain.Principal {
	p, _ := c.Locals(middleware.PrincipalKey).(domain.Principal)
	return p
}

// fail maps a business-rule error to its status code. Anything unrecognized
// is a storage or programming failure: logged server-side, surfaced as a
// plain 500.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "Amount Invalid."})
	case errors.Is(err, domain.ErrInsufficientBalance):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "Insufficient balance"})
	case errors.Is(err, domain.ErrSelfTransfer):
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "Transfer denied. Cannot transfer funds to your own account."})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"message": "User account does not exist"})
	case errors.Is(err, domain.ErrEmailTaken):
		return c.Status(http.StatusConflict).JSON(fiber.Map{"message": "User already exists with the given email"})
	case errors.Is(err, domain.ErrOTPExpired):
		return c.Status(http.StatusGone).JSON(fiber.Map{"message": "Expired OTP"})
	case errors.Is(err, domain.ErrAccountLocked):
		return c.Status(http.StatusLocked).JSON(fiber.Map{"message": "Account is blocked"})
	default:
		slog.Error("Internal error", "path", c.Path(), "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": message})
}
