package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/Kr1shnam00rth1/Bank-API/internal/adapter/middleware"
	"github.com/Kr1shnam00rth1/Bank-API/internal/core/domain"
	"github.com/Kr1shnam00rth1/Bank-API/internal/core/security"
)

type CashierHandler struct {
	Cashiers CashierStore
	Accounts AccountStore
	Ledger   Ledger
	Tokens   TokenIssuer
}

type CashierLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CashOpRequest struct {
	AccountNumber int64           `json:"accountNumber"`
	Amount        decimal.Decimal `json:"amount"`
}

type AccountInfoRequest struct {
	AccountNumber int64 `json:"accountNumber"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// Login authenticates a cashier directly against email and password; no OTP
// step. Unknown email and wrong password return the identical 401.
// POST /api/cashier/login
func (h *CashierHandler) Login(c *fiber.Ctx) error {
	var req CashierLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	cashier, err := h.Cashiers.GetByEmail(c.Context(), req.Email)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && !security.CheckPassword(req.Password, cashier.PasswordHash)) {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password"})
	}
	if err != nil {
		return fail(c, err)
	}

	token, err := h.Tokens.Mint(cashier.ID, domain.RoleCashier)
	if err != nil {
		return fail(c, err)
	}

	middleware.SetSessionCookie(c, token)
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Login successful"})
}

// Deposit credits a customer account over the counter.
// POST /api/cashier/deposit
func (h *CashierHandler) Deposit(c *fiber.Ctx) error {
	var req CashOpRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.AccountNumber == 0 {
		return badRequest(c, "Account number and amount are required")
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		return fail(c, err)
	}

	if err := h.Ledger.Deposit(c.Context(), req.AccountNumber, amount); err != nil {
		return fail(c, err)
	}

	slog.Info("Deposit completed", "account_number", req.AccountNumber, "amount", amount)
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Deposit successful"})
}

// Withdrawal debits a customer account over the counter; rejected when the
// balance cannot cover the amount.
// POST /api/cashier/withdrawal
func (h *CashierHandler) Withdrawal(c *fiber.Ctx) error {
	var req CashOpRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.AccountNumber == 0 {
		return badRequest(c, "Account number and amount are required")
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		return fail(c, err)
	}

	if err := h.Ledger.Withdraw(c.Context(), req.AccountNumber, amount); err != nil {
		return fail(c, err)
	}

	slog.Info("Withdrawal completed", "account_number", req.AccountNumber, "amount", amount)
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Withdrawal successful"})
}

// UserAccountInfo returns the summary a cashier needs before an over-the-
// counter operation.
// POST /api/cashier/userAccountInfo
func (h *CashierHandler) UserAccountInfo(c *fiber.Ctx) error {
	var req AccountInfoRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.AccountNumber == 0 {
		return badRequest(c, "Account number is required")
	}

	acc, err := h.Accounts.GetByAccountNumber(c.Context(), req.AccountNumber)
	if err != nil {
		return fail(c, err)
	}
	if acc.Status == domain.StatusBlocked {
		return c.Status(http.StatusLocked).JSON(fiber.Map{"message": "User account is blocked"})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"accountNumber": acc.AccountNumber,
		"fullName":      acc.FullName,
		"balance":       domain.FormatAmount(acc.Balance),
	})
}

// ChangePassword rotates the acting cashier's own password after verifying
// the old one.
// POST /api/cashier/changePassword
func (h *CashierHandler) ChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return badRequest(c, "New Password and Old Password are required")
	}

	principal := principalFrom(c)
	cashier, err := h.Cashiers.GetByID(c.Context(), principal.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"message": "Cashier not found"})
	}
	if err != nil {
		return fail(c, err)
	}

	if !security.CheckPassword(req.OldPassword, cashier.PasswordHash) {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "Your Old Password is incorrect"})
	}

	passwordHash, err := security.HashPassword(req.NewPassword)
	if err != nil {
		return fail(c, err)
	}
	if err := h.Cashiers.SetPassword(c.Context(), cashier.ID, passwordHash); err != nil {
		return fail(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Password changed successfully"})
}
