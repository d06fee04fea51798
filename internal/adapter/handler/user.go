package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/Kr1shnam00rth1/Bank-API/internal/adapter/middleware"
	"github.com/Kr1shnam00rth1/Bank-API/internal/core/domain"
	"github.com/Kr1shnam00rth1/Bank-API/internal/core/notifications"
	"github.com/Kr1shnam00rth1/Bank-API/internal/core/security"
)

type UserHandler struct {
	Accounts AccountStore
	OTPs     OTPStore
	Ledger   Ledger
	Mail     MailQueue
	Tokens   TokenIssuer
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"fullName"`
	PhoneNumber string `json:"phoneNumber"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyOtpRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type SendOtpRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

type FundTransferRequest struct {
	ReferenceAccount int64           `json:"referenceAccount"`
	Amount           decimal.Decimal `json:"amount"`
}

type UpdateProfileRequest struct {
	PhoneNumber *string `json:"phoneNumber"`
	FullName    *string `json:"fullName"`
}

// Register creates a customer account. New accounts start as 'pending' with a
// zero balance.
// POST /api/user/register
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" || req.FullName == "" || req.PhoneNumber == "" {
		return badRequest(c, "Missing required input fields")
	}

	passwordHash, err := security.HashPassword(req.Password)
	if err != nil {
		return fail(c, err)
	}

	acc, err := h.Accounts.Create(c.Context(), req.Email, passwordHash, req.FullName, req.PhoneNumber)
	if err != nil {
		return fail(c, err)
	}

	slog.Info("Account registered", "account_number", acc.AccountNumber)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"message": "User registered successfully"})
}

// Login is step one of the customer login: password check, then OTP issuance.
// The response acknowledges dispatch but never carries the code. Unknown
// email and wrong password produce the identical 401.
// POST /api/user/login
func (h *UserHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	acc, err := h.Accounts.GetByEmail(c.Context(), req.Email)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && !security.CheckPassword(req.Password, acc.PasswordHash)) {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password"})
	}
	if err != nil {
		return fail(c, err)
	}

	if err := h.issueOTP(c.Context(), req.Email); err != nil {
		return fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "OTP sent to your registered email", "email": req.Email})
}

// VerifyOtp is step two: a matching, unexpired code mints the session token.
// The code is consumed on success so replaying it fails with 410.
// POST /api/user/verifyOtp
func (h *UserHandler) VerifyOtp(c *fiber.Ctx) error {
	var req VerifyOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.OTP == "" {
		return badRequest(c, "Email and OTP are required")
	}

	if err := h.checkOTP(c.Context(), req.Email, req.OTP); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid OTP"})
		}
		return fail(c, err)
	}

	acc, err := h.Accounts.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return fail(c, err)
	}

	token, err := h.Tokens.Mint(acc.ID, domain.RoleUser)
	if err != nil {
		return fail(c, err)
	}

	if err := h.OTPs.Delete(c.Context(), req.Email); err != nil {
		slog.Error("Failed to consume OTP", "error", err)
	}

	middleware.SetSessionCookie(c, token)
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "OTP verified successfully"})
}

// SendOtp issues a fresh password-reset code for a known email.
// POST /api/user/sendOtp
func (h *UserHandler) SendOtp(c *fiber.Ctx) error {
	var req SendOtpRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" {
		return badRequest(c, "Email is required")
	}

	if _, err := h.Accounts.GetByEmail(c.Context(), req.Email); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"message": "No user account with given email"})
		}
		return fail(c, err)
	}

	if err := h.issueOTP(c.Context(), req.Email); err != nil {
		return fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "OTP sent to your email", "email": req.Email})
}

// ResetPassword follows the same OTP shape as login step two, but overwrites
// the password hash instead of minting a token.
// POST /api/user/resetPassword
func (h *UserHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.OTP == "" || req.NewPassword == "" {
		return badRequest(c, "Missing required input fields")
	}

	if err := h.checkOTP(c.Context(), req.Email, req.OTP); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid OTP"})
		}
		return fail(c, err)
	}

	passwordHash, err := security.HashPassword(req.NewPassword)
	if err != nil {
		return fail(c, err)
	}
	if err := h.Accounts.SetPasswordByEmail(c.Context(), req.Email, passwordHash); err != nil {
		return fail(c, err)
	}

	if err := h.OTPs.Delete(c.Context(), req.Email); err != nil {
		slog.Error("Failed to consume OTP", "error", err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Password reset successful"})
}

// FundTransfer moves money from the authenticated customer to another
// account. All four ledger effects commit atomically in storage.
// POST /api/user/fundTransfer
func (h *UserHandler) FundTransfer(c *fiber.Ctx) error {
	var req FundTransferRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.ReferenceAccount == 0 {
		return badRequest(c, "Account number and amount are required")
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		return fail(c, err)
	}

	principal := principalFrom(c)
	if err := h.Ledger.Transfer(c.Context(), principal.ID, req.ReferenceAccount, amount); err != nil {
		if errors.Is(err, domain.ErrAccountLocked) {
			return c.Status(http.StatusLocked).JSON(fiber.Map{"message": "Transfer denied. Account is blocked or pending"})
		}
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"message": "Receiver account does not exist"})
		}
		return fail(c, err)
	}

	slog.Info("Fund transfer completed", "receiver", req.ReferenceAccount, "amount", amount)
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Fund transferred successfully"})
}

// TransactionHistory lists the records on the customer's own account.
// GET /api/user/transactionHistory
func (h *UserHandler) TransactionHistory(c *fiber.Ctx) error {
	principal := principalFrom(c)

	acc, err := h.Accounts.GetByID(c.Context(), principal.ID)
	if err != nil {
		return fail(c, err)
	}

	transactions, err := h.Ledger.History(c.Context(), acc.AccountNumber)
	if err != nil {
		return fail(c, err)
	}
	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"transactions": transactions})
}

// AccountProfile returns the customer's own profile and balance.
// GET /api/user/accountProfile
func (h *UserHandler) AccountProfile(c *fiber.Ctx) error {
	principal := principalFrom(c)

	acc, err := h.Accounts.GetByID(c.Context(), principal.ID)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"accountNumber": acc.AccountNumber,
		"email":         acc.Email,
		"fullName":      acc.FullName,
		"phoneNumber":   acc.PhoneNumber,
		"balance":       domain.FormatAmount(acc.Balance),
		"status":        acc.Status,
	})
}

// UpdateProfile overwrites name and/or phone; an omitted field is left
// untouched.
// POST /api/user/updateProfile
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.PhoneNumber == nil && req.FullName == nil {
		return badRequest(c, "Provide at least one field to update")
	}

	principal := principalFrom(c)
	if err := h.Accounts.UpdateProfile(c.Context(), principal.ID, req.FullName, req.PhoneNumber); err != nil {
		return fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Profile updated successfully"})
}

// issueOTP mints a code, stores its hash with a five-minute expiry (replacing
// any outstanding code for the email) and queues the delivery email.
func (h *UserHandler) issueOTP(ctx context.Context, email string) error {
	code, codeHash, err := security.GenerateOTP()
	if err != nil {
		return err
	}
	if err := h.OTPs.Upsert(ctx, email, codeHash, time.Now().Add(security.OTPValidity)); err != nil {
		return err
	}

	// Delivery is fire-and-forget: a relay outage must not fail the login.
	subject, body := notifications.OTPMessage(code)
	if err := h.Mail.Enqueue(ctx, email, subject, body); err != nil {
		slog.Error("Failed to queue OTP mail", "error", err)
	}
	return nil
}

// checkOTP enforces the full verification contract: record present, not past
// expiry, code matches. A missing and an expired record are indistinguishable
// to the caller.
func (h *UserHandler) checkOTP(ctx context.Context, email, code string) error {
	rec, err := h.OTPs.Get(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrOTPExpired
	}
	if err != nil {
		return err
	}
	if time.Now().After(rec.ExpiresAt) {
		return domain.ErrOTPExpired
	}
	if !security.CheckOTP(code, rec.CodeHash) {
		return domain.ErrUnauthorized
	}
	return nil
}
