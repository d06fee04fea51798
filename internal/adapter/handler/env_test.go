package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Kr1shnam00rth1/Bank-API/internal/adapter/middleware"
	"github.com/Kr1shnam00rth1/Bank-API/internal/core/domain"
	"github.com/Kr1shnam00rth1/Bank-API/internal/core/security"
)

// testEnv wires the handlers to in-memory fakes with the real token issuer
// and the real auth middleware, mirroring the route table in cmd/api.
type testEnv struct {
	app      *fiber.App
	store    *fakeStore
	cashiers *fakeCashiers
	otps     *fakeOTPs
	mail     *fakeMail
	tokens   *security.TokenIssuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store:    newFakeStore(),
		cashiers: &fakeCashiers{},
		otps:     newFakeOTPs(),
		mail:     &fakeMail{},
		tokens:   security.NewTokenIssuer("test-secret"),
	}

	userHandler := &UserHandler{
		Accounts: env.store,
		OTPs:     env.otps,
		Ledger:   env.store,
		Mail:     env.mail,
		Tokens:   env.tokens,
	}
	cashierHandler := &CashierHandler{
		Cashiers: env.cashiers,
		Accounts: env.store,
		Ledger:   env.store,
		Tokens:   env.tokens,
	}

	app := fiber.New()
	userAuth := middleware.Protected(env.tokens, domain.RoleUser)
	cashierAuth := middleware.Protected(env.tokens, domain.RoleCashier)

	user := app.Group("/api/user")
	user.Post("/register", userHandler.Register)
	user.Post("/login", userHandler.Login)
	user.Post("/verifyOtp", userHandler.VerifyOtp)
	user.Post("/sendOtp", userHandler.SendOtp)
	user.Post("/resetPassword", userHandler.ResetPassword)
	user.Post("/fundTransfer", userAuth, userHandler.FundTransfer)
	user.Get("/transactionHistory", userAuth, userHandler.TransactionHistory)
	user.Get("/accountProfile", userAuth, userHandler.AccountProfile)
	user.Post("/updateProfile", userAuth, userHandler.UpdateProfile)

	cashier := app.Group("/api/cashier")
	cashier.Post("/login", cashierHandler.Login)
	cashier.Post("/deposit", cashierAuth, cashierHandler.Deposit)
	cashier.Post("/withdrawal", cashierAuth, cashierHandler.Withdrawal)
	cashier.Post("/userAccountInfo", cashierAuth, cashierHandler.UserAccountInfo)
	cashier.Post("/changePassword", cashierAuth, cashierHandler.ChangePassword)

	env.app = app
	return env
}

// request issues a JSON request through the fiber app. An empty cookie means
// unauthenticated.
func (env *testEnv) request(t *testing.T, method, path string, body any, cookie string) *http.Response {
	t.Helper()

	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		buf = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: "authToken", Value: cookie})
	}

	resp, err := env.app.Test(req, 10000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return out
}

func sessionCookie(t *testing.T, resp *http.Response) string {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == "authToken" {
			if !c.HttpOnly {
				t.Error("session cookie is not HTTP-only")
			}
			return c.Value
		}
	}
	t.Fatal("no authToken cookie in response")
	return ""
}

var otpPattern = regexp.MustCompile(`\b(\d{4})\b`)

// lastOTP digs the plaintext code out of the most recent queued mail.
func (env *testEnv) lastOTP(t *testing.T) string {
	t.Helper()
	mail, ok := env.mail.last()
	if !ok {
		t.Fatal("no mail was queued")
	}
	m := otpPattern.FindStringSubmatch(mail.Body)
	if m == nil {
		t.Fatalf("no OTP code in mail body: %q", mail.Body)
	}
	return m[1]
}

// registerUser provisions an account directly through the fake store and
// returns it, optionally activating it.
func (env *testEnv) registerUser(t *testing.T, email, password string, status domain.Status, balance int64) *domain.Account {
	t.Helper()
	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	acc, err := env.store.Create(context.Background(), email, hash, "Test User", "0700000000")
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	env.store.setStatus(acc.AccountNumber, status)
	env.store.setBalance(acc.AccountNumber, balance)
	acc.Status = status
	acc.Balance = balance
	return acc
}

// loginUser runs the full two-step customer login and returns the session
// cookie.
func (env *testEnv) loginUser(t *testing.T, email, password string) string {
	t.Helper()
	resp := env.request(t, http.MethodPost, "/api/user/login", fiber.Map{"email": email, "password": password}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login step 1: got status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = env.request(t, http.MethodPost, "/api/user/verifyOtp", fiber.Map{"email": email, "otp": env.lastOTP(t)}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login step 2: got status %d", resp.StatusCode)
	}
	return sessionCookie(t, resp)
}

// addCashier provisions a staff principal.
func (env *testEnv) addCashier(t *testing.T, email, password string) *domain.Cashier {
	t.Helper()
	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	c := &domain.Cashier{ID: uuid.New(), Email: email, PasswordHash: hash}
	env.cashiers.cashiers = append(env.cashiers.cashiers, c)
	return c
}

// loginCashier returns a cashier session cookie.
func (env *testEnv) loginCashier(t *testing.T, email, password string) string {
	t.Helper()
	resp := env.request(t, http.MethodPost, "/api/cashier/login", fiber.Map{"email": email, "password": password}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cashier login: got status %d", resp.StatusCode)
	}
	return sessionCookie(t, resp)
}
