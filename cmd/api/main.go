package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/Kr1shnam00rth1/Bank-API/internal/adapter/handler"
	"github.com/Kr1shnam00rth1/Bank-API/internal/adapter/middleware"
	"github.com/Kr1shnam00rth1/Bank-API/internal/adapter/storage"
	"github.com/Kr1shnam00rth1/Bank-API/internal/core/config"
	"github.com/Kr1shnam00rth1/Bank-API/internal/core/domain"
	"github.com/Kr1shnam00rth1/Bank-API/internal/core/security"
	"github.com/Kr1shnam00rth1/Bank-API/internal/core/worker"
)

func main() {
	cfg := config.LoadConfig()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET is not set")
		os.Exit(1)
	}

	dbPool, err := storage.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		slog.Error("Database connection failed", "error", err)
		os.Exit(1)
	}

	if err := storage.Migrate(context.Background(), dbPool); err != nil {
		slog.Error("Migration failed", "error", err)
		os.Exit(1)
	}

	accountRepo, err := storage.NewAccountRepository(dbPool)
	if err != nil {
		slog.Error("Failed to build account repository", "error", err)
		os.Exit(1)
	}
	cashierRepo := storage.NewCashierRepository(dbPool)
	otpRepo := storage.NewOTPRepository(dbPool)
	ledgerRepo := storage.NewLedgerRepository(dbPool)
	mailQueue := storage.NewEmailJobRepository(dbPool)

	tokens := security.NewTokenIssuer(cfg.JWTSecret)

	userHandler := &handler.UserHandler{
		Accounts: accountRepo,
		OTPs:     otpRepo,
		Ledger:   ledgerRepo,
		Mail:     mailQueue,
		Tokens:   tokens,
	}
	cashierHandler := &handler.CashierHandler{
		Cashiers: cashierRepo,
		Accounts: accountRepo,
		Ledger:   ledgerRepo,
		Tokens:   tokens,
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	userAuth := middleware.Protected(tokens, domain.RoleUser)
	cashierAuth := middleware.Protected(tokens, domain.RoleCashier)
	idempotent := middleware.Idempotency(dbPool)

	user := app.Group("/api/user")
	user.Post("/register", userHandler.Register)
	user.Post("/login", userHandler.Login)
	user.Post("/verifyOtp", userHandler.VerifyOtp)
	user.Post("/sendOtp", userHandler.SendOtp)
	user.Post("/resetPassword", userHandler.ResetPassword)
	user.Post("/fundTransfer", userAuth, idempotent, userHandler.FundTransfer)
	user.Get("/transactionHistory", userAuth, userHandler.TransactionHistory)
	user.Get("/accountProfile", userAuth, userHandler.AccountProfile)
	user.Post("/updateProfile", userAuth, userHandler.UpdateProfile)

	cashier := app.Group("/api/cashier")
	cashier.Post("/login", cashierHandler.Login)
	cashier.Post("/deposit", cashierAuth, idempotent, cashierHandler.Deposit)
	cashier.Post("/withdrawal", cashierAuth, idempotent, cashierHandler.Withdrawal)
	cashier.Post("/userAccountInfo", cashierAuth, cashierHandler.UserAccountInfo)
	cashier.Post("/changePassword", cashierAuth, cashierHandler.ChangePassword)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	worker.StartMailWorker(workerCtx, dbPool, cfg.MailAPIURL)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("Server starting", "env", cfg.Env, "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("Server forced to shutdown", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutting down server...")

	stopWorker()

	if err := app.Shutdown(); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}

	dbPool.Close()
	slog.Info("Server exited")
}
