package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kr1shnam00rth1/Bank-API/internal/core/notifications"
)

const maxAttempts = 5

// StartMailWorker drains the email_jobs queue in the background until the
// context is cancelled. FOR UPDATE SKIP LOCKED keeps multiple instances from
// picking up the same job.
func StartMailWorker(ctx context.Context, db *pgxpool.Pool, mailAPIURL string) {
	go func() {
		slog.Info("Mail worker started")
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				slog.Info("Mail worker stopped")
				return
			case <-ticker.C:
				processJob(ctx, db, mailAPIURL)
			}
		}
	}()
}

func processJob(ctx context.Context, db *pgxpool.Pool, mailAPIURL string) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return
	}
	defer tx.Rollback(ctx)

	query := `
		SELECT id, recipient, subject, body, attempts
		FROM email_jobs
		WHERE status = 'PENDING' AND next_run_at <= NOW()
		ORDER BY created_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`

	var id, recipient, subject, body string
	var attempts int
	if err := tx.QueryRow(ctx, query).Scan(&id, &recipient, &subject, &body, &attempts); err != nil {
		return
	}

	sendErr := notifications.SendMail(mailAPIURL, recipient, subject, body)
	if sendErr != nil {
		slog.Error("Mail delivery failed", "error", sendErr, "job_id", id, "attempts", attempts)
		if attempts+1 >= maxAttempts {
			tx.Exec(ctx, `UPDATE email_jobs SET status = 'FAILED' WHERE id = $1`, id)
		} else {
			nextRun := time.Now().Add(time.Duration(attempts*10+10) * time.Second)
			tx.Exec(ctx, `UPDATE email_jobs SET attempts = attempts + 1, next_run_at = $2 WHERE id = $1`, id, nextRun)
		}
	} else {
		slog.Info("Mail sent", "job_id", id)
		tx.Exec(ctx, `UPDATE email_jobs SET status = 'SENT' WHERE id = $1`, id)
	}

	if err := tx.Commit(ctx); err != nil {
		slog.Error("Mail worker commit failed", "error", err, "job_id", id)
	}
}
