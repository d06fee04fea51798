package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EmailJobRepository queues outbound mail so a slow relay never blocks the
// request that triggered it. The worker drains the queue.
type EmailJobRepository struct {
	db *pgxpool.Pool
}

func NewEmailJobRepository(db *pgxpool.Pool) *EmailJobRepository {
	return &EmailJobRepository{db: db}
}

func (r *EmailJobRepository) Enqueue(ctx context.Context, recipient, subject, body string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO email_jobs (id, recipient, subject, body) VALUES ($1, $2, $3, $4)`,
		uuid.New(), recipient, subject, body)
	return err
}
