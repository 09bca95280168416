// Package history provides an optional append-only archive of finished
// render jobs in PostgreSQL. Live job state stays in the in-memory store;
// the archive only records terminal outcomes for later inspection, so the
// service runs fine without a database configured.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/animation-agent/internal/store"
)

// Archive wraps a PostgreSQL connection pool.
type Archive struct {
	pool *pgxpool.Pool
}

// Record is one archived render outcome.
type Record struct {
	AnimationID string
	Prompt      string
	Status      string
	Message     string
	ErrorDetail string
	CreatedAt   time.Time
	FinishedAt  time.Time
}

// Connect establishes a connection pool and ensures the history table exists.
func Connect(ctx context.Context, databaseURL string) (*Archive, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	a := &Archive{pool: pool}
	if err := a.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return a, nil
}

// Close closes the connection pool.
func (a *Archive) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}

func (a *Archive) ensureSchema(ctx context.Context) error {
	_, err := a.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS render_history (
			animation_id  TEXT PRIMARY KEY,
			prompt        TEXT NOT NULL,
			status        TEXT NOT NULL,
			message       TEXT NOT NULL DEFAULT '',
			error_details TEXT NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL,
			finished_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure render_history table: %w", err)
	}
	return nil
}

// Archive writes a terminal job outcome. Re-archiving the same id overwrites
// the previous row, which keeps the call idempotent.
func (a *Archive) Archive(ctx context.Context, job store.Job, prompt string) error {
	_, err := a.pool.Exec(ctx, `
		INSERT INTO render_history (animation_id, prompt, status, message, error_details, created_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (animation_id) DO UPDATE
		SET status = $3, message = $4, error_details = $5, finished_at = $7`,
		job.ID, prompt, string(job.State), job.Message, job.ErrorDetail, job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to archive render %s: %w", job.ID, err)
	}
	return nil
}

// Recent returns the most recently finished renders, newest first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := a.pool.Query(ctx, `
		SELECT animation_id, prompt, status, message, error_details, created_at, finished_at
		FROM render_history
		ORDER BY finished_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query render history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.AnimationID, &r.Prompt, &r.Status, &r.Message, &r.ErrorDetail, &r.CreatedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
