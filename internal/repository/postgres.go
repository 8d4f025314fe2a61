package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/elitecasino/crash-backend/internal/domain"
)

type postgresLedger struct {
	db  *sql.DB
	log *slog.Logger
}

// NewPostgresLedger creates a SQL-backed Ledger implementation.
func NewPostgresLedger(db *sql.DB, log *slog.Logger) Ledger {
	return &postgresLedger{
		db:  db,
		log: log,
	}
}

// GetOrCreate inserts the user with ON CONFLICT DO NOTHING and reads the row
// back. The primary-key constraint is what makes concurrent first logins
// collapse into a single record.
func (r *postgresLedger) GetOrCreate(ctx context.Context, id int64, username string) (*domain.User, error) {
	const insertQuery = `
		INSERT INTO users (id, username, balance, registered_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`

	if _, err := r.db.ExecContext(ctx, insertQuery, id, username, domain.StartingBalance, time.Now().UTC()); err != nil {
		r.logError("get_or_create.insert", id, err)
		return nil, fmt.Errorf("insert user: %w", err)
	}

	const selectQuery = `
		SELECT id, username, balance, registered_at
		FROM users
		WHERE id = $1
	`

	var user domain.User
	if err := r.db.QueryRowContext(ctx, selectQuery, id).Scan(
		&user.ID,
		&user.Username,
		&user.Balance,
		&user.RegisteredAt,
	); err != nil {
		r.logError("get_or_create.select", id, err)
		return nil, fmt.Errorf("select user: %w", err)
	}

	return &user, nil
}

// Settle runs the read-modify-write and the transaction append inside one
// database transaction. The FOR UPDATE row lock serializes settlements per
// user; settlements for different users touch different rows and proceed in
// parallel.
func (r *postgresLedger) Settle(ctx context.Context, userID int64, gameType string, amount float64) (float64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin settlement: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var balance float64
	err = tx.QueryRowContext(ctx, `SELECT balance FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		r.logError("settle.lock", userID, err)
		return 0, fmt.Errorf("lock user row: %w", err)
	}

	newBalance := balance + amount

	if _, err := tx.ExecContext(ctx, `UPDATE users SET balance = $1 WHERE id = $2`, newBalance, userID); err != nil {
		r.logError("settle.update", userID, err)
		return 0, fmt.Errorf("update balance: %w", err)
	}

	const insertTx = `
		INSERT INTO transactions (user_id, amount, game_type, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.ExecContext(ctx, insertTx, userID, amount, gameType, time.Now().UTC()); err != nil {
		r.logError("settle.append", userID, err)
		return 0, fmt.Errorf("append transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		r.logError("settle.commit", userID, err)
		return 0, fmt.Errorf("commit settlement: %w", err)
	}

	return newBalance, nil
}

func (r *postgresLedger) logError(operation string, userID int64, err error) {
	if r.log == nil || err == nil {
		return
	}

	r.log.Error("ledger repository operation failed",
		slog.String("operation", operation),
		slog.Int64("user_id", userID),
		slog.Any("error", err),
	)
}
