// Package journal keeps a local SQLite audit trail of processed payouts, so
// an operator can see what this processor already paid out even after the
// API's own data moved on.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"expenses/internal/dbx"
	"expenses/internal/payout/journal/migrations"
)

// Payout is one journal record.
type Payout struct {
	ID                     string
	ExpenseID              string
	Amount                 int64
	CreatedUserDisplayName string
	PaidAt                 time.Time
}

// Journal is a SQLite-backed payout log.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at path and applies
// the embedded migrations.
func Open(ctx context.Context, path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, err
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal migration error: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends a payout entry. The id is assigned here.
func (j *Journal) Record(ctx context.Context, p Payout) error {
	query := `
		INSERT INTO payouts (id, expense_id, amount, created_user_display_name, paid_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := j.db.ExecContext(ctx, query,
		uuid.NewString(), p.ExpenseID, p.Amount, p.CreatedUserDisplayName, p.PaidAt)
	if err != nil {
		return fmt.Errorf("failed to record payout: %w", err)
	}
	return nil
}

// List returns all recorded payouts, oldest first.
func (j *Journal) List(ctx context.Context) ([]Payout, error) {
	return list(ctx, j.db)
}

func list(ctx context.Context, db dbx.DBTX) ([]Payout, error) {
	query := `SELECT id, expense_id, amount, created_user_display_name, paid_at FROM payouts ORDER BY paid_at`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select payouts: %w", err)
	}
	defer rows.Close()

	var result []Payout
	for rows.Next() {
		var item Payout
		if err := rows.Scan(&item.ID, &item.ExpenseID, &item.Amount, &item.CreatedUserDisplayName, &item.PaidAt); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
