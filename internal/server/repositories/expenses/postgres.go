package expenses

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"expenses/internal/common"
	"expenses/internal/dbx"
	"expenses/internal/server/migrations"
	"expenses/internal/server/models"
)

const expenseColumns = `id, purpose, amount, status, created_user_id, created_user_display_name, created_date, receipt_key`

// PostgresRepository implements the expense store over PostgreSQL. Mutators
// and guards run inside a transaction holding the row under
// SELECT ... FOR UPDATE, which serializes concurrent transitions on the same
// expense.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository constructs a repository bound to the given database.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// gooseUpContext is a seam for testing RunMigrations.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the repository's database.
func (r *PostgresRepository) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, r.db, ".")
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.Expense) error {
	query := `
		INSERT INTO expenses (id, purpose, amount, status, created_user_id, created_user_display_name, created_date, receipt_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Purpose, e.Amount, string(e.Status),
		e.CreatedUserID, e.CreatedUserDisplayName, e.CreatedDate, e.ReceiptKey)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id=$1`
	return scanExpense(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) ListByCreator(ctx context.Context, userID string) ([]*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE created_user_id=$1 ORDER BY seq`
	return r.list(ctx, query, userID)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses ORDER BY seq`
	return r.list(ctx, query)
}

func (r *PostgresRepository) Update(ctx context.Context, id string, mutate Mutator) (*models.Expense, error) {
	var updated *models.Expense

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id=$1 FOR UPDATE`
		e, err := scanExpense(tx.QueryRowContext(ctx, query, id))
		if err != nil {
			return err
		}
		if err := mutate(e); err != nil {
			return err
		}

		update := `
			UPDATE expenses
			SET purpose=$2, amount=$3, status=$4, receipt_key=$5
			WHERE id=$1
		`
		if _, err := tx.ExecContext(ctx, update,
			e.ID, e.Purpose, e.Amount, string(e.Status), e.ReceiptKey); err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string, guard Guard) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id=$1 FOR UPDATE`
		e, err := scanExpense(tx.QueryRowContext(ctx, query, id))
		if err != nil {
			return err
		}
		if err := guard(e); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id=$1`, id); err != nil {
			return fmt.Errorf("failed to delete expense: %w", err)
		}
		return nil
	})
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select expenses: %w", err)
	}
	defer rows.Close()

	var result []*models.Expense
	for rows.Next() {
		var (
			item   models.Expense
			status string
		)
		if err := rows.Scan(
			&item.ID, &item.Purpose, &item.Amount, &status,
			&item.CreatedUserID, &item.CreatedUserDisplayName, &item.CreatedDate, &item.ReceiptKey,
		); err != nil {
			return nil, err
		}
		item.Status = models.ExpenseStatus(status)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanExpense(row *sql.Row) (*models.Expense, error) {
	var (
		item   models.Expense
		status string
	)
	err := row.Scan(
		&item.ID, &item.Purpose, &item.Amount, &status,
		&item.CreatedUserID, &item.CreatedUserDisplayName, &item.CreatedDate, &item.ReceiptKey,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan expense: %w", err)
	}
	item.Status = models.ExpenseStatus(status)
	return &item, nil
}
