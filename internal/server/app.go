// Package server initializes and runs the Expenses API server: it selects a
// storage backend, runs migrations when PostgreSQL is configured, wires the
// workflow services and starts the HTTP endpoint with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"expenses/internal/logging"
	"expenses/internal/server/config"
	"expenses/internal/server/httpapi"
	"expenses/internal/server/repositories/expenses"
	"expenses/internal/server/services"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	expenses *services.ExpenseService
	receipts *services.ReceiptService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout)

	repo, err := newRepository(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	es := services.NewExpenseService(repo)
	rs := services.NewReceiptService(repo, c)

	return &App{config: c, logger: logger, expenses: es, receipts: rs}, nil
}

// newRepository picks the store implementation: PostgreSQL when a DSN is
// configured, the in-memory store otherwise.
func newRepository(ctx context.Context, c *config.Config) (expenses.Repository, error) {
	if c.DatabaseDSN == "" {
		return expenses.NewMemoryRepository(), nil
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	repo := expenses.NewPostgresRepository(db)
	if err := repo.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return repo, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddr, app.logger, app.expenses, app.receipts, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
