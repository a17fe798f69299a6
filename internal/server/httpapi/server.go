// Package httpapi exposes the expense workflow over HTTP/JSON. Handlers only
// parse requests into service calls and translate errors into status codes;
// all authorization and state rules live in the policy and services packages.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"expenses/internal/logging"
	"expenses/internal/server/services"
)

// Server is the HTTP front of the Expenses API.
type Server struct {
	address   string
	logger    logging.Logger
	expenses  *services.ExpenseService
	receipts  *services.ReceiptService
	jwtSecret []byte
}

// NewServer wires the HTTP surface to the workflow and receipt services.
func NewServer(address string, l logging.Logger, es *services.ExpenseService, rs *services.ReceiptService, secretKey string) *Server {
	return &Server{
		address:   address,
		logger:    l.With("module", "http_server"),
		expenses:  es,
		receipts:  rs,
		jwtSecret: []byte(secretKey),
	}
}

// Handler builds the route table. Every route goes through the
// authentication middleware; the baseline authorization gate runs there as
// well so no handler is reachable with a claims-free token.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /api/identity", s.authenticate(s.handleIdentity))
	mux.Handle("GET /api/expenses", s.authenticate(s.handleListMine))
	mux.Handle("GET /api/expenses/all", s.authenticate(s.handleListAll))
	mux.Handle("GET /api/expenses/{id}", s.authenticate(s.handleGetOne))
	mux.Handle("POST /api/expenses", s.authenticate(s.handleSubmit))
	mux.Handle("PUT /api/expenses/{id}", s.authenticate(s.handleUpdate))
	mux.Handle("DELETE /api/expenses/{id}", s.authenticate(s.handleDelete))
	mux.Handle("POST /api/expenses/{id}/receipt", s.authenticate(s.handleReceiptUpload))
	mux.Handle("GET /api/expenses/{id}/receipt", s.authenticate(s.handleReceiptDownload))

	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.address,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
