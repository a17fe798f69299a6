// Package cli implements the payout processor's interactive loop. The
// processor is an application identity: it acquires a client-credentials
// token, lists all expenses through the API and pays out the approved ones,
// journaling every payout locally.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"expenses/internal/payout/client"
	"expenses/internal/payout/config"
	"expenses/internal/payout/journal"
)

// acquireToken is a test seam for client.AcquireToken.
var acquireToken = client.AcquireToken

type App struct {
	config  *config.Config
	api     *client.APIClient
	journal *journal.Journal
	in      *bufio.Scanner
	out     io.Writer
}

// NewApp opens the payout journal, acquires an access token (prompting for
// the client secret when it is not configured) and builds the API client.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	j, err := journal.Open(ctx, c.JournalPath)
	if err != nil {
		return nil, fmt.Errorf("error opening payout journal: %w", err)
	}

	secret := c.ClientSecret
	if secret == "" {
		secret, err = GetClientSecret(os.Stdout)
		if err != nil {
			return nil, err
		}
	}

	tokenCtx, cancel := context.WithTimeout(ctx, c.RequestTimeout)
	defer cancel()
	token, err := acquireToken(tokenCtx, &http.Client{Timeout: c.RequestTimeout}, c.TokenURL, c.ClientID, secret, c.Scope)
	if err != nil {
		return nil, fmt.Errorf("error acquiring access token: %w", err)
	}

	return &App{
		config:  c,
		api:     client.New(c.APIBaseURL, c.RequestTimeout, token),
		journal: j,
		in:      bufio.NewScanner(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// Run starts the command loop and blocks until "exit" or EOF.
func (a *App) Run(ctx context.Context) {
	defer a.journal.Close()

	fmt.Fprintln(a.out, "Expense payout processor (type 'help' for commands)")

	for {
		fmt.Fprint(a.out, "payout> ")
		if !a.in.Scan() {
			break
		}
		parts := strings.Fields(a.in.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help":
			fmt.Fprintln(a.out, "Available commands: list, payout, history, exit")
		case "list":
			a.list(ctx)
		case "payout":
			a.payout(ctx)
		case "history":
			a.history(ctx)
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintf(a.out, "Unknown command %q\n", parts[0])
		}
	}
}

func (a *App) list(ctx context.Context) {
	all, err := a.api.ListAll(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	for _, e := range all {
		fmt.Fprintf(a.out, "- %s  %-10s %6d  %q (%s)\n", e.ID, e.Status, e.Amount, e.Purpose, e.CreatedUserDisplayName)
	}
	fmt.Fprintf(a.out, "%d expenses.\n", len(all))
}

// payout marks every approved expense as paid and journals each success.
func (a *App) payout(ctx context.Context) {
	all, err := a.api.ListAll(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}

	var approved []client.Expense
	for _, e := range all {
		if e.Status == client.StatusApproved {
			approved = append(approved, e)
		}
	}
	fmt.Fprintf(a.out, "Paying out %d of %d expenses.\n", len(approved), len(all))

	for _, e := range approved {
		fmt.Fprintf(a.out, "- Processing expense %q for user %q\n", e.ID, e.CreatedUserDisplayName)
		if err := a.api.Pay(ctx, e); err != nil {
			fmt.Fprintf(a.out, "  Error: %v\n", err)
			continue
		}
		if err := a.journal.Record(ctx, journal.Payout{
			ExpenseID:              e.ID,
			Amount:                 e.Amount,
			CreatedUserDisplayName: e.CreatedUserDisplayName,
			PaidAt:                 time.Now().UTC(),
		}); err != nil {
			fmt.Fprintf(a.out, "  Paid, but journaling failed: %v\n", err)
		}
	}
}

func (a *App) history(ctx context.Context) {
	payouts, err := a.journal.List(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return
	}
	for _, p := range payouts {
		fmt.Fprintf(a.out, "- %s  expense %s  %6d  %s\n", p.PaidAt.Format(time.RFC3339), p.ExpenseID, p.Amount, p.CreatedUserDisplayName)
	}
	fmt.Fprintf(a.out, "%d payouts recorded.\n", len(payouts))
}
