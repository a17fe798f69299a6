// Package client is the payout processor's HTTP client for the Expenses API.
// It authenticates as an application identity (client-credentials bearer
// token) and exposes the two operations payout needs: listing all expenses
// and marking one paid.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Expense mirrors the API's expense representation.
type Expense struct {
	ID                     string    `json:"id"`
	Purpose                string    `json:"purpose"`
	Amount                 int64     `json:"amount"`
	Status                 string    `json:"status"`
	CreatedUserID          string    `json:"createdUserId"`
	CreatedUserDisplayName string    `json:"createdUserDisplayName"`
	CreatedDate            time.Time `json:"createdDate"`
	HasReceipt             bool      `json:"hasReceipt"`
}

// Expense statuses as the API spells them.
const (
	StatusApproved = "Approved"
	StatusPaid     = "Paid"
)

// APIClient calls the Expenses API with a bearer access token.
type APIClient struct {
	baseURL     string
	httpClient  *http.Client
	accessToken string
}

// New constructs an APIClient for the given base URL and access token.
func New(baseURL string, timeout time.Duration, accessToken string) *APIClient {
	return &APIClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		accessToken: accessToken,
	}
}

// ListAll fetches every expense. Requires the application's
// Expense.ReadWrite.All role on the token.
func (c *APIClient) ListAll(ctx context.Context) ([]Expense, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/expenses/all", nil)
	if err != nil {
		return nil, err
	}

	var result []Expense
	if err := c.do(req, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Pay marks an approved expense as paid. The server ignores every field of
// the payload except the status, but the original values are sent so the
// request reads as a full representation.
func (c *APIClient) Pay(ctx context.Context, e Expense) error {
	payload := struct {
		Purpose string `json:"purpose"`
		Amount  int64  `json:"amount"`
		Status  string `json:"status"`
	}{Purpose: e.Purpose, Amount: e.Amount, Status: StatusPaid}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/expenses/"+e.ID, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, http.StatusOK, nil)
}

// do executes req with the bearer token attached and decodes the response
// into out when the expected status is returned. On any other status the
// API's message is surfaced in the error.
func (c *APIClient) do(req *http.Request, wantStatus int, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		var msg struct {
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&msg); err == nil && msg.Message != "" {
			return fmt.Errorf("api returned %s: %s", resp.Status, msg.Message)
		}
		return fmt.Errorf("api returned %s", resp.Status)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
