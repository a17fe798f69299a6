package models

import "time"

// ExpenseStatus is the lifecycle state of an expense. Transitions only ever
// move forward: Submitted -> Approved -> Paid.
type ExpenseStatus string

const (
	// StatusSubmitted means the expense was submitted for approval.
	StatusSubmitted ExpenseStatus = "Submitted"
	// StatusApproved means the expense was approved for payout.
	StatusApproved ExpenseStatus = "Approved"
	// StatusPaid means the expense was paid out.
	StatusPaid ExpenseStatus = "Paid"
)

// Valid reports whether s is one of the defined statuses.
func (s ExpenseStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusApproved, StatusPaid:
		return true
	}
	return false
}

// Amount constraints for an expense, inclusive.
const (
	MinAmount = 1
	MaxAmount = 100000
)

// Expense is an expense report submitted by a user. The Created* fields and
// ID are set server-side on submission and are immutable afterwards; clients
// are never trusted to supply them.
type Expense struct {
	ID                     string
	Purpose                string
	Amount                 int64
	Status                 ExpenseStatus
	CreatedUserID          string
	CreatedUserDisplayName string
	CreatedDate            time.Time

	// ReceiptKey is the object-storage key of the attached receipt, empty
	// when no receipt was uploaded. Managed by the receipt service only.
	ReceiptKey string
}

// Clone returns a copy of the expense, so the store never hands out a
// mutable reference to its own state.
func (e *Expense) Clone() *Expense {
	c := *e
	return &c
}
