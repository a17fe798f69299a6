// Package services contains the server-side business logic: the expense
// workflow engine and the receipt attachment service.
//
// Every operation combines a policy check, an ownership check and a state
// check, in that order, so denials are consistent and debuggable. All errors
// are returned as values; the engine never logs.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"expenses/internal/common"
	"expenses/internal/server/models"
	"expenses/internal/server/policy"
	"expenses/internal/server/repositories/expenses"
)

// ExpenseService implements the expense lifecycle:
// Submitted -> Approved -> Paid. No transition skips a state and none moves
// backward. Submitters, approvers and payers are disjoint trust boundaries:
// a submitter must not be able to self-approve through the edit path, and an
// approver must not be able to alter amounts while approving.
type ExpenseService struct {
	repo expenses.Repository
}

// NewExpenseService constructs the workflow engine over the given store.
func NewExpenseService(repo expenses.Repository) *ExpenseService {
	return &ExpenseService{repo: repo}
}

// Submit creates a new expense in the Submitted state. The id, creator and
// creation date are set server-side regardless of anything the client sent.
// Submit is not idempotent: every call creates a new entity, and avoiding
// duplicate submissions is the API client's responsibility.
func (s *ExpenseService) Submit(ctx context.Context, caller models.Caller, purpose string, amount int64) (*models.Expense, error) {
	if err := policy.Require(caller, policy.WriteOwnExpenses); err != nil {
		return nil, err
	}
	if err := validateFields(purpose, amount); err != nil {
		return nil, err
	}

	e := &models.Expense{
		ID:                     uuid.NewString(),
		Purpose:                purpose,
		Amount:                 amount,
		Status:                 models.StatusSubmitted,
		CreatedUserID:          caller.UserID,
		CreatedUserDisplayName: caller.DisplayName,
		CreatedDate:            time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// GetOne returns a single expense owned by the caller.
func (s *ExpenseService) GetOne(ctx context.Context, caller models.Caller, id string) (*models.Expense, error) {
	if err := policy.Require(caller, policy.ReadOwnExpenses); err != nil {
		return nil, err
	}

	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.CreatedUserID != caller.UserID {
		return nil, common.Forbidden("You can only retrieve your own expenses.")
	}
	return e, nil
}

// ListMine returns the caller's expenses in insertion order.
func (s *ExpenseService) ListMine(ctx context.Context, caller models.Caller) ([]*models.Expense, error) {
	if err := policy.Require(caller, policy.ReadOwnExpenses); err != nil {
		return nil, err
	}
	return s.repo.ListByCreator(ctx, caller.UserID)
}

// ListAll returns every expense, with no ownership filtering.
func (s *ExpenseService) ListAll(ctx context.Context, caller models.Caller) ([]*models.Expense, error) {
	if err := policy.Require(caller, policy.ReadAllExpenses); err != nil {
		return nil, err
	}
	return s.repo.ListAll(ctx)
}

// Update applies the client's requested target state to an expense. The
// branch taken depends on whether (and how) the status is changing:
//
//   - Submitted -> Approved: approval. Requires the approver role and a
//     creator other than the caller; applies only the status change.
//   - Approved -> Paid: payout. Requires the application's all-access role;
//     applies only the status change.
//   - status unchanged: content edit. Requires the full write policy,
//     ownership and the Submitted state; applies only purpose and amount.
//   - anything else is rejected as an invalid transition.
//
// The whole decision runs while the store holds the entity exclusively, so
// concurrent transitions on the same expense serialize and the loser sees
// the winner's result.
func (s *ExpenseService) Update(ctx context.Context, caller models.Caller, id string, purpose string, amount int64, status models.ExpenseStatus) (*models.Expense, error) {
	if err := policy.Baseline(caller); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, common.Validation("Unknown expense status %q.", string(status))
	}

	return s.repo.Update(ctx, id, func(e *models.Expense) error {
		switch {
		case status == models.StatusApproved && e.Status == models.StatusSubmitted:
			if err := policy.Require(caller, policy.ApproveExpenses); err != nil {
				return err
			}
			if e.CreatedUserID == caller.UserID {
				return common.Forbidden("You cannot approve your own expenses.")
			}
			// Approval must not smuggle in other edits.
			e.Status = models.StatusApproved
			return nil

		case status == models.StatusPaid && e.Status == models.StatusApproved:
			if err := policy.Require(caller, policy.PayExpenses); err != nil {
				return err
			}
			e.Status = models.StatusPaid
			return nil

		case status == e.Status:
			if err := policy.Require(caller, policy.WriteOwnExpenses); err != nil {
				return err
			}
			if e.CreatedUserID != caller.UserID {
				return common.Forbidden("You can only update your own expenses.")
			}
			if e.Status != models.StatusSubmitted {
				return common.Forbidden("You can only update submitted expenses.")
			}
			if err := validateFields(purpose, amount); err != nil {
				return err
			}
			e.Purpose = purpose
			e.Amount = amount
			return nil

		default:
			return common.InvalidTransition("An expense cannot move from %q to %q.", string(e.Status), string(status))
		}
	})
}

// Delete removes a submitted expense owned by the caller. Once an expense
// leaves the Submitted state it can never be deleted.
func (s *ExpenseService) Delete(ctx context.Context, caller models.Caller, id string) error {
	if err := policy.Require(caller, policy.WriteOwnExpenses); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id, func(e *models.Expense) error {
		if e.CreatedUserID != caller.UserID {
			return common.Forbidden("You can only delete your own expenses.")
		}
		if e.Status != models.StatusSubmitted {
			return common.Forbidden("You can only delete submitted expenses.")
		}
		return nil
	})
}

func validateFields(purpose string, amount int64) error {
	if strings.TrimSpace(purpose) == "" {
		return common.Validation("The expense purpose must not be empty.")
	}
	if amount < models.MinAmount || amount > models.MaxAmount {
		return common.Validation("The expense amount must be between %d and %d.", models.MinAmount, models.MaxAmount)
	}
	return nil
}
