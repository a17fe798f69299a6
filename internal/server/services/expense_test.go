package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenses/internal/common"
	"expenses/internal/server/models"
	"expenses/internal/server/repositories/expenses"
)

func alice() models.Caller {
	return models.Caller{
		UserID:      "alice-id",
		DisplayName: "Alice",
		Scopes:      []string{common.ScopeExpensesReadWrite},
		Roles:       []string{common.RoleExpenseSubmitter},
	}
}

func bob() models.Caller {
	return models.Caller{
		UserID:      "bob-id",
		DisplayName: "Bob",
		Scopes:      []string{common.ScopeExpensesRead, common.ScopeExpensesReadWrite, common.ScopeExpensesReadAll},
		Roles:       []string{common.RoleExpenseSubmitter, common.RoleExpenseApprover},
	}
}

func payoutApp() models.Caller {
	return models.Caller{
		UserID:      "payout-app-id",
		DisplayName: "payout",
		Roles:       []string{common.RoleExpenseReadWriteAll},
	}
}

func newService() *ExpenseService {
	return NewExpenseService(expenses.NewMemoryRepository())
}

func submitTaxi(t *testing.T, s *ExpenseService, caller models.Caller) *models.Expense {
	t.Helper()
	e, err := s.Submit(context.Background(), caller, "Taxi", 50)
	require.NoError(t, err)
	return e
}

func TestSubmit_SetsServerControlledFields(t *testing.T) {
	s := newService()

	e := submitTaxi(t, s, alice())

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "Taxi", e.Purpose)
	assert.Equal(t, int64(50), e.Amount)
	assert.Equal(t, models.StatusSubmitted, e.Status)
	assert.Equal(t, "alice-id", e.CreatedUserID)
	assert.Equal(t, "Alice", e.CreatedUserDisplayName)
	assert.False(t, e.CreatedDate.IsZero())
}

func TestSubmit_EachCallCreatesANewExpense(t *testing.T) {
	s := newService()

	e1 := submitTaxi(t, s, alice())
	e2 := submitTaxi(t, s, alice())
	require.NotEqual(t, e1.ID, e2.ID)

	mine, err := s.ListMine(context.Background(), alice())
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestSubmit_Validation(t *testing.T) {
	s := newService()

	tests := []struct {
		name    string
		purpose string
		amount  int64
		reason  string
	}{
		{"empty purpose", "", 50, "The expense purpose must not be empty."},
		{"blank purpose", "   ", 50, "The expense purpose must not be empty."},
		{"amount too small", "Taxi", 0, "The expense amount must be between 1 and 100000."},
		{"amount negative", "Taxi", -5, "The expense amount must be between 1 and 100000."},
		{"amount too large", "Taxi", 100001, "The expense amount must be between 1 and 100000."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Submit(context.Background(), alice(), tc.purpose, tc.amount)
			require.ErrorIs(t, err, common.ErrValidation)
			assert.Equal(t, tc.reason, err.Error())
		})
	}
}

func TestSubmit_BoundaryAmountsAccepted(t *testing.T) {
	s := newService()

	for _, amount := range []int64{models.MinAmount, models.MaxAmount} {
		_, err := s.Submit(context.Background(), alice(), "Taxi", amount)
		require.NoError(t, err)
	}
}

func TestSubmit_RequiresWritePolicy(t *testing.T) {
	s := newService()

	// Read-only scope without the submitter role.
	reader := models.Caller{UserID: "r1", Scopes: []string{common.ScopeExpensesRead}}
	_, err := s.Submit(context.Background(), reader, "Taxi", 50)
	require.ErrorIs(t, err, common.ErrForbidden)

	_, err = s.Submit(context.Background(), models.Caller{}, "Taxi", 50)
	require.ErrorIs(t, err, common.ErrUnauthenticated)
}

func TestGetOne_OwnershipEnforced(t *testing.T) {
	s := newService()
	e := submitTaxi(t, s, alice())

	got, err := s.GetOne(context.Background(), alice(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)

	_, err = s.GetOne(context.Background(), bob(), e.ID)
	require.ErrorIs(t, err, common.ErrForbidden)
	assert.Equal(t, "You can only retrieve your own expenses.", err.Error())

	_, err = s.GetOne(context.Background(), alice(), "no-such-id")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestListMine_ReturnsOnlyOwnExpenses(t *testing.T) {
	s := newService()
	submitTaxi(t, s, alice())
	submitTaxi(t, s, bob())
	submitTaxi(t, s, alice())

	mine, err := s.ListMine(context.Background(), alice())
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, e := range mine {
		assert.Equal(t, "alice-id", e.CreatedUserID)
	}
}

func TestListAll_PolicyAndContents(t *testing.T) {
	s := newService()
	submitTaxi(t, s, alice())
	submitTaxi(t, s, bob())

	// The submitter lacks both the all-access role and the read-all scope.
	_, err := s.ListAll(context.Background(), alice())
	require.ErrorIs(t, err, common.ErrForbidden)

	// The approver holds Expense Approver plus Expenses.Read.All.
	all, err := s.ListAll(context.Background(), bob())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// The application holds Expense.ReadWrite.All directly.
	all, err = s.ListAll(context.Background(), payoutApp())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// Full lifecycle: Alice submits, Bob approves, the payout application pays,
// and a second approval attempt is rejected as an invalid transition.
func TestUpdate_SubmittedToApprovedToPaid(t *testing.T) {
	s := newService()
	ctx := context.Background()
	e := submitTaxi(t, s, alice())

	approved, err := s.Update(ctx, bob(), e.ID, e.Purpose, e.Amount, models.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)

	paid, err := s.Update(ctx, payoutApp(), e.ID, e.Purpose, e.Amount, models.StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, paid.Status)

	_, err = s.Update(ctx, bob(), e.ID, e.Purpose, e.Amount, models.StatusApproved)
	require.ErrorIs(t, err, common.ErrInvalidTransition)
	assert.Equal(t, `An expense cannot move from "Paid" to "Approved".`, err.Error())
}

func TestUpdate_SelfApprovalDenied(t *testing.T) {
	s := newService()
	e := submitTaxi(t, s, bob())

	_, err := s.Update(context.Background(), bob(), e.ID, e.Purpose, e.Amount, models.StatusApproved)
	require.ErrorIs(t, err, common.ErrForbidden)
	assert.Equal(t, "You cannot approve your own expenses.", err.Error())

	got, gerr := s.GetOne(context.Background(), bob(), e.ID)
	require.NoError(t, gerr)
	assert.Equal(t, models.StatusSubmitted, got.Status)
}

func TestUpdate_ApprovalIgnoresContentChanges(t *testing.T) {
	s := newService()
	e := submitTaxi(t, s, alice())

	got, err := s.Update(context.Background(), bob(), e.ID, "Helicopter", 99999, models.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
	assert.Equal(t, "Taxi", got.Purpose)
	assert.Equal(t, int64(50), got.Amount)
}

func TestUpdate_ApprovalRequiresApproverRole(t *testing.T) {
	s := newService()
	e := submitTaxi(t, s, alice())

	other := models.Caller{UserID: "carol-id", Scopes: []string{common.ScopeExpensesReadWrite}, Roles: []string{common.RoleExpenseSubmitter}}
	_, err := s.Update(context.Background(), other, e.ID, e.Purpose, e.Amount, models.StatusApproved)
	require.ErrorIs(t, err, common.ErrForbidden)
	assert.Equal(t, `The "Expense Approver" role is required.`, err.Error())
}

func TestUpdate_PayingRequiresAllAccessRole(t *testing.T) {
	s := newService()
	ctx := context.Background()
	e := submitTaxi(t, s, alice())

	_, err := s.Update(ctx, bob(), e.ID, e.Purpose, e.Amount, models.StatusApproved)
	require.NoError(t, err)

	// Even the approver cannot mark an expense paid.
	_, err = s.Update(ctx, bob(), e.ID, e.Purpose, e.Amount, models.StatusPaid)
	require.ErrorIs(t, err, common.ErrForbidden)
	assert.Equal(t, `The "Expense.ReadWrite.All" role is required.`, err.Error())
}

func TestUpdate_PaidRequiresApprovedFirst(t *testing.T) {
	s := newService()
	e := submitTaxi(t, s, alice())

	_, err := s.Update(context.Background(), payoutApp(), e.ID, e.Purpose, e.Amount, models.StatusPaid)
	require.ErrorIs(t, err, common.ErrInvalidTransition)
	assert.Equal(t, `An expense cannot move from "Submitted" to "Paid".`, err.Error())
}

func TestUpdate_EditKeepsStatusAndChangesContent(t *testing.T) {
	s := newService()
	e := submitTaxi(t, s, alice())

	got, err := s.Update(context.Background(), alice(), e.ID, "Train", 75, models.StatusSubmitted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, got.Status)
	assert.Equal(t, "Train", got.Purpose)
	assert.Equal(t, int64(75), got.Amount)
}

func TestUpdate_EditDeniedForNonOwner(t *testing.T) {
	s := newService()
	e := submitTaxi(t, s, alice())

	_, err := s.Update(context.Background(), bob(), e.ID, "Train", 75, models.StatusSubmitted)
	require.ErrorIs(t, err, common.ErrForbidden)
	assert.Equal(t, "You can only update your own expenses.", err.Error())
}

func TestUpdate_EditDeniedAfterApproval(t *testing.T) {
	s := newService()
	ctx := context.Background()
	e := submitTaxi(t, s, alice())

	_, err := s.Update(ctx, bob(), e.ID, e.Purpose, e.Amount, models.StatusApproved)
	require.NoError(t, err)

	// Re-sending Approved lands in the edit branch, which only allows
	// submitted expenses.
	_, err = s.Update(ctx, alice(), e.ID, "Train", 75, models.StatusApproved)
	require.ErrorIs(t, err, common.ErrForbidden)
	assert.Equal(t, "You can only update submitted expenses.", err.Error())
}

func TestUpdate_EditValidatesFields(t *testing.T) {
	s := newService()
	e := submitTaxi(t, s, alice())

	_, err := s.Update(context.Background(), alice(), e.ID, "", 75, models.StatusSubmitted)
	require.ErrorIs(t, err, common.ErrValidation)

	got, gerr := s.GetOne(context.Background(), alice(), e.ID)
	require.NoError(t, gerr)
	assert.Equal(t, "Taxi", got.Purpose)
}

func TestUpdate_UnknownStatusRejectedBeforeLookup(t *testing.T) {
	s := newService()

	// Even a missing id reports the status problem first.
	_, err := s.Update(context.Background(), alice(), "no-such-id", "Taxi", 50, models.ExpenseStatus("Rejected"))
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, `Unknown expense status "Rejected".`, err.Error())
}

func TestUpdate_NotFound(t *testing.T) {
	s := newService()

	_, err := s.Update(context.Background(), alice(), "no-such-id", "Taxi", 50, models.StatusSubmitted)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdate_BackwardTransitionRejected(t *testing.T) {
	s := newService()
	ctx := context.Background()
	e := submitTaxi(t, s, alice())

	_, err := s.Update(ctx, bob(), e.ID, e.Purpose, e.Amount, models.StatusApproved)
	require.NoError(t, err)

	_, err = s.Update(ctx, payoutApp(), e.ID, e.Purpose, e.Amount, models.StatusSubmitted)
	require.ErrorIs(t, err, common.ErrInvalidTransition)
	assert.Equal(t, `An expense cannot move from "Approved" to "Submitted".`, err.Error())
}

func TestDelete_OwnerDeletesSubmitted(t *testing.T) {
	s := newService()
	e := submitTaxi(t, s, alice())

	require.NoError(t, s.Delete(context.Background(), alice(), e.ID))

	_, err := s.GetOne(context.Background(), alice(), e.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDelete_Denials(t *testing.T) {
	s := newService()
	ctx := context.Background()

	e := submitTaxi(t, s, alice())

	err := s.Delete(ctx, bob(), e.ID)
	require.ErrorIs(t, err, common.ErrForbidden)
	assert.Equal(t, "You can only delete your own expenses.", err.Error())

	_, err = s.Update(ctx, bob(), e.ID, e.Purpose, e.Amount, models.StatusApproved)
	require.NoError(t, err)

	err = s.Delete(ctx, alice(), e.ID)
	require.ErrorIs(t, err, common.ErrForbidden)
	assert.Equal(t, "You can only delete submitted expenses.", err.Error())

	err = s.Delete(ctx, alice(), "no-such-id")
	require.ErrorIs(t, err, common.ErrNotFound)
}
