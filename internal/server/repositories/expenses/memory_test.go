package expenses

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expenses/internal/common"
	"expenses/internal/server/models"
)

func newExpense(id, userID string) *models.Expense {
	return &models.Expense{
		ID:                     id,
		Purpose:                "Taxi",
		Amount:                 50,
		Status:                 models.StatusSubmitted,
		CreatedUserID:          userID,
		CreatedUserDisplayName: "User " + userID,
		CreatedDate:            time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMemory_CreateAndGet(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	e := newExpense("e1", "u1")
	require.NoError(t, repo.Create(ctx, e))

	got, err := repo.GetByID(ctx, "e1")
	require.NoError(t, err)
	if diff := cmp.Diff(e, got); diff != "" {
		t.Fatalf("expense mismatch (-want +got):\n%s", diff)
	}
}

func TestMemory_GetReturnsACopy(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newExpense("e1", "u1")))

	got, err := repo.GetByID(ctx, "e1")
	require.NoError(t, err)
	got.Amount = 9999

	again, err := repo.GetByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, int64(50), again.Amount)
}

func TestMemory_GetByID_NotFound(t *testing.T) {
	repo := NewMemoryRepository()

	_, err := repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemory_ListByCreator_InsertionOrder(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newExpense("e1", "u1")))
	require.NoError(t, repo.Create(ctx, newExpense("e2", "u2")))
	require.NoError(t, repo.Create(ctx, newExpense("e3", "u1")))

	mine, err := repo.ListByCreator(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "e1", mine[0].ID)
	assert.Equal(t, "e3", mine[1].ID)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"e1", "e2", "e3"}, []string{all[0].ID, all[1].ID, all[2].ID})
}

func TestMemory_Update_MutatorErrorLeavesEntityUntouched(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newExpense("e1", "u1")))

	wantErr := errors.New("denied")
	_, err := repo.Update(ctx, "e1", func(e *models.Expense) error {
		e.Amount = 9999
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)

	got, err := repo.GetByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, int64(50), got.Amount)
}

func TestMemory_Update_NotFound(t *testing.T) {
	repo := NewMemoryRepository()

	_, err := repo.Update(context.Background(), "missing", func(e *models.Expense) error { return nil })
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestMemory_Delete(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newExpense("e1", "u1")))
	require.NoError(t, repo.Delete(ctx, "e1", func(e *models.Expense) error { return nil }))

	_, err := repo.GetByID(ctx, "e1")
	require.ErrorIs(t, err, common.ErrNotFound)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMemory_Delete_GuardErrorKeepsEntity(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newExpense("e1", "u1")))

	wantErr := errors.New("denied")
	require.ErrorIs(t, repo.Delete(ctx, "e1", func(e *models.Expense) error { return wantErr }), wantErr)

	_, err := repo.GetByID(ctx, "e1")
	require.NoError(t, err)
}

// Concurrent mutators on the same entity must serialize: every increment
// must observe the previous one, with no lost update.
func TestMemory_Update_ConcurrentMutatorsSerialize(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	e := newExpense("e1", "u1")
	e.Amount = 0
	require.NoError(t, repo.Create(ctx, e))

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, "e1", func(e *models.Expense) error {
				e.Amount++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.GetByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, int64(workers), got.Amount)
}

// A losing transition must observe the winner's state, never the stale one.
func TestMemory_Update_LoserSeesWinnersState(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newExpense("e1", "u1")))

	const workers = 20
	approvals := make(chan error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, "e1", func(e *models.Expense) error {
				if e.Status != models.StatusSubmitted {
					return fmt.Errorf("already %s", e.Status)
				}
				e.Status = models.StatusApproved
				return nil
			})
			approvals <- err
		}()
	}
	wg.Wait()
	close(approvals)

	var succeeded int
	for err := range approvals {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one approval must win")

	got, err := repo.GetByID(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
}
