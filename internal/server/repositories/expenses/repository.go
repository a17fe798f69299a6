// Package expenses holds the authoritative set of expense entities behind
// the Repository interface. The store enforces no business rules of its own;
// it only guarantees unique ids, atomic visibility of mutations, and
// serialization of concurrent mutations on the same entity.
package expenses

import (
	"context"

	"expenses/internal/server/models"
)

// Mutator inspects and modifies an expense in place. It runs while the store
// holds the entity exclusively (under the store lock or inside a row-locking
// transaction), so the state it observes is the state the change applies to.
// Returning an error discards the mutation and propagates the error
// unchanged to the caller.
type Mutator func(e *models.Expense) error

// Guard validates an expense about to be deleted, under the same exclusivity
// as a Mutator. Returning an error aborts the delete.
type Guard func(e *models.Expense) error

// Repository is the persistence boundary for expenses.
type Repository interface {
	// Create inserts a new expense. The caller supplies the id.
	Create(ctx context.Context, e *models.Expense) error

	// GetByID returns a copy of the expense, or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Expense, error)

	// ListByCreator returns copies of the expenses created by userID, in
	// insertion order.
	ListByCreator(ctx context.Context, userID string) ([]*models.Expense, error)

	// ListAll returns copies of every expense, in insertion order.
	ListAll(ctx context.Context) ([]*models.Expense, error)

	// Update applies mutate to the expense while holding it exclusively and
	// persists the result, returning a copy of the updated entity. Returns
	// common.ErrNotFound if the id does not exist, or the mutator's error
	// with no change persisted.
	Update(ctx context.Context, id string, mutate Mutator) (*models.Expense, error)

	// Delete removes the expense after guard approves it under exclusivity.
	// Returns common.ErrNotFound if the id does not exist, or the guard's
	// error with the entity left in place.
	Delete(ctx context.Context, id string, guard Guard) error
}
