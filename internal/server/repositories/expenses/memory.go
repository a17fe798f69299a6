package expenses

import (
	"context"
	"sync"

	"expenses/internal/common"
	"expenses/internal/server/models"
)

// MemoryRepository keeps the expense collection in process memory behind a
// single mutex. Mutators and guards run under that mutex, which serializes
// concurrent transitions on the same entity: the loser of a race observes
// the winner's result.
type MemoryRepository struct {
	mu    sync.Mutex
	items map[string]*models.Expense
	order []string
}

// NewMemoryRepository constructs an empty in-memory store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]*models.Expense)}
}

func (r *MemoryRepository) Create(ctx context.Context, e *models.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[e.ID]; ok {
		return common.ErrInternal
	}
	r.items[e.ID] = e.Clone()
	r.order = append(r.order, e.ID)
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return e.Clone(), nil
}

func (r *MemoryRepository) ListByCreator(ctx context.Context, userID string) ([]*models.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*models.Expense
	for _, id := range r.order {
		if e := r.items[id]; e.CreatedUserID == userID {
			result = append(result, e.Clone())
		}
	}
	return result, nil
}

func (r *MemoryRepository) ListAll(ctx context.Context) ([]*models.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]*models.Expense, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.items[id].Clone())
	}
	return result, nil
}

func (r *MemoryRepository) Update(ctx context.Context, id string, mutate Mutator) (*models.Expense, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}

	// Mutate a copy so a failed mutation leaves the stored entity intact
	// and no partial update is ever observable.
	updated := e.Clone()
	if err := mutate(updated); err != nil {
		return nil, err
	}
	r.items[id] = updated
	return updated.Clone(), nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string, guard Guard) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]
	if !ok {
		return common.ErrNotFound
	}
	if err := guard(e.Clone()); err != nil {
		return err
	}

	delete(r.items, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}
