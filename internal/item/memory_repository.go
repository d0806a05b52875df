package item

import (
	"context"
	"sort"
	"sync"
	"time"

	"item_catalog/internal/apperror"
)

type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]*Item
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]*Item)}
}

// clone copies the lists so callers never share backing arrays with the
// stored record.
func clone(it *Item) *Item {
	c := *it
	c.Comments = append([]string{}, it.Comments...)
	c.Ratings = append([]float64{}, it.Ratings...)
	return &c
}

func (r *MemoryRepository) Create(_ context.Context, item *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return apperror.ErrConflict
	}
	r.items[item.ID] = clone(item.normalize())
	return nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*Item, 0, len(r.items))
	for _, it := range r.items {
		items = append(items, clone(it))
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	it, ok := r.items[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	return clone(it), nil
}

func (r *MemoryRepository) Update(_ context.Context, id string, patch Patch, updatedAt time.Time) (*Item, error) {
	return r.mutate(id, func(it *Item) {
		patch.Apply(it)
		it.UpdatedAt = updatedAt
	})
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return apperror.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryRepository) AppendComment(_ context.Context, id, comment string, at time.Time) (*Item, error) {
	return r.mutate(id, func(it *Item) {
		it.Comments = append(it.Comments, comment)
		it.UpdatedAt = at
	})
}

func (r *MemoryRepository) AppendRating(_ context.Context, id string, rating float64, at time.Time) (*Item, error) {
	return r.mutate(id, func(it *Item) {
		it.Ratings = append(it.Ratings, rating)
		it.UpdatedAt = at
	})
}

func (r *MemoryRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.items)), nil
}

func (r *MemoryRepository) mutate(id string, fn func(it *Item)) (*Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.items[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	fn(it)
	return clone(it), nil
}
