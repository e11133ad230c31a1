package savedsearch

import (
	"context"
	"sync"
	"time"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu       sync.RWMutex
	searches map[string]*SavedSearch
}

// NewInMemoryRepository creates a new in-memory saved search repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		searches: make(map[string]*SavedSearch),
	}
}

// Get retrieves a saved search by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*SavedSearch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.searches[id]
	if !ok {
		return nil, ErrSearchNotFound
	}

	// Return a copy
	cpy := *s
	return &cpy, nil
}

// GetByUserAndID retrieves a saved search by user ID and search ID.
func (r *InMemoryRepository) GetByUserAndID(_ context.Context, userID, searchID string) (*SavedSearch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.searches[searchID]
	if !ok {
		return nil, ErrSearchNotFound
	}

	if s.UserID != userID {
		return nil, ErrSearchNotFound
	}

	// Return a copy
	cpy := *s
	return &cpy, nil
}

// List retrieves all saved searches for a user with pagination.
func (r *InMemoryRepository) List(_ context.Context, userID string, opts ListOptions) (*ListResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var searches []*SavedSearch
	for _, s := range r.searches {
		if s.UserID == userID {
			cpy := *s
			searches = append(searches, &cpy)
		}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	result := &ListResult{
		Items: searches,
	}

	if len(searches) > limit {
		result.Items = searches[:limit]
		result.NextCursor = searches[limit-1].ID
	}

	return result, nil
}

// ListEnabled retrieves every enabled saved search across all users.
func (r *InMemoryRepository) ListEnabled(_ context.Context) ([]*SavedSearch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var searches []*SavedSearch
	for _, s := range r.searches {
		if s.Enabled {
			cpy := *s
			searches = append(searches, &cpy)
		}
	}

	return searches, nil
}

// Create creates a new saved search.
func (r *InMemoryRepository) Create(_ context.Context, s *SavedSearch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *s
	r.searches[s.ID] = &cpy
	return nil
}

// Update updates an existing saved search.
func (r *InMemoryRepository) Update(_ context.Context, s *SavedSearch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.searches[s.ID]; !ok {
		return ErrSearchNotFound
	}

	cpy := *s
	r.searches[s.ID] = &cpy
	return nil
}

// MarkRun records the time a saved search was last executed.
func (r *InMemoryRepository) MarkRun(_ context.Context, id string, ranAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.searches[id]
	if !ok {
		return ErrSearchNotFound
	}

	t := ranAt
	s.LastRunAt = &t
	return nil
}

// Delete deletes a saved search by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.searches, id)
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
