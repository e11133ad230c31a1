package savedsearch

import (
	"context"
	"time"
)

// ListOptions contains options for listing saved searches.
type ListOptions struct {
	Limit  int
	Cursor string
}

// ListResult contains the results of listing saved searches.
type ListResult struct {
	Items      []*SavedSearch
	NextCursor string
}

// Repository defines the interface for saved search persistence.
type Repository interface {
	// Get retrieves a saved search by ID.
	Get(ctx context.Context, id string) (*SavedSearch, error)

	// GetByUserAndID retrieves a saved search by user ID and search ID.
	// Returns ErrSearchNotFound if the search doesn't exist or doesn't
	// belong to the user.
	GetByUserAndID(ctx context.Context, userID, searchID string) (*SavedSearch, error)

	// List retrieves all saved searches for a user with pagination.
	List(ctx context.Context, userID string, opts ListOptions) (*ListResult, error)

	// ListEnabled retrieves every enabled saved search across all users.
	// The worker uses this to run scheduled refreshes.
	ListEnabled(ctx context.Context) ([]*SavedSearch, error)

	// Create creates a new saved search.
	Create(ctx context.Context, s *SavedSearch) error

	// Update updates an existing saved search.
	Update(ctx context.Context, s *SavedSearch) error

	// MarkRun records the time a saved search was last executed.
	MarkRun(ctx context.Context, id string, ranAt time.Time) error

	// Delete deletes a saved search by ID.
	Delete(ctx context.Context, id string) error
}
