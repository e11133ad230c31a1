package savedsearch

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL saved search repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const searchColumns = `
	id, user_id, label,
	trip_type, origin, destination, return_origin,
	start_date, end_date, return_date,
	nights, departure_hour, preference,
	enabled, last_run_at, created_at, updated_at
`

// Get retrieves a saved search by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*SavedSearch, error) {
	query := `SELECT ` + searchColumns + ` FROM saved_searches WHERE id = $1`
	return r.scanSearch(r.pool.QueryRow(ctx, query, id))
}

// GetByUserAndID retrieves a saved search by user ID and search ID.
func (r *PostgresRepository) GetByUserAndID(ctx context.Context, userID, searchID string) (*SavedSearch, error) {
	query := `SELECT ` + searchColumns + ` FROM saved_searches WHERE id = $1 AND user_id = $2`
	return r.scanSearch(r.pool.QueryRow(ctx, query, searchID, userID))
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanSearch scans a saved search from a query result row.
func (r *PostgresRepository) scanSearch(row rowScanner) (*SavedSearch, error) {
	var (
		s            SavedSearch
		returnOrigin *string
	)

	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Label,
		&s.Query.TripType,
		&s.Query.Origin,
		&s.Query.Destination,
		&returnOrigin,
		&s.Query.StartDate,
		&s.Query.EndDate,
		&s.Query.ReturnDate,
		&s.Query.Nights,
		&s.Query.DepartureHour,
		&s.Query.Preference,
		&s.Enabled,
		&s.LastRunAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSearchNotFound
		}
		return nil, err
	}

	if returnOrigin != nil {
		s.Query.ReturnOrigin = *returnOrigin
	}
	return &s, nil
}

// List retrieves all saved searches for a user with pagination.
func (r *PostgresRepository) List(ctx context.Context, userID string, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	// Fetch one extra to determine if there are more results
	fetchLimit := limit + 1

	query := `
		SELECT ` + searchColumns + `
		FROM saved_searches
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, fetchLimit)
	if err != nil {
		return nil, err
	}

	searches, err := r.collectSearches(rows)
	if err != nil {
		return nil, err
	}

	result := &ListResult{
		Items: searches,
	}

	// If we got more results than the limit, there are more pages
	if len(searches) > limit {
		result.Items = searches[:limit]
		result.NextCursor = searches[limit-1].ID
	}

	return result, nil
}

// ListEnabled retrieves every enabled saved search across all users.
func (r *PostgresRepository) ListEnabled(ctx context.Context) ([]*SavedSearch, error) {
	query := `
		SELECT ` + searchColumns + `
		FROM saved_searches
		WHERE enabled
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return r.collectSearches(rows)
}

func (r *PostgresRepository) collectSearches(rows pgx.Rows) ([]*SavedSearch, error) {
	defer rows.Close()

	var searches []*SavedSearch
	for rows.Next() {
		s, err := r.scanSearch(rows)
		if err != nil {
			return nil, err
		}
		searches = append(searches, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return searches, nil
}

// Create creates a new saved search.
func (r *PostgresRepository) Create(ctx context.Context, s *SavedSearch) error {
	query := `
		INSERT INTO saved_searches (
			id, user_id, label,
			trip_type, origin, destination, return_origin,
			start_date, end_date, return_date,
			nights, departure_hour, preference,
			enabled, last_run_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.UserID,
		s.Label,
		s.Query.TripType,
		s.Query.Origin,
		s.Query.Destination,
		nullableString(s.Query.ReturnOrigin),
		s.Query.StartDate,
		s.Query.EndDate,
		s.Query.ReturnDate,
		s.Query.Nights,
		s.Query.DepartureHour,
		s.Query.Preference,
		s.Enabled,
		s.LastRunAt,
		s.CreatedAt,
		s.UpdatedAt,
	)
	return err
}

// Update updates an existing saved search.
func (r *PostgresRepository) Update(ctx context.Context, s *SavedSearch) error {
	query := `
		UPDATE saved_searches SET
			label = $2,
			trip_type = $3,
			origin = $4,
			destination = $5,
			return_origin = $6,
			start_date = $7,
			end_date = $8,
			return_date = $9,
			nights = $10,
			departure_hour = $11,
			preference = $12,
			enabled = $13,
			updated_at = $14
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		s.ID,
		s.Label,
		s.Query.TripType,
		s.Query.Origin,
		s.Query.Destination,
		nullableString(s.Query.ReturnOrigin),
		s.Query.StartDate,
		s.Query.EndDate,
		s.Query.ReturnDate,
		s.Query.Nights,
		s.Query.DepartureHour,
		s.Query.Preference,
		s.Enabled,
		s.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrSearchNotFound
	}

	return nil
}

// MarkRun records the time a saved search was last executed.
func (r *PostgresRepository) MarkRun(ctx context.Context, id string, ranAt time.Time) error {
	query := `UPDATE saved_searches SET last_run_at = $2 WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, ranAt)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrSearchNotFound
	}

	return nil
}

// Delete deletes a saved search by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM saved_searches WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
