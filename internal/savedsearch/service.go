package savedsearch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/farescout/farescout/internal/api/models"
)

// Service errors.
var (
	ErrNotAuthorized = errors.New("not authorized to access this saved search")
)

// Validation constants.
const (
	MaxLabelLength = 80
)

// Service provides saved search operations.
type Service struct {
	repo Repository
}

// NewService creates a new saved search service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List retrieves all saved searches for a user.
func (s *Service) List(ctx context.Context, userID string, limit int) (*models.PagedSavedSearches, error) {
	result, err := s.repo.List(ctx, userID, ListOptions{Limit: limit})
	if err != nil {
		return nil, err
	}

	items := make([]models.SavedSearch, 0, len(result.Items))
	for _, sv := range result.Items {
		items = append(items, s.toAPISearch(sv))
	}

	var nextCursor *string
	if result.NextCursor != "" {
		nextCursor = &result.NextCursor
	}

	return &models.PagedSavedSearches{
		Items: items,
		Meta: models.PagedResponseMeta{
			Limit:      limit,
			NextCursor: nextCursor,
		},
	}, nil
}

// Get retrieves a saved search by ID for a user.
func (s *Service) Get(ctx context.Context, userID, searchID string) (*models.SavedSearch, error) {
	sv, err := s.repo.GetByUserAndID(ctx, userID, searchID)
	if err != nil {
		return nil, err
	}

	result := s.toAPISearch(sv)
	return &result, nil
}

// Create creates a new saved search for a user.
func (s *Service) Create(ctx context.Context, userID string, input *models.SavedSearchCreateRequest) (*models.SavedSearch, error) {
	fieldErrors := validateLabel(input.Label, true)

	query, queryErrors := ParseQuery(input.Query)
	fieldErrors = append(fieldErrors, prefixFields(queryErrors, "query.")...)

	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := time.Now()
	enabled := true
	if input.Enabled != nil {
		enabled = *input.Enabled
	}

	sv := &SavedSearch{
		ID:        "svs_" + uuid.New().String()[:22],
		UserID:    userID,
		Label:     input.Label,
		Query:     query,
		Enabled:   enabled,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, sv); err != nil {
		return nil, err
	}

	result := s.toAPISearch(sv)
	return &result, nil
}

// Update updates an existing saved search for a user.
func (s *Service) Update(ctx context.Context, userID, searchID string, input *models.SavedSearchUpdateRequest) (*models.SavedSearch, error) {
	sv, err := s.repo.GetByUserAndID(ctx, userID, searchID)
	if err != nil {
		return nil, err
	}

	var fieldErrors []models.FieldError
	if input.Label != nil {
		fieldErrors = append(fieldErrors, validateLabel(*input.Label, false)...)
	}

	var query Query
	if input.Query != nil {
		var queryErrors []models.FieldError
		query, queryErrors = ParseQuery(*input.Query)
		fieldErrors = append(fieldErrors, prefixFields(queryErrors, "query.")...)
	}

	if len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	// Apply updates
	if input.Label != nil {
		sv.Label = *input.Label
	}
	if input.Query != nil {
		sv.Query = query
	}
	if input.Enabled != nil {
		sv.Enabled = *input.Enabled
	}
	sv.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, sv); err != nil {
		return nil, err
	}

	result := s.toAPISearch(sv)
	return &result, nil
}

// Delete deletes a saved search for a user.
func (s *Service) Delete(ctx context.Context, userID, searchID string) error {
	// Verify ownership
	if _, err := s.repo.GetByUserAndID(ctx, userID, searchID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, searchID)
}

// validateLabel validates a label field.
func validateLabel(label string, required bool) []models.FieldError {
	if label == "" {
		if required {
			return []models.FieldError{{Field: "label", Message: "is required"}}
		}
		return []models.FieldError{{Field: "label", Message: "cannot be empty"}}
	}
	if len(label) > MaxLabelLength {
		return []models.FieldError{{Field: "label", Message: "must be at most 80 characters"}}
	}
	return nil
}

// prefixFields scopes field errors under a parent object name.
func prefixFields(errs []models.FieldError, prefix string) []models.FieldError {
	for i := range errs {
		errs[i].Field = prefix + errs[i].Field
	}
	return errs
}

// toAPISearch converts a domain SavedSearch to an API SavedSearch.
func (s *Service) toAPISearch(sv *SavedSearch) models.SavedSearch {
	result := models.SavedSearch{
		ID:        sv.ID,
		Label:     sv.Label,
		Query:     sv.Query.Model(),
		Enabled:   sv.Enabled,
		CreatedAt: models.Timestamp(sv.CreatedAt),
		UpdatedAt: models.Timestamp(sv.UpdatedAt),
	}
	if sv.LastRunAt != nil {
		lastRun := models.Timestamp(*sv.LastRunAt)
		result.LastRunAt = &lastRun
	}
	return result
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
