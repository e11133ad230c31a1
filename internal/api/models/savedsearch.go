package models

// SavedSearch represents a stored fare search.
type SavedSearch struct {
	ID        string        `json:"id"`
	Label     string        `json:"label"`
	Query     SearchRequest `json:"query"`
	Enabled   bool          `json:"enabled"`
	LastRunAt *Timestamp    `json:"lastRunAt,omitempty"`
	CreatedAt Timestamp     `json:"createdAt"`
	UpdatedAt Timestamp     `json:"updatedAt"`
}

// SavedSearchCreateRequest is the request body for creating a saved search.
type SavedSearchCreateRequest struct {
	Label   string        `json:"label" validate:"required,min=1,max=80"`
	Query   SearchRequest `json:"query" validate:"required"`
	Enabled *bool         `json:"enabled,omitempty"`
}

// SavedSearchUpdateRequest is the request body for updating a saved search.
type SavedSearchUpdateRequest struct {
	Label   *string        `json:"label,omitempty" validate:"omitempty,min=1,max=80"`
	Query   *SearchRequest `json:"query,omitempty"`
	Enabled *bool          `json:"enabled,omitempty"`
}

// PagedSavedSearches represents a paginated list of saved searches.
type PagedSavedSearches struct {
	Items []SavedSearch     `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}
