package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/farescout/farescout/internal/api/middleware"
	"github.com/farescout/farescout/internal/api/models"
	"github.com/farescout/farescout/internal/api/response"
	"github.com/farescout/farescout/internal/savedsearch"
)

// SavedSearchHandler handles saved search endpoints.
type SavedSearchHandler struct {
	service *savedsearch.Service
}

// NewSavedSearchHandler creates a new SavedSearchHandler.
func NewSavedSearchHandler(service *savedsearch.Service) *SavedSearchHandler {
	return &SavedSearchHandler{service: service}
}

// ListSavedSearches handles GET /v1/me/searches - list saved searches.
func (h *SavedSearchHandler) ListSavedSearches(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			response.BadRequest(w, r, "limit must be an integer between 1 and 100", nil)
			return
		}
		limit = parsed
	}

	result, err := h.service.List(r.Context(), userID, limit)
	if err != nil {
		response.InternalError(w, r, "failed to list saved searches")
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// CreateSavedSearch handles POST /v1/me/searches - create a saved search.
func (h *SavedSearchHandler) CreateSavedSearch(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input models.SavedSearchCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	result, err := h.service.Create(r.Context(), userID, &input)
	if err != nil {
		writeSavedSearchError(w, r, err)
		return
	}

	location := fmt.Sprintf("/v1/me/searches/%s", result.ID)
	response.Created(w, r, location, result)
}

// GetSavedSearch handles GET /v1/me/searches/{searchId} - get a saved search.
func (h *SavedSearchHandler) GetSavedSearch(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	searchID := chi.URLParam(r, "searchId")

	result, err := h.service.Get(r.Context(), userID, searchID)
	if err != nil {
		writeSavedSearchError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// UpdateSavedSearch handles PUT /v1/me/searches/{searchId} - update a saved search.
func (h *SavedSearchHandler) UpdateSavedSearch(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	searchID := chi.URLParam(r, "searchId")

	var input models.SavedSearchUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	result, err := h.service.Update(r.Context(), userID, searchID, &input)
	if err != nil {
		writeSavedSearchError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// DeleteSavedSearch handles DELETE /v1/me/searches/{searchId} - delete a saved search.
func (h *SavedSearchHandler) DeleteSavedSearch(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	searchID := chi.URLParam(r, "searchId")

	if err := h.service.Delete(r.Context(), userID, searchID); err != nil {
		writeSavedSearchError(w, r, err)
		return
	}

	response.NoContent(w, r)
}

// writeSavedSearchError maps saved search failures onto problem responses.
func writeSavedSearchError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *savedsearch.ValidationError
	switch {
	case errors.Is(err, savedsearch.ErrSearchNotFound):
		response.NotFound(w, r, "saved search not found")
	case errors.As(err, &validationErr):
		response.BadRequest(w, r, "invalid saved search", validationErr.Errors)
	default:
		response.InternalError(w, r, "saved search operation failed")
	}
}
