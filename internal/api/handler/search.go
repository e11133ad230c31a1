package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/farescout/farescout/internal/api/models"
	"github.com/farescout/farescout/internal/api/response"
	"github.com/farescout/farescout/internal/journey"
	"github.com/farescout/farescout/internal/savedsearch"
	"github.com/farescout/farescout/internal/search"
)

// SearchRunner executes a fare search.
type SearchRunner interface {
	Run(ctx context.Context, req search.Request, progress search.ProgressFunc) (*search.Outcome, error)
}

// SearchHandler handles fare search endpoints.
type SearchHandler struct {
	runner SearchRunner
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(runner SearchRunner) *SearchHandler {
	return &SearchHandler{runner: runner}
}

// Search handles POST /v1/search - run a multi-date fare search.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var input models.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	query, fieldErrors := savedsearch.ParseQuery(input)
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid search request", fieldErrors)
		return
	}

	outcome, err := h.runner.Run(r.Context(), query.SearchRequest(), nil)
	if err != nil {
		writeSearchError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, outcomeModel(outcome))
}

// writeSearchError maps search failures onto problem responses.
func writeSearchError(w http.ResponseWriter, r *http.Request, err error) {
	var netErr *search.NetworkError
	switch {
	case search.IsValidation(err):
		response.BadRequest(w, r, err.Error(), nil)
	case errors.As(err, &netErr):
		response.ServiceUnavailable(w, r, "journey provider is unavailable")
	default:
		response.InternalError(w, r, "search failed")
	}
}

// outcomeModel converts a search outcome into its API representation.
func outcomeModel(outcome *search.Outcome) models.SearchResponse {
	results := make([]models.DateResult, 0, len(outcome.Results))
	for _, dr := range outcome.Results {
		result := models.DateResult{
			Date:       dr.Date.Format("2006-01-02"),
			TotalPrice: dr.TotalPrice,
			Currency:   dr.Currency,
			Outbound:   recordModel(dr.Outbound),
			Return:     recordModel(dr.Return),
		}
		if !dr.ReturnDate.IsZero() {
			ret := dr.ReturnDate.Format("2006-01-02")
			result.ReturnDate = &ret
		}
		results = append(results, result)
	}

	failures := outcome.Failures
	if failures == nil {
		failures = []string{}
	}

	return models.SearchResponse{
		Results:      results,
		Failures:     failures,
		SuccessCount: outcome.SuccessCount,
		FailureCount: outcome.FailureCount,
	}
}

func recordModel(rec *journey.Record) *models.JourneyRecord {
	if rec == nil {
		return nil
	}
	return &models.JourneyRecord{
		Departure: models.Timestamp(rec.Departure),
		Arrival:   models.Timestamp(rec.Arrival),
		Price:     rec.Price,
		Currency:  rec.Currency,
		TrainName: rec.TrainName,
		Transfers: rec.Transfers,
		LegCount:  rec.LegCount,
	}
}
