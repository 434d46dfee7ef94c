package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/tboflights/internal/cache"
	"github.com/dharmasatrya/tboflights/internal/filter"
	"github.com/dharmasatrya/tboflights/internal/models"
	"github.com/dharmasatrya/tboflights/internal/orchestrator"
)

// Searcher is implemented by *orchestrator.Orchestrator.
type Searcher interface {
	Search(ctx context.Context, req models.SearchRequest) (*orchestrator.Result, error)
}

type SearchHandler struct {
	searcher Searcher
	cache    cache.Cache
}

type searchBody struct {
	models.SearchRequest
	Filters   *models.SearchFilters `json:"filters,omitempty"`
	SortBy    string                `json:"sortBy,omitempty"`
	SortOrder string                `json:"sortOrder,omitempty"`
}

func NewSearchHandler(s Searcher, c cache.Cache) *SearchHandler {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return &SearchHandler{
		searcher: s,
		cache:    c,
	}
}

func (h *SearchHandler) Search(c echo.Context) error {
	startTime := time.Now()
	ctx := c.Request().Context()

	var body searchBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body",
			Code:    http.StatusBadRequest,
		})
	}

	req := body.SearchRequest
	req.Normalize()
	criteria := buildSearchCriteria(req, body)
	searchID := uuid.New().String()

	if err := req.Validate(); err == nil {
		if entry, found := h.cache.Get(ctx, req); found {
			view := filter.View(entry.Items, body.Filters, body.SortBy, body.SortOrder)
			return c.JSON(http.StatusOK, models.SearchResponse{
				Success:        true,
				SearchID:       searchID,
				TraceID:        entry.TraceID,
				Results:        view,
				TotalResults:   len(view),
				SearchCriteria: criteria,
				CacheHit:       true,
				SearchTimeMs:   time.Since(startTime).Milliseconds(),
			})
		}
	}

	result, err := h.searcher.Search(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		slog.ErrorContext(ctx, "flight search failed", "search_id", searchID, "error", err)
		return c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "search_error",
			Message: "Failed to search flights",
			Code:    http.StatusBadGateway,
		})
	}

	if len(result.ValidationErrors) > 0 {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: result.ValidationErrors.Error(),
			Errors:  result.ValidationErrors,
			Code:    http.StatusBadRequest,
		})
	}

	if result.Success {
		if err := h.cache.Set(ctx, req, cache.Entry{TraceID: result.TraceID, Items: result.Results}); err != nil {
			slog.WarnContext(ctx, "failed to cache search results", "error", err)
		}
	}

	view := filter.View(result.Results, body.Filters, body.SortBy, body.SortOrder)
	resp := models.SearchResponse{
		Success:        result.Success,
		SearchID:       searchID,
		TraceID:        result.TraceID,
		Results:        view,
		TotalResults:   len(view),
		ProviderError:  result.ProviderError,
		SearchCriteria: criteria,
		SearchTimeMs:   time.Since(startTime).Milliseconds(),
	}

	return c.JSON(statusFor(result.ProviderError), resp)
}

func statusFor(perr *models.ProviderError) int {
	if perr == nil {
		return http.StatusOK
	}
	switch perr.Code {
	case orchestrator.CodeAuthFailed:
		return http.StatusServiceUnavailable
	case orchestrator.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusOK
	}
}

func buildSearchCriteria(req models.SearchRequest, body searchBody) models.SearchCriteria {
	return models.SearchCriteria{
		SearchRequest: req,
		Filters:       body.Filters,
		SortBy:        body.SortBy,
		SortOrder:     body.SortOrder,
	}
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
