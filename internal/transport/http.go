package transport

import (
	"errors"
	"net/http"
	"strconv"

	"marketplace/internal/middleware"
	"marketplace/internal/service"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

var errNoUserInContext = errors.New("no authenticated user in request context")

// PaginatedResponse is the envelope for list endpoints
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	Total      int         `json:"total"`
	TotalPages int         `json:"total_pages"`
}

// NewPaginatedResponse wraps a page of data with paging metadata
func NewPaginatedResponse(data interface{}, page, pageSize, total int) PaginatedResponse {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return PaginatedResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}

// parsePagination reads page and page_size query parameters with sane
// defaults and an upper bound on page size
func parsePagination(r *http.Request) (page, pageSize int) {
	page = 1
	pageSize = defaultPageSize

	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			pageSize = n
			if pageSize > maxPageSize {
				pageSize = maxPageSize
			}
		}
	}
	return page, pageSize
}

// userIDFromContext returns the authenticated user's ID set by the auth
// middleware
func userIDFromContext(r *http.Request) (uuid.UUID, error) {
	userIDStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		return uuid.Nil, errNoUserInContext
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, err
	}
	return userID, nil
}

// respondInsufficientStock renders a stock shortfall as a 400 with the
// product and both quantities in the details, so clients can tell the user
// exactly what is unavailable
func respondInsufficientStock(w http.ResponseWriter, stockErr *service.InsufficientStockError) {
	details := map[string]interface{}{
		"product_id":   stockErr.ProductID.String(),
		"product_name": stockErr.ProductName,
		"requested":    stockErr.Requested,
		"available":    stockErr.Available,
	}
	middleware.RespondWithErrorDetails(w, http.StatusBadRequest, stockErr.Error(), details)
}
