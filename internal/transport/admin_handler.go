package transport

import (
	"net/http"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/middleware"
	"marketplace/internal/repository"
	"marketplace/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// UpdateOrderRequest represents the admin order update payload. Both fields
// are optional but at least one must be present.
type UpdateOrderRequest struct {
	Status      *string          `json:"status"`
	TotalAmount *decimal.Decimal `json:"total_amount"`
}

// UpdateUserRoleRequest represents the role change payload
type UpdateUserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

// AdminHandler handles HTTP requests for the back office
type AdminHandler struct {
	adminService service.AdminService
	logger       *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(adminService service.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		logger:       logger,
	}
}

// RegisterRoutes registers admin routes. Everything here requires an
// authenticated admin.
func (h *AdminHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)

		r.Get("/dashboard", h.Dashboard)
		r.Get("/orders", h.ListOrders)
		r.Get("/orders/{id}", h.GetOrder)
		r.Put("/orders/{id}", h.UpdateOrder)
		r.Get("/users", h.ListUsers)
		r.Put("/users/{id}/role", h.UpdateUserRole)
	})
}

// Dashboard handles the back-office overview
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	overview, err := h.adminService.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("Failed to build dashboard", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, overview)
}

// ListOrders handles listing orders across all users with filters
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	var filter repository.OrderFilter
	if v := r.URL.Query().Get("status"); v != "" {
		status := domain.OrderStatus(v)
		if !domain.ValidOrderStatus(status) {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid order status")
			return
		}
		filter.Status = &status
	}
	if v := r.URL.Query().Get("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid start date, expected YYYY-MM-DD")
			return
		}
		filter.StartDate = &t
	}
	if v := r.URL.Query().Get("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid end date, expected YYYY-MM-DD")
			return
		}
		// Include the whole end day.
		t = t.Add(24*time.Hour - time.Nanosecond)
		filter.EndDate = &t
	}

	orders, total, err := h.adminService.ListOrders(r.Context(), filter, page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, NewPaginatedResponse(orders, page, pageSize, total))
}

// GetOrder handles fetching any user's order
func (h *AdminHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.adminService.GetOrder(r.Context(), orderID)
	if err != nil {
		if err == repository.ErrOrderNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
			return
		}
		h.logger.Error("Failed to get order", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get order")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// UpdateOrder handles admin status transitions and total overrides
func (h *AdminHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	var req UpdateOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var status *domain.OrderStatus
	if req.Status != nil {
		s := domain.OrderStatus(*req.Status)
		status = &s
	}
	if req.TotalAmount != nil && req.TotalAmount.IsNegative() {
		middleware.RespondWithError(w, http.StatusBadRequest, "total amount must not be negative")
		return
	}

	order, err := h.adminService.UpdateOrder(r.Context(), orderID, status, req.TotalAmount)
	if err != nil {
		switch err {
		case repository.ErrOrderNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, "order not found")
		case service.ErrInvalidOrderStatus:
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid order status")
		case service.ErrNoUpdateFields:
			middleware.RespondWithError(w, http.StatusBadRequest, "no fields to update")
		default:
			h.logger.Error("Failed to update order", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update order")
		}
		return
	}

	h.logger.Info("Order updated", zap.String("order_id", orderID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// ListUsers handles listing registered users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	users, total, err := h.adminService.ListUsers(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list users", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, NewPaginatedResponse(users, page, pageSize, total))
}

// UpdateUserRole handles promoting or demoting a user
func (h *AdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	var req UpdateUserRoleRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.adminService.UpdateUserRole(r.Context(), userID, req.Role)
	if err != nil {
		switch err {
		case repository.ErrUserNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, "user not found")
		case service.ErrInvalidRole:
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid role")
		default:
			h.logger.Error("Failed to update user role", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update user role")
		}
		return
	}

	h.logger.Info("User role updated",
		zap.String("user_id", userID.String()),
		zap.String("role", req.Role),
	)
	middleware.RespondWithJSON(w, http.StatusOK, user)
}
