package transport

import (
	"errors"
	"net/http"

	"marketplace/internal/middleware"
	"marketplace/internal/repository"
	"marketplace/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PlaceOrderRequest represents the explicit order placement payload
type PlaceOrderRequest struct {
	Items []OrderLineRequest `json:"items" validate:"required,min=1,dive"`
}

// OrderLineRequest is one line of an explicit order request
type OrderLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// OrderHandler handles HTTP requests for order placement and history
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers order routes. All of them require authentication.
func (h *OrderHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/", h.PlaceOrder)
		r.Post("/from-cart", h.PlaceOrderFromCart)
		r.Get("/", h.ListOrders)
		r.Get("/{id}", h.GetOrder)
	})
}

// PlaceOrder handles order placement from an explicit item list
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req PlaceOrderRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lines := make([]service.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
			return
		}
		lines = append(lines, service.OrderLine{ProductID: productID, Quantity: item.Quantity})
	}

	order, err := h.orderService.PlaceOrder(r.Context(), userID, lines)
	if err != nil {
		h.respondOrderError(w, err)
		return
	}

	h.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("total", order.TotalAmount.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

// PlaceOrderFromCart handles order placement from the caller's cart
func (h *OrderHandler) PlaceOrderFromCart(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	order, err := h.orderService.PlaceOrderFromCart(r.Context(), userID)
	if err != nil {
		h.respondOrderError(w, err)
		return
	}

	h.logger.Info("Order placed from cart",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("total", order.TotalAmount.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

// ListOrders handles the caller's order history
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	page, pageSize := parsePagination(r)
	orders, total, err := h.orderService.ListOrders(r.Context(), userID, page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list orders", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, NewPaginatedResponse(orders, page, pageSize, total))
}

// GetOrder handles fetching one of the caller's orders
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid order ID")
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), userID, orderID)
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

// respondOrderError maps placement errors to HTTP responses. A retriable
// transaction abort surfaces as 409 so clients know to retry.
func (h *OrderHandler) respondOrderError(w http.ResponseWriter, err error) {
	if stockErr, ok := service.AsInsufficientStock(err); ok {
		respondInsufficientStock(w, stockErr)
		return
	}
	if errors.Is(err, repository.ErrTransactionAborted) {
		middleware.RespondWithError(w, http.StatusConflict, "order could not be placed due to concurrent activity, please retry")
		return
	}

	switch err {
	case service.ErrEmptyCart:
		middleware.RespondWithError(w, http.StatusBadRequest, "cart is empty")
	case service.ErrNoItems:
		middleware.RespondWithError(w, http.StatusBadRequest, "order must contain at least one item")
	case service.ErrInvalidQuantity:
		middleware.RespondWithError(w, http.StatusBadRequest, "quantity must be at least 1")
	case repository.ErrProductNotFound:
		middleware.RespondWithError(w, http.StatusBadRequest, "product not found")
	default:
		h.logger.Error("Order placement failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to place order")
	}
}
