package transport

import (
	"net/http"

	"marketplace/internal/middleware"
	"marketplace/internal/repository"
	"marketplace/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddCartItemRequest represents the add-to-cart payload
type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// UpdateCartItemRequest represents the change-quantity payload
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// CartHandler handles HTTP requests for the shopping cart
type CartHandler struct {
	cartService service.CartService
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// RegisterRoutes registers cart routes. All of them require authentication.
func (h *CartHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{id}", h.UpdateItem)
		r.Delete("/items/{id}", h.RemoveItem)
	})
}

// GetCart handles fetching the caller's cart with totals
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	cart, err := h.cartService.GetCart(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to get cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// AddItem handles adding a product to the cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AddCartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	cart, err := h.cartService.AddItem(r.Context(), userID, productID, req.Quantity)
	if err != nil {
		h.respondCartError(w, err, "failed to add cart item")
		return
	}

	h.logger.Info("Cart item added",
		zap.String("user_id", userID.String()),
		zap.String("product_id", productID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, cart)
}

// UpdateItem handles changing the quantity of a cart line
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid cart item ID")
		return
	}

	var req UpdateCartItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cart, err := h.cartService.UpdateItem(r.Context(), userID, itemID, req.Quantity)
	if err != nil {
		h.respondCartError(w, err, "failed to update cart item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// RemoveItem handles removing a cart line
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid cart item ID")
		return
	}

	cart, err := h.cartService.RemoveItem(r.Context(), userID, itemID)
	if err != nil {
		h.respondCartError(w, err, "failed to remove cart item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// ClearCart handles emptying the caller's cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.cartService.ClearCart(r.Context(), userID); err != nil {
		h.logger.Error("Failed to clear cart", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}

// respondCartError maps cart service errors to HTTP responses
func (h *CartHandler) respondCartError(w http.ResponseWriter, err error, fallback string) {
	if stockErr, ok := service.AsInsufficientStock(err); ok {
		respondInsufficientStock(w, stockErr)
		return
	}

	switch err {
	case repository.ErrProductNotFound:
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case repository.ErrCartItemNotFound:
		middleware.RespondWithError(w, http.StatusNotFound, "cart item not found")
	case service.ErrInvalidQuantity:
		middleware.RespondWithError(w, http.StatusBadRequest, "quantity must be at least 1")
	default:
		h.logger.Error("Cart operation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}
