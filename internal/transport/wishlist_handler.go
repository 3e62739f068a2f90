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

// AddWishlistItemRequest represents the add-to-wishlist payload
type AddWishlistItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
}

// WishlistResponse wraps the wishlist items with a count
type WishlistResponse struct {
	Items interface{} `json:"items"`
	Count int         `json:"count"`
}

// WishlistHandler handles HTTP requests for the wishlist
type WishlistHandler struct {
	wishlistService service.WishlistService
	logger          *zap.Logger
}

// NewWishlistHandler creates a new WishlistHandler
func NewWishlistHandler(wishlistService service.WishlistService, logger *zap.Logger) *WishlistHandler {
	return &WishlistHandler{
		wishlistService: wishlistService,
		logger:          logger,
	}
}

// RegisterRoutes registers wishlist routes. All require authentication.
func (h *WishlistHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/wishlist", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.List)
		r.Post("/", h.Add)
		r.Delete("/{productId}", h.Remove)
		r.Post("/{productId}/move-to-cart", h.MoveToCart)
	})
}

// List handles fetching the caller's wishlist
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	items, err := h.wishlistService.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list wishlist", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list wishlist")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, WishlistResponse{Items: items, Count: len(items)})
}

// Add handles putting a product on the wishlist
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AddWishlistItemRequest
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

	item, err := h.wishlistService.Add(r.Context(), userID, productID)
	if err != nil {
		switch err {
		case repository.ErrProductNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case repository.ErrWishlistItemAlreadyExists:
			middleware.RespondWithError(w, http.StatusConflict, "product is already in the wishlist")
		default:
			h.logger.Error("Failed to add wishlist item", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to add wishlist item")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, item)
}

// Remove handles taking a product off the wishlist
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	if err := h.wishlistService.Remove(r.Context(), userID, productID); err != nil {
		if err == repository.ErrWishlistItemNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product is not in the wishlist")
			return
		}
		h.logger.Error("Failed to remove wishlist item", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to remove wishlist item")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "wishlist item removed"})
}

// MoveToCart handles moving a wishlisted product into the cart
func (h *WishlistHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	cart, err := h.wishlistService.MoveToCart(r.Context(), userID, productID)
	if err != nil {
		if stockErr, ok := service.AsInsufficientStock(err); ok {
			respondInsufficientStock(w, stockErr)
			return
		}
		switch err {
		case repository.ErrWishlistItemNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, "product is not in the wishlist")
		case repository.ErrProductNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		default:
			h.logger.Error("Failed to move wishlist item to cart", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to move wishlist item to cart")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, cart)
}
