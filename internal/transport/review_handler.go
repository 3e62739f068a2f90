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

// ReviewRequest represents the create/update review payload
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// ProductReviewsResponse pairs a page of reviews with the product's rating
// aggregates
type ProductReviewsResponse struct {
	Reviews       PaginatedResponse `json:"reviews"`
	AverageRating float64           `json:"average_rating"`
	ReviewsCount  int               `json:"reviews_count"`
	ProductID     string            `json:"product_id"`
}

// ReviewHandler handles HTTP requests for product reviews
type ReviewHandler struct {
	reviewService service.ReviewService
	logger        *zap.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviewService service.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		logger:        logger,
	}
}

// RegisterRoutes registers review routes. Listing is public; writing
// requires authentication.
func (h *ReviewHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/api/products/{id}/reviews", h.ListProductReviews)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/api/products/{id}/reviews", h.CreateReview)
		r.Put("/api/reviews/{id}", h.UpdateReview)
		r.Delete("/api/reviews/{id}", h.DeleteReview)
	})
}

// ListProductReviews handles listing approved reviews for a product
func (h *ReviewHandler) ListProductReviews(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	page, pageSize := parsePagination(r)
	reviews, total, stats, err := h.reviewService.ListProductReviews(r.Context(), productID, page, pageSize)
	if err != nil {
		if err == repository.ErrProductNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
			return
		}
		h.logger.Error("Failed to list reviews", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductReviewsResponse{
		Reviews:       NewPaginatedResponse(reviews, page, pageSize, total),
		AverageRating: stats.AverageRating,
		ReviewsCount:  stats.ReviewsCount,
		ProductID:     productID.String(),
	})
}

// CreateReview handles posting a review for a product
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	productID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product ID")
		return
	}

	var req ReviewRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := h.reviewService.CreateReview(r.Context(), userID, productID, req.Rating, req.Comment)
	if err != nil {
		switch err {
		case repository.ErrProductNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, "product not found")
		case repository.ErrReviewAlreadyExists:
			middleware.RespondWithError(w, http.StatusConflict, "you have already reviewed this product")
		case service.ErrInvalidRating:
			middleware.RespondWithError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		default:
			h.logger.Error("Failed to create review", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to create review")
		}
		return
	}

	h.logger.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("product_id", productID.String()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, review)
}

// UpdateReview handles editing the caller's own review
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	reviewID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid review ID")
		return
	}

	var req ReviewRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	review, err := h.reviewService.UpdateReview(r.Context(), userID, reviewID, req.Rating, req.Comment)
	if err != nil {
		switch err {
		case repository.ErrReviewNotFound:
			middleware.RespondWithError(w, http.StatusNotFound, "review not found")
		case service.ErrInvalidRating:
			middleware.RespondWithError(w, http.StatusBadRequest, "rating must be between 1 and 5")
		default:
			h.logger.Error("Failed to update review", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "failed to update review")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, review)
}

// DeleteReview handles removing the caller's own review
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r)
	if err != nil {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	reviewID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid review ID")
		return
	}

	if err := h.reviewService.DeleteReview(r.Context(), userID, reviewID); err != nil {
		if err == repository.ErrReviewNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "review not found")
			return
		}
		h.logger.Error("Failed to delete review", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to delete review")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "review deleted"})
}
