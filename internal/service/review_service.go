package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/repository"

	"github.com/google/uuid"
)

var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// ReviewService defines the interface for product review business logic.
// Reviews are approved on creation; moderation only ever hides them later.
type ReviewService interface {
	ListProductReviews(ctx context.Context, productID uuid.UUID, page, pageSize int) ([]*domain.Review, int, *domain.ReviewStats, error)
	CreateReview(ctx context.Context, userID, productID uuid.UUID, rating int, comment string) (*domain.Review, error)
	UpdateReview(ctx context.Context, userID, reviewID uuid.UUID, rating int, comment string) (*domain.Review, error)
	DeleteReview(ctx context.Context, userID, reviewID uuid.UUID) error
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
}

// NewReviewService creates a new instance of ReviewService
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
	}
}

// ListProductReviews returns a page of approved reviews for a product along
// with the product's rating aggregates
func (s *reviewService) ListProductReviews(ctx context.Context, productID uuid.UUID, page, pageSize int) ([]*domain.Review, int, *domain.ReviewStats, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if err == repository.ErrProductNotFound {
			return nil, 0, nil, err
		}
		return nil, 0, nil, fmt.Errorf("failed to check product: %w", err)
	}

	reviews, total, err := s.reviewRepo.ListApprovedByProduct(ctx, productID, page, pageSize)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	stats, err := s.reviewRepo.StatsByProduct(ctx, productID)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("failed to load review stats: %w", err)
	}

	return reviews, total, stats, nil
}

// CreateReview adds the caller's review for a product. One review per
// product per user.
func (s *reviewService) CreateReview(ctx context.Context, userID, productID uuid.UUID, rating int, comment string) (*domain.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if err == repository.ErrProductNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to check product: %w", err)
	}

	now := time.Now()
	review := &domain.Review{
		ID:         uuid.New(),
		UserID:     userID,
		ProductID:  productID,
		Rating:     rating,
		Comment:    comment,
		IsApproved: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if err == repository.ErrReviewAlreadyExists {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return review, nil
}

// UpdateReview edits the caller's own review
func (s *reviewService) UpdateReview(ctx context.Context, userID, reviewID uuid.UUID, rating int, comment string) (*domain.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	review, err := s.reviewRepo.FindByIDForUser(ctx, userID, reviewID)
	if err != nil {
		if err == repository.ErrReviewNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find review: %w", err)
	}

	review.Rating = rating
	review.Comment = comment
	review.UpdatedAt = time.Now()

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	return review, nil
}

// DeleteReview removes the caller's own review
func (s *reviewService) DeleteReview(ctx context.Context, userID, reviewID uuid.UUID) error {
	if err := s.reviewRepo.Delete(ctx, userID, reviewID); err != nil {
		if err == repository.ErrReviewNotFound {
			return err
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}
