package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"marketplace/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrReviewNotFound      = errors.New("review not found")
	ErrReviewAlreadyExists = errors.New("user has already reviewed this product")
)

// ReviewRepository defines the interface for review data access
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	Update(ctx context.Context, review *domain.Review) error
	Delete(ctx context.Context, userID, reviewID uuid.UUID) error
	FindByIDForUser(ctx context.Context, userID, reviewID uuid.UUID) (*domain.Review, error)
	ListApprovedByProduct(ctx context.Context, productID uuid.UUID, page, pageSize int) ([]*domain.Review, int, error)
	StatsByProduct(ctx context.Context, productID uuid.UUID) (*domain.ReviewStats, error)
}

type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new instance of ReviewRepository
func NewReviewRepository(db *sql.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create inserts a new review using parameterized queries
func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, user_id, product_id, rating, comment, is_approved, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		review.ID,
		review.UserID,
		review.ProductID,
		review.Rating,
		review.Comment,
		review.IsApproved,
		review.CreatedAt,
		review.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "reviews_user_id_product_id_key") {
			return ErrReviewAlreadyExists
		}
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

// Update replaces the rating and comment of the user's own review
func (r *reviewRepository) Update(ctx context.Context, review *domain.Review) error {
	query := `
		UPDATE reviews
		SET rating = $3, comment = $4, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, review.ID, review.UserID, review.Rating, review.Comment)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// Delete removes the user's own review
func (r *reviewRepository) Delete(ctx context.Context, userID, reviewID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1 AND user_id = $2`, reviewID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrReviewNotFound
	}

	return nil
}

// FindByIDForUser retrieves a review only if it belongs to userID
func (r *reviewRepository) FindByIDForUser(ctx context.Context, userID, reviewID uuid.UUID) (*domain.Review, error) {
	query := `
		SELECT id, user_id, product_id, rating, comment, is_approved, created_at, updated_at
		FROM reviews
		WHERE id = $1 AND user_id = $2
	`

	review := &domain.Review{}
	err := r.db.QueryRowContext(ctx, query, reviewID, userID).Scan(
		&review.ID,
		&review.UserID,
		&review.ProductID,
		&review.Rating,
		&review.Comment,
		&review.IsApproved,
		&review.CreatedAt,
		&review.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to find review: %w", err)
	}

	return review, nil
}

// ListApprovedByProduct retrieves approved reviews for a product with the
// author's name, newest first
func (r *reviewRepository) ListApprovedByProduct(ctx context.Context, productID uuid.UUID, page, pageSize int) ([]*domain.Review, int, error) {
	var total int
	err := r.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM reviews WHERE product_id = $1 AND is_approved = TRUE`,
		productID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	offset := (page - 1) * pageSize

	query := `
		SELECT r.id, r.user_id, r.product_id, r.rating, r.comment, r.is_approved, r.created_at, r.updated_at,
		       u.first_name || ' ' || u.last_name
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.product_id = $1 AND r.is_approved = TRUE
		ORDER BY r.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, productID, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []*domain.Review{}
	for rows.Next() {
		review := &domain.Review{}
		err := rows.Scan(
			&review.ID,
			&review.UserID,
			&review.ProductID,
			&review.Rating,
			&review.Comment,
			&review.IsApproved,
			&review.CreatedAt,
			&review.UpdatedAt,
			&review.AuthorName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviews, total, nil
}

// StatsByProduct returns the approved-review aggregates for a product
func (r *reviewRepository) StatsByProduct(ctx context.Context, productID uuid.UUID) (*domain.ReviewStats, error) {
	query := `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM reviews
		WHERE product_id = $1 AND is_approved = TRUE
	`

	stats := &domain.ReviewStats{}
	err := r.db.QueryRowContext(ctx, query, productID).Scan(&stats.AverageRating, &stats.ReviewsCount)
	if err != nil {
		return nil, fmt.Errorf("failed to compute review stats: %w", err)
	}

	return stats, nil
}
