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
	ErrWishlistItemNotFound      = errors.New("product is not in the wishlist")
	ErrWishlistItemAlreadyExists = errors.New("product is already in the wishlist")
)

// WishlistRepository defines the interface for wishlist data access
type WishlistRepository interface {
	Add(ctx context.Context, item *domain.WishlistItem) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error)
	ListWithProducts(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistItem, error)
	Count(ctx context.Context, userID uuid.UUID) (int, error)
}

type wishlistRepository struct {
	db *sql.DB
}

// NewWishlistRepository creates a new instance of WishlistRepository
func NewWishlistRepository(db *sql.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

// Add inserts a wishlist entry using parameterized queries
func (r *wishlistRepository) Add(ctx context.Context, item *domain.WishlistItem) error {
	query := `
		INSERT INTO wishlist_items (user_id, product_id, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.ExecContext(ctx, query, item.UserID, item.ProductID, item.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "wishlist_items_pkey") {
			return ErrWishlistItemAlreadyExists
		}
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}

	return nil
}

// Remove deletes a wishlist entry
func (r *wishlistRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	result, err := r.db.ExecContext(
		ctx,
		`DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`,
		userID,
		productID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrWishlistItemNotFound
	}

	return nil
}

// Exists reports whether the product is in the user's wishlist
func (r *wishlistRepository) Exists(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM wishlist_items WHERE user_id = $1 AND product_id = $2)`,
		userID,
		productID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check wishlist item: %w", err)
	}
	return exists, nil
}

// ListWithProducts retrieves the user's wishlist joined with product rows,
// newest first
func (r *wishlistRepository) ListWithProducts(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistItem, error) {
	query := `
		SELECT wi.user_id, wi.product_id, wi.created_at,
		       p.id, p.name, p.description, p.price, p.category_id, p.image_url, p.stock, p.created_at, p.updated_at
		FROM wishlist_items wi
		JOIN products p ON p.id = wi.product_id
		WHERE wi.user_id = $1
		ORDER BY wi.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist items: %w", err)
	}
	defer rows.Close()

	items := []*domain.WishlistItem{}
	for rows.Next() {
		item := &domain.WishlistItem{Product: &domain.Product{}}
		err := rows.Scan(
			&item.UserID,
			&item.ProductID,
			&item.CreatedAt,
			&item.Product.ID,
			&item.Product.Name,
			&item.Product.Description,
			&item.Product.Price,
			&item.Product.CategoryID,
			&item.Product.ImageURL,
			&item.Product.Stock,
			&item.Product.CreatedAt,
			&item.Product.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wishlist items: %w", err)
	}

	return items, nil
}

// Count returns the number of products in the user's wishlist
func (r *wishlistRepository) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM wishlist_items WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count wishlist items: %w", err)
	}
	return total, nil
}
