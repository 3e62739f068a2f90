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
	ErrCartItemNotFound = errors.New("cart item not found")
)

// CartItemRepository defines the interface for cart line data access. A
// user's cart is their set of cart_items rows; the (user_id, product_id)
// pair is unique.
type CartItemRepository interface {
	Create(ctx context.Context, item *domain.CartItem) error
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	Delete(ctx context.Context, userID, itemID uuid.UUID) error
	DeleteAll(ctx context.Context, userID uuid.UUID) error
	DeleteAllTx(ctx context.Context, q Querier, userID uuid.UUID) error
	FindByID(ctx context.Context, userID, itemID uuid.UUID) (*domain.CartItem, error)
	FindByProduct(ctx context.Context, userID, productID uuid.UUID) (*domain.CartItem, error)
	ListWithProducts(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error)
	ListWithProductsTx(ctx context.Context, q Querier, userID uuid.UUID) ([]*domain.CartItem, error)
}

type cartItemRepository struct {
	db *sql.DB
}

// NewCartItemRepository creates a new instance of CartItemRepository
func NewCartItemRepository(db *sql.DB) CartItemRepository {
	return &cartItemRepository{db: db}
}

// Create inserts a new cart line using parameterized queries
func (r *cartItemRepository) Create(ctx context.Context, item *domain.CartItem) error {
	query := `
		INSERT INTO cart_items (id, user_id, product_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		item.ID,
		item.UserID,
		item.ProductID,
		item.Quantity,
		item.CreatedAt,
		item.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create cart item: %w", err)
	}

	return nil
}

// UpdateQuantity replaces the quantity of one of the user's cart lines
func (r *cartItemRepository) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	query := `
		UPDATE cart_items
		SET quantity = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, itemID, userID, quantity)
	if err != nil {
		return fmt.Errorf("failed to update cart item quantity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// Delete removes one of the user's cart lines
func (r *cartItemRepository) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, itemID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrCartItemNotFound
	}

	return nil
}

// DeleteAll empties the user's cart
func (r *cartItemRepository) DeleteAll(ctx context.Context, userID uuid.UUID) error {
	return r.DeleteAllTx(ctx, r.db, userID)
}

// DeleteAllTx empties the user's cart through q, so order placement clears
// the cart inside its own transaction.
func (r *cartItemRepository) DeleteAllTx(ctx context.Context, q Querier, userID uuid.UUID) error {
	_, err := q.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// FindByID retrieves one of the user's cart lines by id
func (r *cartItemRepository) FindByID(ctx context.Context, userID, itemID uuid.UUID) (*domain.CartItem, error) {
	query := `
		SELECT id, user_id, product_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE id = $1 AND user_id = $2
	`

	item := &domain.CartItem{}
	err := r.db.QueryRowContext(ctx, query, itemID, userID).Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to find cart item by ID: %w", err)
	}

	return item, nil
}

// FindByProduct retrieves the user's cart line for a product, if any
func (r *cartItemRepository) FindByProduct(ctx context.Context, userID, productID uuid.UUID) (*domain.CartItem, error) {
	query := `
		SELECT id, user_id, product_id, quantity, created_at, updated_at
		FROM cart_items
		WHERE user_id = $1 AND product_id = $2
	`

	item := &domain.CartItem{}
	err := r.db.QueryRowContext(ctx, query, userID, productID).Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to find cart item by product: %w", err)
	}

	return item, nil
}

// ListWithProducts retrieves the user's cart lines joined with the current
// product rows, oldest line first
func (r *cartItemRepository) ListWithProducts(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error) {
	return r.ListWithProductsTx(ctx, r.db, userID)
}

// ListWithProductsTx is ListWithProducts through q, so order placement reads
// the cart within its own transaction.
func (r *cartItemRepository) ListWithProductsTx(ctx context.Context, q Querier, userID uuid.UUID) ([]*domain.CartItem, error) {
	query := `
		SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at, ci.updated_at,
		       p.id, p.name, p.description, p.price, p.category_id, p.image_url, p.stock, p.created_at, p.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at ASC
	`

	rows, err := q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	items := []*domain.CartItem{}
	for rows.Next() {
		item := &domain.CartItem{Product: &domain.Product{}}
		err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.ProductID,
			&item.Quantity,
			&item.CreatedAt,
			&item.UpdatedAt,
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
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}
