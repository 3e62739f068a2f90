package service

import (
	"context"
	"fmt"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/repository"

	"github.com/google/uuid"
)

// CartService defines the interface for shopping cart business logic.
// Stock checks here are advisory: they reject obviously impossible lines
// early, but the authoritative check happens at order placement.
type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error)
	AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.Cart, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*domain.Cart, error)
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

type cartService struct {
	cartRepo    repository.CartItemRepository
	productRepo repository.ProductRepository
}

// NewCartService creates a new instance of CartService
func NewCartService(
	cartRepo repository.CartItemRepository,
	productRepo repository.ProductRepository,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// GetCart returns the caller's cart with product details and derived totals
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	items, err := s.cartRepo.ListWithProducts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return domain.NewCart(userID, items), nil
}

// AddItem adds a product to the cart, merging with an existing line for the
// same product. The merged quantity must not exceed current stock.
func (s *cartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if err == repository.ErrProductNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	existing, err := s.cartRepo.FindByProduct(ctx, userID, productID)
	if err != nil && err != repository.ErrCartItemNotFound {
		return nil, fmt.Errorf("failed to check existing cart item: %w", err)
	}

	requested := quantity
	if existing != nil {
		requested += existing.Quantity
	}
	if product.Stock < requested {
		return nil, &InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   requested,
			Available:   product.Stock,
		}
	}

	if existing != nil {
		if err := s.cartRepo.UpdateQuantity(ctx, userID, existing.ID, requested); err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	} else {
		now := time.Now()
		item := &domain.CartItem{
			ID:        uuid.New(),
			UserID:    userID,
			ProductID: productID,
			Quantity:  quantity,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.cartRepo.Create(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to create cart item: %w", err)
		}
	}

	return s.GetCart(ctx, userID)
}

// UpdateItem replaces the quantity of one of the caller's cart lines
func (s *cartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	item, err := s.cartRepo.FindByID(ctx, userID, itemID)
	if err != nil {
		if err == repository.ErrCartItemNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}

	product, err := s.productRepo.FindByID(ctx, item.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product.Stock < quantity {
		return nil, &InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   quantity,
			Available:   product.Stock,
		}
	}

	if err := s.cartRepo.UpdateQuantity(ctx, userID, itemID, quantity); err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	return s.GetCart(ctx, userID)
}

// RemoveItem deletes one of the caller's cart lines
func (s *cartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*domain.Cart, error) {
	if err := s.cartRepo.Delete(ctx, userID, itemID); err != nil {
		if err == repository.ErrCartItemNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}
	return s.GetCart(ctx, userID)
}

// ClearCart removes every line from the caller's cart
func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if err := s.cartRepo.DeleteAll(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
