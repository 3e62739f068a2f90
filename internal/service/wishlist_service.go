package service

import (
	"context"
	"fmt"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/repository"

	"github.com/google/uuid"
)

// WishlistService defines the interface for wishlist business logic
type WishlistService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistItem, error)
	Add(ctx context.Context, userID, productID uuid.UUID) (*domain.WishlistItem, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) error

	// MoveToCart adds one unit of a wishlisted product to the cart and
	// removes it from the wishlist.
	MoveToCart(ctx context.Context, userID, productID uuid.UUID) (*domain.Cart, error)
}

type wishlistService struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
	cartService  CartService
}

// NewWishlistService creates a new instance of WishlistService
func NewWishlistService(
	wishlistRepo repository.WishlistRepository,
	productRepo repository.ProductRepository,
	cartService CartService,
) WishlistService {
	return &wishlistService{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
		cartService:  cartService,
	}
}

// List returns the caller's wishlist with product details, newest first
func (s *wishlistService) List(ctx context.Context, userID uuid.UUID) ([]*domain.WishlistItem, error) {
	items, err := s.wishlistRepo.ListWithProducts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	return items, nil
}

// Add puts a product on the caller's wishlist
func (s *wishlistService) Add(ctx context.Context, userID, productID uuid.UUID) (*domain.WishlistItem, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if err == repository.ErrProductNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	item := &domain.WishlistItem{
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now(),
		Product:   product,
	}

	if err := s.wishlistRepo.Add(ctx, item); err != nil {
		if err == repository.ErrWishlistItemAlreadyExists {
			return nil, err
		}
		return nil, fmt.Errorf("failed to add wishlist item: %w", err)
	}
	return item, nil
}

// Remove takes a product off the caller's wishlist
func (s *wishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	if err := s.wishlistRepo.Remove(ctx, userID, productID); err != nil {
		if err == repository.ErrWishlistItemNotFound {
			return err
		}
		return fmt.Errorf("failed to remove wishlist item: %w", err)
	}
	return nil
}

// MoveToCart moves a wishlisted product into the cart as a single unit,
// merging with any existing cart line for the same product
func (s *wishlistService) MoveToCart(ctx context.Context, userID, productID uuid.UUID) (*domain.Cart, error) {
	exists, err := s.wishlistRepo.Exists(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to check wishlist item: %w", err)
	}
	if !exists {
		return nil, repository.ErrWishlistItemNotFound
	}

	cart, err := s.cartService.AddItem(ctx, userID, productID, 1)
	if err != nil {
		return nil, err
	}

	if err := s.wishlistRepo.Remove(ctx, userID, productID); err != nil && err != repository.ErrWishlistItemNotFound {
		return nil, fmt.Errorf("failed to remove wishlist item: %w", err)
	}
	return cart, nil
}
