package service

import (
	"context"
	"fmt"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductListOptions narrows and orders a catalog listing. A non-empty
// Search switches to name/description matching and ignores the other
// filters.
type ProductListOptions struct {
	CategoryID *uuid.UUID
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// ProductInput carries the writable fields of a product for create/update
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	CategoryID  uuid.UUID
	ImageURL    string
	Stock       int
}

// CategoryInput carries the writable fields of a category
type CategoryInput struct {
	Name        string
	Description string
}

// CatalogService defines the interface for product and category management.
// Reads are public; writes are admin-only and enforced at the transport
// layer.
type CatalogService interface {
	ListProducts(ctx context.Context, opts ProductListOptions) ([]*domain.Product, int, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, *domain.Category, error)
	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	ListCategories(ctx context.Context) ([]*domain.Category, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
) CatalogService {
	return &catalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// ListProducts returns a page of products, either by search query or by
// category filter with sorting
func (s *catalogService) ListProducts(ctx context.Context, opts ProductListOptions) ([]*domain.Product, int, error) {
	if opts.Search != "" {
		products, total, err := s.productRepo.Search(ctx, opts.Search, opts.Page, opts.PageSize)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to search products: %w", err)
		}
		return products, total, nil
	}

	sortOrder := repository.SortOrderAsc
	if opts.SortOrder == "desc" {
		sortOrder = repository.SortOrderDesc
	}

	products, total, err := s.productRepo.List(ctx, opts.CategoryID, opts.Page, opts.PageSize, opts.SortBy, sortOrder)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// GetProduct returns a product together with its category
func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, *domain.Category, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrProductNotFound {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to get product: %w", err)
	}

	category, err := s.categoryRepo.FindByID(ctx, product.CategoryID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get product category: %w", err)
	}

	return product, category, nil
}

// CreateProduct creates a new catalog product under an existing category
func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
		if err == repository.ErrCategoryNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to check category: %w", err)
	}

	now := time.Now()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		CategoryID:  input.CategoryID,
		ImageURL:    input.ImageURL,
		Stock:       input.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// UpdateProduct replaces the writable fields of an existing product
func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*domain.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrProductNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if input.CategoryID != product.CategoryID {
		if _, err := s.categoryRepo.FindByID(ctx, input.CategoryID); err != nil {
			if err == repository.ErrCategoryNotFound {
				return nil, err
			}
			return nil, fmt.Errorf("failed to check category: %w", err)
		}
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.CategoryID = input.CategoryID
	product.ImageURL = input.ImageURL
	product.Stock = input.Stock
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// DeleteProduct removes a product from the catalog
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if err == repository.ErrProductNotFound {
			return err
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

// ListCategories returns all categories ordered by name
func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// CreateCategory creates a new category with a unique name
func (s *catalogService) CreateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	category := &domain.Category{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		CreatedAt:   time.Now(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if err == repository.ErrCategoryAlreadyExists {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// UpdateCategory renames or re-describes an existing category
func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*domain.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrCategoryNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	category.Name = input.Name
	category.Description = input.Description

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if err == repository.ErrCategoryAlreadyExists {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

// DeleteCategory removes a category that has no products assigned
func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if err == repository.ErrCategoryNotFound || err == repository.ErrCategoryInUse {
			return err
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
