package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidOrderStatus = errors.New("invalid order status")
	ErrInvalidRole        = errors.New("invalid role")
	ErrNoUpdateFields     = errors.New("no fields to update")
)

const (
	lowStockThreshold = 10
	dashboardListSize = 5
	recentWindow      = 30 * 24 * time.Hour
)

// DashboardOverview aggregates the back-office landing page numbers in one
// round of queries.
type DashboardOverview struct {
	TotalUsers      int                        `json:"total_users"`
	TotalProducts   int                        `json:"total_products"`
	TotalOrders     int                        `json:"total_orders"`
	TotalCategories int                        `json:"total_categories"`
	OrdersByStatus  map[domain.OrderStatus]int `json:"orders_by_status"`
	TotalRevenue    decimal.Decimal            `json:"total_revenue"`
	RecentRevenue   decimal.Decimal            `json:"recent_revenue"`
	LowStockCount   int                        `json:"low_stock_count"`

	RecentOrders     []*repository.OrderWithUser `json:"recent_orders"`
	TopProducts      []*repository.TopProduct    `json:"top_products"`
	LowStockProducts []*domain.Product           `json:"low_stock_products"`
}

// AdminService defines the interface for back-office operations: the
// dashboard, order management across all users, and user administration.
type AdminService interface {
	Dashboard(ctx context.Context) (*DashboardOverview, error)

	ListOrders(ctx context.Context, filter repository.OrderFilter, page, pageSize int) ([]*repository.OrderWithUser, int, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, status *domain.OrderStatus, total *decimal.Decimal) (*domain.Order, error)

	ListUsers(ctx context.Context, page, pageSize int) ([]*domain.User, int, error)
	UpdateUserRole(ctx context.Context, userID uuid.UUID, role string) (*domain.User, error)
}

type adminService struct {
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	userRepo     repository.UserRepository
	categoryRepo repository.CategoryRepository
}

// NewAdminService creates a new instance of AdminService
func NewAdminService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	categoryRepo repository.CategoryRepository,
) AdminService {
	return &adminService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		userRepo:     userRepo,
		categoryRepo: categoryRepo,
	}
}

// Dashboard collects the storefront-wide aggregates for the admin landing
// page. Revenue counts completed orders only.
func (s *adminService) Dashboard(ctx context.Context) (*DashboardOverview, error) {
	overview := &DashboardOverview{}

	var err error
	if overview.TotalUsers, err = s.userRepo.CountAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if overview.TotalProducts, err = s.productRepo.CountAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if overview.TotalOrders, err = s.orderRepo.CountAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	if overview.TotalCategories, err = s.categoryRepo.CountAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}

	if overview.OrdersByStatus, err = s.orderRepo.CountByStatus(ctx); err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}

	if overview.TotalRevenue, err = s.orderRepo.RevenueByStatus(ctx, domain.OrderStatusCompleted, nil); err != nil {
		return nil, fmt.Errorf("failed to compute total revenue: %w", err)
	}
	since := time.Now().Add(-recentWindow)
	if overview.RecentRevenue, err = s.orderRepo.RevenueByStatus(ctx, domain.OrderStatusCompleted, &since); err != nil {
		return nil, fmt.Errorf("failed to compute recent revenue: %w", err)
	}

	if overview.LowStockCount, err = s.productRepo.CountLowStock(ctx, lowStockThreshold); err != nil {
		return nil, fmt.Errorf("failed to count low stock products: %w", err)
	}
	if overview.LowStockProducts, err = s.productRepo.ListLowStock(ctx, lowStockThreshold, dashboardListSize); err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}

	if overview.RecentOrders, err = s.orderRepo.ListRecent(ctx, dashboardListSize); err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}
	if overview.TopProducts, err = s.orderRepo.TopProducts(ctx, dashboardListSize); err != nil {
		return nil, fmt.Errorf("failed to list top products: %w", err)
	}

	return overview, nil
}

// ListOrders lists orders across all users with optional status and date
// filters
func (s *adminService) ListOrders(ctx context.Context, filter repository.OrderFilter, page, pageSize int) ([]*repository.OrderWithUser, int, error) {
	if filter.Status != nil && !domain.ValidOrderStatus(*filter.Status) {
		return nil, 0, ErrInvalidOrderStatus
	}
	orders, total, err := s.orderRepo.ListAll(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// GetOrder retrieves any user's order with its items
func (s *adminService) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if err == repository.ErrOrderNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// UpdateOrder changes an order's status and/or overrides its total. Item
// rows are never touched.
func (s *adminService) UpdateOrder(ctx context.Context, orderID uuid.UUID, status *domain.OrderStatus, total *decimal.Decimal) (*domain.Order, error) {
	if status == nil && total == nil {
		return nil, ErrNoUpdateFields
	}
	if status != nil && !domain.ValidOrderStatus(*status) {
		return nil, ErrInvalidOrderStatus
	}

	if err := s.orderRepo.UpdateStatusAndTotal(ctx, orderID, status, total); err != nil {
		if err == repository.ErrOrderNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}
	return order, nil
}

// ListUsers returns a page of registered users, newest first
func (s *adminService) ListUsers(ctx context.Context, page, pageSize int) ([]*domain.User, int, error) {
	users, total, err := s.userRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// UpdateUserRole promotes or demotes a user between "user" and "admin"
func (s *adminService) UpdateUserRole(ctx context.Context, userID uuid.UUID, role string) (*domain.User, error) {
	if role != "user" && role != "admin" {
		return nil, ErrInvalidRole
	}

	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		if err == repository.ErrUserNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user role: %w", err)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}
	return user, nil
}
