package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLine is one requested line of an explicit order: which product and
// how many units. Duplicate product IDs are allowed and become separate
// order items.
type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// OrderService defines the interface for order placement and retrieval
type OrderService interface {
	// PlaceOrder creates an order from an explicit list of lines. The whole
	// placement runs in one transaction: every line is checked against
	// current stock, prices are snapshotted, and stock is decremented
	// atomically. On any failure nothing is persisted.
	PlaceOrder(ctx context.Context, userID uuid.UUID, lines []OrderLine) (*domain.Order, error)

	// PlaceOrderFromCart does the same using the caller's cart lines as
	// input, and empties the cart in the same transaction on success.
	PlaceOrderFromCart(ctx context.Context, userID uuid.UUID) (*domain.Order, error)

	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*domain.Order, int, error)
}

type orderService struct {
	txManager   repository.TxManager
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	cartRepo    repository.CartItemRepository
}

// NewOrderService creates a new instance of OrderService. It takes a
// TxManager because placement must own its transaction boundary.
func NewOrderService(
	txManager repository.TxManager,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartItemRepository,
) OrderService {
	return &orderService{
		txManager:   txManager,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
	}
}

// PlaceOrder creates an order from explicit lines
func (s *orderService) PlaceOrder(ctx context.Context, userID uuid.UUID, lines []OrderLine) (*domain.Order, error) {
	if len(lines) == 0 {
		return nil, ErrNoItems
	}
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}

	var order *domain.Order
	err := s.txManager.WithinTx(ctx, func(tx *sql.Tx) error {
		var txErr error
		order, txErr = s.placeLines(ctx, tx, userID, lines)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, order.ID)
}

// PlaceOrderFromCart creates an order from the caller's cart and clears it
func (s *orderService) PlaceOrderFromCart(ctx context.Context, userID uuid.UUID) (*domain.Order, error) {
	var order *domain.Order
	err := s.txManager.WithinTx(ctx, func(tx *sql.Tx) error {
		items, txErr := s.cartRepo.ListWithProductsTx(ctx, tx, userID)
		if txErr != nil {
			return fmt.Errorf("failed to load cart: %w", txErr)
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		lines := make([]OrderLine, 0, len(items))
		for _, item := range items {
			lines = append(lines, OrderLine{ProductID: item.ProductID, Quantity: item.Quantity})
		}

		order, txErr = s.placeLines(ctx, tx, userID, lines)
		if txErr != nil {
			return txErr
		}

		if txErr = s.cartRepo.DeleteAllTx(ctx, tx, userID); txErr != nil {
			return fmt.Errorf("failed to clear cart: %w", txErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, order.ID)
}

// placeLines runs the per-line placement loop inside tx: load the product,
// check stock, snapshot the price, decrement stock, accumulate the total.
// The order and its items are inserted only after every line succeeded.
func (s *orderService) placeLines(ctx context.Context, tx *sql.Tx, userID uuid.UUID, lines []OrderLine) (*domain.Order, error) {
	now := time.Now()
	order := &domain.Order{
		ID:          uuid.New(),
		UserID:      userID,
		Status:      domain.OrderStatusPending,
		TotalAmount: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, line := range lines {
		product, err := s.productRepo.FindByIDTx(ctx, tx, line.ProductID)
		if err != nil {
			if err == repository.ErrProductNotFound {
				return nil, err
			}
			return nil, fmt.Errorf("failed to load product: %w", err)
		}

		if product.Stock < line.Quantity {
			return nil, &InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   line.Quantity,
				Available:   product.Stock,
			}
		}

		if err := s.productRepo.DecrementStock(ctx, tx, product.ID, line.Quantity); err != nil {
			if err == repository.ErrInsufficientStock {
				// A concurrent order won the remaining units between our
				// read and the decrement. Re-read so the shortfall reports
				// what is actually left, not the stale pre-race stock.
				available := product.Stock
				if fresh, readErr := s.productRepo.FindByIDTx(ctx, tx, product.ID); readErr == nil {
					available = fresh.Stock
				}
				return nil, &InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Requested:   line.Quantity,
					Available:   available,
				}
			}
			return nil, fmt.Errorf("failed to decrement stock: %w", err)
		}

		order.Items = append(order.Items, &domain.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: product.ID,
			Position:  len(order.Items) + 1,
			Quantity:  line.Quantity,
			UnitPrice: product.Price,
			CreatedAt: now,
		})
		order.TotalAmount = order.TotalAmount.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	if err := s.orderRepo.CreateTx(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return order, nil
}

// reload fetches the committed order with its items and product details,
// so the response reflects exactly what was persisted.
func (s *orderService) reload(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load placed order: %w", err)
	}
	return order, nil
}

// GetOrder retrieves one of the caller's orders with its items
func (s *orderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orderRepo.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		if err == repository.ErrOrderNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// ListOrders returns the caller's order history, newest first
func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*domain.Order, int, error) {
	orders, total, err := s.orderRepo.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}
