package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound = errors.New("order not found")
)

// OrderFilter narrows admin order listings.
type OrderFilter struct {
	Status    *domain.OrderStatus
	StartDate *time.Time
	EndDate   *time.Time
}

// OrderWithUser pairs an order with the buyer's display fields for the
// back-office listing.
type OrderWithUser struct {
	domain.Order
	UserEmail string `json:"user_email"`
	UserName  string `json:"user_name"`
}

// TopProduct is one row of the best-sellers aggregate.
type TopProduct struct {
	ProductID    uuid.UUID       `json:"product_id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Stock        int             `json:"stock"`
	ImageURL     string          `json:"image_url"`
	TotalSold    int             `json:"total_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// OrderRepository defines the interface for order data access. Orders and
// their items are written exactly once, inside the placement transaction;
// reads never observe a partially inserted order.
type OrderRepository interface {
	// CreateTx inserts the order and all its items through q. Must run
	// inside the placement transaction.
	CreateTx(ctx context.Context, q Querier, order *domain.Order) error

	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*domain.Order, int, error)

	ListAll(ctx context.Context, filter OrderFilter, page, pageSize int) ([]*OrderWithUser, int, error)
	UpdateStatusAndTotal(ctx context.Context, id uuid.UUID, status *domain.OrderStatus, total *decimal.Decimal) error

	CountAll(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context) (map[domain.OrderStatus]int, error)
	RevenueByStatus(ctx context.Context, status domain.OrderStatus, since *time.Time) (decimal.Decimal, error)
	ListRecent(ctx context.Context, limit int) ([]*OrderWithUser, error)
	TopProducts(ctx context.Context, limit int) ([]*TopProduct, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// CreateTx inserts the order row and every order item as one unit through q
func (r *orderRepository) CreateTx(ctx context.Context, q Querier, order *domain.Order) error {
	orderQuery := `
		INSERT INTO orders (id, user_id, total_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := q.ExecContext(
		ctx,
		orderQuery,
		order.ID,
		order.UserID,
		order.TotalAmount,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, position, quantity, unit_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, item := range order.Items {
		_, err := q.ExecContext(
			ctx,
			itemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Position,
			item.Quantity,
			item.UnitPrice,
			item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	return nil
}

// FindByID retrieves an order with its items and product display data
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

// FindByIDForUser retrieves an order only if it belongs to userID
func (r *orderRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Order, error) {
	return r.findOne(ctx, `WHERE id = $1 AND user_id = $2`, id, userID)
}

func (r *orderRepository) findOne(ctx context.Context, where string, args ...any) (*domain.Order, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, total_amount, status, created_at, updated_at
		FROM orders
		%s
	`, where)

	order := &domain.Order{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&order.ID,
		&order.UserID,
		&order.TotalAmount,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	if err := r.attachItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}

	return order, nil
}

// ListByUser retrieves the user's orders newest first, with items
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*domain.Order, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (page - 1) * pageSize

	query := `
		SELECT id, user_id, total_amount, status, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order := &domain.Order{}
		err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.TotalAmount,
			&order.Status,
			&order.CreatedAt,
			&order.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// attachItems loads order items (with product display data) for orders
func (r *orderRepository) attachItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID.String())
	}

	query := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.position, oi.quantity, oi.unit_price, oi.created_at,
		       p.id, p.name, p.description, p.price, p.category_id, p.image_url, p.stock, p.created_at, p.updated_at
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1::uuid[])
		ORDER BY oi.position ASC, oi.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := &domain.OrderItem{Product: &domain.Product{}}
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Position,
			&item.Quantity,
			&item.UnitPrice,
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
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating order items: %w", err)
	}

	return nil
}

// ListAll retrieves orders across all users with buyer info, filtered and
// paginated, newest first
func (r *orderRepository) ListAll(ctx context.Context, filter OrderFilter, page, pageSize int) ([]*OrderWithUser, int, error) {
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.Status != nil {
		whereClause += fmt.Sprintf(" AND o.status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}
	if filter.StartDate != nil {
		whereClause += fmt.Sprintf(" AND o.created_at >= $%d", argIndex)
		args = append(args, *filter.StartDate)
		argIndex++
	}
	if filter.EndDate != nil {
		whereClause += fmt.Sprintf(" AND o.created_at <= $%d", argIndex)
		args = append(args, *filter.EndDate)
		argIndex++
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM orders o %s`, whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (page - 1) * pageSize

	query := fmt.Sprintf(`
		SELECT o.id, o.user_id, o.total_amount, o.status, o.created_at, o.updated_at,
		       u.email, u.first_name || ' ' || u.last_name
		FROM orders o
		JOIN users u ON u.id = o.user_id
		%s
		ORDER BY o.created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)

	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders, err := scanOrdersWithUser(rows)
	if err != nil {
		return nil, 0, err
	}

	inner := make([]*domain.Order, len(orders))
	for i := range orders {
		inner[i] = &orders[i].Order
	}
	if err := r.attachItems(ctx, inner); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// UpdateStatusAndTotal applies the admin-driven mutations: a status
// transition, a total override, or both. Nil fields are left untouched.
func (r *orderRepository) UpdateStatusAndTotal(ctx context.Context, id uuid.UUID, status *domain.OrderStatus, total *decimal.Decimal) error {
	query := `
		UPDATE orders
		SET status = COALESCE($2, status),
		    total_amount = COALESCE($3, total_amount),
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, status, total)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	return nil
}

// CountAll returns the total number of orders
func (r *orderRepository) CountAll(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return total, nil
}

// CountByStatus returns order counts grouped by status
func (r *orderRepository) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	defer rows.Close()

	counts := map[domain.OrderStatus]int{}
	for rows.Next() {
		var status domain.OrderStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}

	return counts, nil
}

// RevenueByStatus sums total_amount over orders in the given status,
// optionally restricted to orders created after since
func (r *orderRepository) RevenueByStatus(ctx context.Context, status domain.OrderStatus, since *time.Time) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status = $1`
	args := []interface{}{status}

	if since != nil {
		query += ` AND created_at >= $2`
		args = append(args, *since)
	}

	var revenue decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&revenue); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum revenue: %w", err)
	}

	return revenue, nil
}

// ListRecent returns the newest orders with buyer info and item counts
func (r *orderRepository) ListRecent(ctx context.Context, limit int) ([]*OrderWithUser, error) {
	query := `
		SELECT o.id, o.user_id, o.total_amount, o.status, o.created_at, o.updated_at,
		       u.email, u.first_name || ' ' || u.last_name
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}
	defer rows.Close()

	return scanOrdersWithUser(rows)
}

// TopProducts aggregates order items into the best-sellers list
func (r *orderRepository) TopProducts(ctx context.Context, limit int) ([]*TopProduct, error) {
	query := `
		SELECT p.id, p.name, p.price, p.stock, p.image_url,
		       SUM(oi.quantity) AS total_sold,
		       SUM(oi.quantity * oi.unit_price) AS total_revenue
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		GROUP BY p.id, p.name, p.price, p.stock, p.image_url
		ORDER BY total_sold DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top products: %w", err)
	}
	defer rows.Close()

	products := []*TopProduct{}
	for rows.Next() {
		tp := &TopProduct{}
		err := rows.Scan(
			&tp.ProductID,
			&tp.Name,
			&tp.Price,
			&tp.Stock,
			&tp.ImageURL,
			&tp.TotalSold,
			&tp.TotalRevenue,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan top product: %w", err)
		}
		products = append(products, tp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating top products: %w", err)
	}

	return products, nil
}

func scanOrdersWithUser(rows *sql.Rows) ([]*OrderWithUser, error) {
	orders := []*OrderWithUser{}
	for rows.Next() {
		order := &OrderWithUser{}
		err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.TotalAmount,
			&order.Status,
			&order.CreatedAt,
			&order.UpdatedAt,
			&order.UserEmail,
			&order.UserName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}
