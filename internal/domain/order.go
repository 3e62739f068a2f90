package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order. Orders are created as
// pending; only admins move them forward.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is one of the known statuses.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is the immutable record of a completed purchase intent. Apart from
// admin-driven status transitions and total overrides, an order and its
// items never change after creation.
type Order struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status      OrderStatus     `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`

	Items []*OrderItem `json:"items,omitempty" db:"-"`
}

// OrderItem is one line of an order. UnitPrice is a snapshot of the product
// price at placement time and is never recomputed from the catalog. Position
// preserves the line order the buyer submitted.
type OrderItem struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OrderID   uuid.UUID       `json:"order_id" db:"order_id"`
	ProductID uuid.UUID       `json:"product_id" db:"product_id"`
	Position  int             `json:"position" db:"position"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`

	Product *Product `json:"product,omitempty" db:"-"`
}

// Subtotal is quantity times the snapshotted unit price.
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
