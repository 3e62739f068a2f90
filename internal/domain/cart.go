package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one pending line in a user's cart. There is at most one line
// per (user, product) pair; adding the same product again merges quantities.
type CartItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Product is the current catalog row, populated on joined reads.
	Product *Product `json:"product,omitempty" db:"-"`
}

// Subtotal is the line value at the product's current price.
func (i *CartItem) Subtotal() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the derived view of a user's pending selections. Total and
// ItemsCount are recomputed from the current lines and current product
// prices on every read, never stored.
type Cart struct {
	UserID     uuid.UUID       `json:"user_id"`
	Items      []*CartItem     `json:"items"`
	Total      decimal.Decimal `json:"total"`
	ItemsCount int             `json:"items_count"`
}

// NewCart assembles the derived cart view from its line items.
func NewCart(userID uuid.UUID, items []*CartItem) *Cart {
	cart := &Cart{
		UserID: userID,
		Items:  items,
		Total:  decimal.Zero,
	}
	for _, item := range items {
		cart.Total = cart.Total.Add(item.Subtotal())
		cart.ItemsCount += item.Quantity
	}
	return cart
}
