package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrEmptyCart rejects order placement from a cart with no items.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrNoItems rejects an explicit order request with no line items.
	ErrNoItems = errors.New("order must contain at least one item")

	// ErrInvalidQuantity rejects zero or negative line quantities before any
	// stock is touched.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// InsufficientStockError reports a line item that asked for more units than
// the product currently has. It names the product and both quantities so
// clients can render an actionable message.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// AsInsufficientStock unwraps err into an InsufficientStockError if it is one.
func AsInsufficientStock(err error) (*InsufficientStockError, bool) {
	var stockErr *InsufficientStockError
	if errors.As(err, &stockErr) {
		return stockErr, true
	}
	return nil, false
}
