package domain

import (
	"time"

	"github.com/google/uuid"
)

// WishlistItem marks a product a user wants to buy later.
type WishlistItem struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Product *Product `json:"product,omitempty" db:"-"`
}
