package domain

import (
	"time"

	"github.com/google/uuid"
)

// Review is a user's rating of a product. At most one review per
// (user, product) pair.
type Review struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	ProductID  uuid.UUID `json:"product_id" db:"product_id"`
	Rating     int       `json:"rating" db:"rating"`
	Comment    string    `json:"comment" db:"comment"`
	IsApproved bool      `json:"is_approved" db:"is_approved"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`

	AuthorName string `json:"author_name,omitempty" db:"-"`
}

// ReviewStats are the approved-review aggregates for a product.
type ReviewStats struct {
	AverageRating float64 `json:"average_rating"`
	ReviewsCount  int     `json:"reviews_count"`
}
