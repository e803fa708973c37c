package repository

import (
	"context"

	"github.com/Ghani-Agu/review-app/internal/domain"
)

// ReviewFilter narrows a review listing to one shop, one product and one
// moderation status.
type ReviewFilter struct {
	ShopDomain string
	ProductID  int64
	Status     domain.Status
	Limit      int
}

// ReviewRepository provides access to review storage.
type ReviewRepository interface {
	// Create persists a new review.
	Create(ctx context.Context, review *domain.Review) error

	// List returns reviews matching the filter, newest first.
	List(ctx context.Context, filter ReviewFilter) ([]domain.Review, error)
}
