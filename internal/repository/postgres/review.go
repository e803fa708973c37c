package postgres

import (
	"context"
	"fmt"

	"github.com/Ghani-Agu/review-app/internal/domain"
	"github.com/Ghani-Agu/review-app/internal/repository"
	"github.com/Ghani-Agu/review-app/pkg/database"
)

// ReviewRepository is the PostgreSQL implementation of repository.ReviewRepository.
type ReviewRepository struct {
	db database.DBTX
}

// NewReviewRepository creates a new PostgreSQL review repository.
func NewReviewRepository(db database.DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

const createReviewQuery = `
	INSERT INTO reviews (
		id, shop_domain, product_id, rating, title, body,
		author_name, author_email, product_handle, status, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

// Create persists a new review.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	ctx, end := database.TraceQuery(ctx, "CreateReview", createReviewQuery)

	_, err := r.db.Exec(ctx, createReviewQuery,
		review.ID,
		review.ShopDomain,
		review.ProductID,
		review.Rating,
		review.Title,
		review.Body,
		review.AuthorName,
		review.AuthorEmail,
		review.ProductHandle,
		review.Status,
		review.CreatedAt,
		review.UpdatedAt,
	)
	end(err)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

const listReviewsQuery = `
	SELECT id, shop_domain, product_id, rating, title, body,
		author_name, author_email, product_handle, status, created_at, updated_at
	FROM reviews
	WHERE shop_domain = $1 AND product_id = $2 AND status = $3
	ORDER BY created_at DESC
	LIMIT $4`

// List returns reviews for one shop and product in the given status, newest
// first, capped at the filter limit.
func (r *ReviewRepository) List(ctx context.Context, filter repository.ReviewFilter) ([]domain.Review, error) {
	limit := filter.Limit
	if limit <= 0 || limit > domain.MaxListSize {
		limit = domain.MaxListSize
	}

	ctx, end := database.TraceQuery(ctx, "ListReviews", listReviewsQuery)

	rows, err := r.db.Query(ctx, listReviewsQuery,
		filter.ShopDomain, filter.ProductID, filter.Status, limit,
	)
	end(err)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		var rev domain.Review
		if err := rows.Scan(
			&rev.ID,
			&rev.ShopDomain,
			&rev.ProductID,
			&rev.Rating,
			&rev.Title,
			&rev.Body,
			&rev.AuthorName,
			&rev.AuthorEmail,
			&rev.ProductHandle,
			&rev.Status,
			&rev.CreatedAt,
			&rev.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}

	return reviews, nil
}
