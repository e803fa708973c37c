package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Ghani-Agu/review-app/internal/domain"
	"github.com/Ghani-Agu/review-app/internal/tenant"
	"github.com/Ghani-Agu/review-app/pkg/httputil"
	"github.com/Ghani-Agu/review-app/pkg/logger"
)

// ReviewService is the application-layer contract the handler depends on.
type ReviewService interface {
	CreateReview(ctx context.Context, shopDomain string, fields map[string]any) (*domain.Review, error)
	ListReviews(ctx context.Context, shopDomain, rawProductID, rawStatus string) ([]domain.Review, error)
}

// ReviewHandler serves the storefront review endpoints.
type ReviewHandler struct {
	service ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(service ReviewService, log *slog.Logger) *ReviewHandler {
	return &ReviewHandler{service: service, logger: log}
}

// List handles GET /reviews. The tenant must resolve; product_id is required;
// status is optional and falls back to approved.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	shop, err := tenant.Resolve(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	ctx := logger.WithShopDomain(r.Context(), shop)

	query := r.URL.Query()
	reviews, err := h.service.ListReviews(ctx, shop, query.Get("product_id"), query.Get("status"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteReviews(w, reviews)
}

// Create handles POST /reviews. The body may be JSON or form-encoded; a
// malformed body degrades to an empty field map and fails field validation.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	shop, err := tenant.Resolve(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	ctx := logger.WithShopDomain(r.Context(), shop)

	fields := decodeBody(r)
	review, err := h.service.CreateReview(ctx, shop, fields)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteReview(w, review)
}
