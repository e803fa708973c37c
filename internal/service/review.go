package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Ghani-Agu/review-app/internal/domain"
	"github.com/Ghani-Agu/review-app/internal/repository"
	apperrors "github.com/Ghani-Agu/review-app/pkg/errors"
	"github.com/Ghani-Agu/review-app/pkg/logger"
)

// Validation error messages. The product identifier distinguishes missing
// from unparseable; body and author name share one combined message.
const (
	msgProductIDMissing = "product_id is required"
	msgProductIDInvalid = "product_id must be an integer"
	msgRatingInvalid    = "rating must be a number between 1 and 5"
	msgBodyAuthorNeeded = "body and author_name are required"
)

// EventPublisher publishes domain events for downstream consumers. Publishing
// is best-effort; implementations must not block request handling on broker
// availability.
type EventPublisher interface {
	ReviewCreated(ctx context.Context, review *domain.Review)
}

// ReviewService implements review submission and listing.
type ReviewService struct {
	repo   repository.ReviewRepository
	events EventPublisher
	logger *slog.Logger
	now    func() time.Time
}

// NewReviewService creates a new review service.
func NewReviewService(repo repository.ReviewRepository, events EventPublisher, log *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:   repo,
		events: events,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateReview validates the normalized submission fields and persists a new
// review for the shop. Every created review starts in the pending status; any
// caller-supplied status field is ignored.
func (s *ReviewService) CreateReview(ctx context.Context, shopDomain string, fields map[string]any) (*domain.Review, error) {
	sub, err := validateSubmission(fields)
	if err != nil {
		return nil, err
	}

	now := s.now()
	review := &domain.Review{
		ID:            uuid.New().String(),
		ShopDomain:    shopDomain,
		ProductID:     sub.productID,
		Rating:        sub.rating,
		Title:         sub.title,
		Body:          sub.body,
		AuthorName:    sub.authorName,
		AuthorEmail:   sub.authorEmail,
		ProductHandle: sub.productHandle,
		Status:        domain.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	logger.FromContext(ctx).InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.Int64("product_id", review.ProductID),
		slog.Int("rating", review.Rating),
	)

	if s.events != nil {
		s.events.ReviewCreated(ctx, review)
	}

	return review, nil
}

// ListReviews returns up to domain.MaxListSize reviews for the shop and
// product, newest first. Unrecognized status values fall back to approved.
func (s *ReviewService) ListReviews(ctx context.Context, shopDomain, rawProductID, rawStatus string) ([]domain.Review, error) {
	productID, appErr := parseProductID(rawProductID)
	if appErr != nil {
		return nil, appErr
	}

	reviews, err := s.repo.List(ctx, repository.ReviewFilter{
		ShopDomain: shopDomain,
		ProductID:  productID,
		Status:     domain.ParseStatus(rawStatus),
		Limit:      domain.MaxListSize,
	})
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// submission is a fully validated review payload.
type submission struct {
	productID     int64
	rating        int
	body          string
	authorName    string
	title         *string
	authorEmail   *string
	productHandle *string
}

// validateSubmission applies the submission rules in order and returns the
// first failure as an invalid-input error.
func validateSubmission(fields map[string]any) (*submission, error) {
	// Rule 1: product identifier. The alias is consulted when the primary
	// field is absent or blank.
	rawID := stringField(fields, "product_id")
	if strings.TrimSpace(rawID) == "" {
		rawID = stringField(fields, "productId")
	}
	productID, appErr := parseProductID(rawID)
	if appErr != nil {
		return nil, appErr
	}

	// Rule 2: rating must be a finite integral number in [1,5].
	rating, ok := ratingValue(fields["rating"])
	if !ok {
		return nil, apperrors.InvalidInput(msgRatingInvalid)
	}

	// Rule 3: body (with its legacy alias, consulted by key presence) and
	// author name are both required.
	bodyVal, present := fields["body"]
	if !present {
		bodyVal = fields["review"]
	}
	body := strings.TrimSpace(coerceString(bodyVal))
	authorName := strings.TrimSpace(stringField(fields, "author_name"))
	if body == "" || authorName == "" {
		return nil, apperrors.InvalidInput(msgBodyAuthorNeeded)
	}

	// Rule 4: optional pass-through fields.
	return &submission{
		productID:     productID,
		rating:        rating,
		body:          body,
		authorName:    authorName,
		title:         optionalField(fields, "title"),
		authorEmail:   optionalField(fields, "author_email"),
		productHandle: optionalField(fields, "product_handle"),
	}, nil
}

// parseProductID validates a raw product identifier. Blank and zero values
// are rejected as missing rather than invalid: a zero-equivalent identifier
// means the storefront widget did not inject one.
func parseProductID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperrors.InvalidInput(msgProductIDMissing)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.InvalidInput(msgProductIDInvalid)
	}
	if id == 0 {
		return 0, apperrors.InvalidInput(msgProductIDMissing)
	}
	return id, nil
}

// ratingValue coerces a raw rating to an int, accepting only finite integral
// numbers between 1 and 5 inclusive.
func ratingValue(v any) (int, bool) {
	var f float64
	switch val := v.(type) {
	case nil:
		return 0, false
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case float64:
		f = val
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < 1 || f > 5 {
		return 0, false
	}
	return int(f), true
}

// stringField returns the field coerced to text, or "" when absent.
func stringField(fields map[string]any, key string) string {
	return coerceString(fields[key])
}

// optionalField returns a pointer to the field coerced to text, or nil when
// the key is absent entirely.
func optionalField(fields map[string]any, key string) *string {
	v, ok := fields[key]
	if !ok {
		return nil
	}
	s := coerceString(v)
	return &s
}

// coerceString renders scalar values as text. Non-scalar values collapse to
// "" so they fail required-field checks instead of panicking.
func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
