package event

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/Ghani-Agu/review-app/internal/domain"
	"github.com/Ghani-Agu/review-app/pkg/kafka"
	"github.com/Ghani-Agu/review-app/pkg/logger"
)

const (
	// EventTypeReviewCreated is emitted whenever a storefront submission is
	// accepted. The moderation pipeline consumes it to queue the review.
	EventTypeReviewCreated = "storefront.review.created"

	aggregateType = "review"
	source        = "review-app"
)

// publisher is the subset of the Kafka producer the publisher needs.
type publisher interface {
	Publish(ctx context.Context, topic string, event *kafka.Event) error
}

// ReviewPublisher publishes review lifecycle events to Kafka. Delivery is
// best-effort: failures are logged and never propagate to the request path.
type ReviewPublisher struct {
	producer publisher
	topic    string
	logger   *slog.Logger
}

// NewReviewPublisher creates a publisher writing to the given topic.
func NewReviewPublisher(producer publisher, topic string, log *slog.Logger) *ReviewPublisher {
	return &ReviewPublisher{producer: producer, topic: topic, logger: log}
}

// ReviewCreatedData is the payload of a review created event.
type ReviewCreatedData struct {
	ReviewID   string  `json:"review_id"`
	ShopDomain string  `json:"shop_domain"`
	ProductID  int64   `json:"product_id,string"`
	Rating     int     `json:"rating"`
	AuthorName string  `json:"author_name"`
	Status     string  `json:"status"`
	Title      *string `json:"title,omitempty"`
}

// ReviewCreated publishes a storefront.review.created event for the review.
func (p *ReviewPublisher) ReviewCreated(ctx context.Context, review *domain.Review) {
	data := ReviewCreatedData{
		ReviewID:   review.ID,
		ShopDomain: review.ShopDomain,
		ProductID:  review.ProductID,
		Rating:     review.Rating,
		AuthorName: review.AuthorName,
		Status:     string(review.Status),
		Title:      review.Title,
	}

	evt, err := kafka.NewEvent(EventTypeReviewCreated, review.ID, aggregateType, source, data)
	if err != nil {
		p.logger.ErrorContext(ctx, "failed to build review created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	evt.WithCorrelationID(logger.CorrelationIDFromContext(ctx)).
		WithMetadata("shop_domain", review.ShopDomain).
		WithMetadata("product_id", strconv.FormatInt(review.ProductID, 10))

	if err := p.producer.Publish(ctx, p.topic, evt); err != nil {
		p.logger.ErrorContext(ctx, "failed to publish review created event",
			slog.String("review_id", review.ID),
			slog.String("topic", p.topic),
			slog.String("error", err.Error()),
		)
	}
}
