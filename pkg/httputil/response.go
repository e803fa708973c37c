package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/Ghani-Agu/review-app/pkg/errors"
	"github.com/Ghani-Agu/review-app/pkg/logger"
)

// Response is the storefront JSON envelope returned by every endpoint.
// Exactly one of Review or Reviews is set on success; Error is set on failure.
type Response struct {
	OK      bool   `json:"ok"`
	Review  any    `json:"review,omitempty"`
	Reviews any    `json:"reviews,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// If encoding fails, the error is logged but headers are already sent so nothing can be done.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteReview writes a 200 success envelope carrying a single review.
func WriteReview(w http.ResponseWriter, review any) {
	WriteJSON(w, http.StatusOK, Response{OK: true, Review: review})
}

// WriteReviews writes a 200 success envelope carrying a review listing.
func WriteReviews(w http.ResponseWriter, reviews any) {
	WriteJSON(w, http.StatusOK, Response{OK: true, Reviews: reviews})
}

// WriteError writes a standardized error envelope based on the error type.
// AppError statuses and messages pass through; anything else is treated as an
// internal error, logged server-side, and returned with a generic message.
// It prefers the request-scoped logger from context (set by the RequestLogger
// middleware) over the fallback logger.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	// Prefer the request-scoped logger (enriched with correlation_id,
	// shop_domain, trace_id, span_id) if the RequestLogger middleware has
	// been mounted.
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}

	status := apperrors.HTTPStatus(err)
	message := "an internal error occurred"

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status = appErr.Status
		message = appErr.Message
	}

	// Internal errors never leak detail to the caller.
	if status == http.StatusInternalServerError {
		message = "an internal error occurred"
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, Response{OK: false, Error: message})
}
